package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/config"
	"github.com/lcalzada-xor/xsslab/pkg/logger"
	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/presets"
	"github.com/lcalzada-xor/xsslab/pkg/render"
)

// Controller wires the input surfaces to a renderer.
type Controller struct {
	renderer    *render.Renderer
	catalog     *catalog.Catalog
	loader      presets.Loader
	logger      *logger.Logger
	loadTimeout time.Duration
}

// NewController binds presetMenu and outputMenu to r. Either menu may be nil.
func NewController(r *render.Renderer, c *catalog.Catalog, loader presets.Loader, log *logger.Logger, presetMenu, outputMenu Menu) (*Controller, error) {
	if log == nil {
		log = logger.Nop()
	}
	if loader == nil {
		loader = presets.EmbeddedLoader{}
	}
	ctl := &Controller{
		renderer:    r,
		catalog:     c,
		loader:      loader,
		logger:      log.With("selection"),
		loadTimeout: config.DefaultFetchTimeout,
	}

	if presetMenu != nil {
		groups, err := presets.Groups()
		if err != nil {
			return nil, fmt.Errorf("listing presets: %w", err)
		}
		presetMenu.SetItems(PresetItems(groups))
		presetMenu.OnSelect(func(it Item) {
			if it.Preset == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), ctl.loadTimeout)
			defer cancel()
			_ = ctl.LoadPreset(ctx, *it.Preset)
		})
	}
	if outputMenu != nil {
		outputMenu.SetItems(OutputItems(c))
		outputMenu.OnSelect(func(it Item) {
			if it.Descriptor != nil {
				ctl.renderer.SetDescriptor(it.Descriptor)
			}
		})
	}
	return ctl, nil
}

// Renderer returns the bound renderer.
func (c *Controller) Renderer() *render.Renderer {
	return c.renderer
}

// Type is the payload input changing.
func (c *Controller) Type(payload string) {
	c.renderer.SetPayload(payload)
}

// SelectOutput picks a descriptor by context and ID.
func (c *Controller) SelectOutput(ctx models.InjectionContext, id string) error {
	d := c.catalog.FindDescriptor(ctx, id)
	if d == nil {
		return fmt.Errorf("unknown output %s/%s", ctx, id)
	}
	c.renderer.SetDescriptor(d)
	return nil
}

// LoadPreset fetches the preset text and makes it the payload. On failure
// the payload is left unchanged.
func (c *Controller) LoadPreset(ctx context.Context, p presets.Preset) error {
	text, err := c.loader.Load(ctx, p.URL)
	if err != nil {
		c.logger.Err(err, "loading preset %q", p.Name)
		return fmt.Errorf("loading preset %q: %w", p.Name, err)
	}
	c.logger.V("Loaded preset %q (%d bytes)", p.Name, len(text))
	c.renderer.SetPayload(text)
	return nil
}
