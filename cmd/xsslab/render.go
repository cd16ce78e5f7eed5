package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/dom"
	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/output"
	"github.com/lcalzada-xor/xsslab/pkg/presets"
	"github.com/lcalzada-xor/xsslab/pkg/probe"
	"github.com/lcalzada-xor/xsslab/pkg/render"
	"github.com/lcalzada-xor/xsslab/pkg/selection"
)

type renderOptions struct {
	context    string
	outputID   string
	payload    string
	preset     string
	format     string
	noInteract bool
	noTimers   bool
}

func newRenderCmd(a *app) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one payload through one output and report execution",
		Example: `  xsslab render --output DomInnerHtmlRaw --payload '<img src=x onerror=xss()>'
  xsslab render --context url --output DomAnchorHref --preset 'javascript URL' -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runRender(cmd.Context(), a, opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), output.FormatRender(res, opts.format))
			if opts.format == output.FormatJSON {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.context, "context", "c", string(models.ContextHTMLContent), "injection context of the output")
	cmd.Flags().StringVar(&opts.outputID, "output", "", "output descriptor ID (see 'xsslab catalog')")
	cmd.Flags().StringVarP(&opts.payload, "payload", "p", "", "payload text")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "preset name to load instead of --payload")
	cmd.Flags().StringVarP(&opts.format, "format", "o", output.FormatHuman, "output format: human, json")
	cmd.Flags().BoolVar(&opts.noInteract, "no-interact", false, "do not simulate user interaction")
	cmd.Flags().BoolVar(&opts.noTimers, "no-timers", false, "do not flush pending timers")
	_ = cmd.MarkFlagRequired("output")
	cmd.MarkFlagsMutuallyExclusive("payload", "preset")
	return cmd
}

func runRender(ctx context.Context, a *app, opts *renderOptions) (output.RenderResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	injection, err := models.ParseContext(opts.context)
	if err != nil {
		return output.RenderResult{}, err
	}

	pr := probe.New(a.log, nil, nil)
	doc := dom.New(
		dom.WithProbe(pr),
		dom.WithLogger(a.log),
		dom.WithScriptTimeout(a.settings.ScriptTimeout),
		dom.WithMaxFrameDepth(a.settings.MaxFrameDepth),
	)
	r := render.New(doc, a.log, true)
	ctl, err := selection.NewController(r, catalog.Default(), a.loader(), a.log, nil, nil)
	if err != nil {
		return output.RenderResult{}, err
	}

	if opts.preset != "" {
		p, ok := presets.Find(injection, opts.preset)
		if !ok {
			return output.RenderResult{}, fmt.Errorf("no preset %q in context %s", opts.preset, injection)
		}
		if err := ctl.LoadPreset(ctx, p); err != nil {
			return output.RenderResult{}, err
		}
	} else {
		ctl.Type(opts.payload)
	}
	if err := ctl.SelectOutput(injection, opts.outputID); err != nil {
		return output.RenderResult{}, err
	}

	if !opts.noInteract {
		doc.Interact(r.Container())
	}
	if !opts.noTimers {
		doc.RunTimers()
	}

	st := r.State()
	return output.RenderResult{
		Context:        injection,
		DescriptorID:   st.Descriptor.ID,
		Payload:        st.RawPayload,
		LiveSourceCode: st.LiveSourceCode,
		Alert:          pr.Alert(),
		Console:        doc.Console(),
	}, nil
}
