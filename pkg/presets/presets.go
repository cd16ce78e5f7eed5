// Package presets ships the canned payloads offered next to the payload
// input. Payload files are embedded and served verbatim; an index lists them
// per injection context.
package presets

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lcalzada-xor/xsslab/pkg/models"
)

// URLPrefix is the path preset files are served under.
const URLPrefix = "/payloads/"

//go:embed index.yaml payloads
var embedded embed.FS

// ErrNotFound is returned for URLs outside the preset tree.
var ErrNotFound = errors.New("preset not found")

// Preset points to one payload file.
type Preset struct {
	Name    string                  `json:"name"`
	URL     string                  `json:"url"`
	Context models.InjectionContext `json:"context"`
}

// Group holds the presets of one context.
type Group struct {
	Context models.InjectionContext `json:"context"`
	Name    string                  `json:"name"`
	Presets []Preset                `json:"presets"`
}

type indexEntry struct {
	Context string `yaml:"context"`
	Presets []struct {
		Name string `yaml:"name"`
		File string `yaml:"file"`
	} `yaml:"presets"`
}

var (
	indexOnce sync.Once
	groups    []Group
	indexErr  error
)

// Groups returns the preset groups in index order.
func Groups() ([]Group, error) {
	indexOnce.Do(func() {
		groups, indexErr = parseIndex(embedded)
	})
	return groups, indexErr
}

// ForContext returns the presets of ctx.
func ForContext(ctx models.InjectionContext) []Preset {
	all, err := Groups()
	if err != nil {
		return nil
	}
	for _, g := range all {
		if g.Context == ctx {
			return g.Presets
		}
	}
	return nil
}

// Find looks a preset up by context and name.
func Find(ctx models.InjectionContext, name string) (Preset, bool) {
	for _, p := range ForContext(ctx) {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Files returns the payload tree rooted at the context directories, for
// serving under URLPrefix.
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "payloads")
	if err != nil {
		// "payloads" is embedded at build time
		panic(err)
	}
	return sub
}

func parseIndex(fsys fs.FS) ([]Group, error) {
	data, err := fs.ReadFile(fsys, "index.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading preset index: %w", err)
	}

	var entries []indexEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing preset index: %w", err)
	}

	out := make([]Group, 0, len(entries))
	for _, e := range entries {
		ctx, err := models.ParseContext(e.Context)
		if err != nil {
			return nil, fmt.Errorf("preset index: %w", err)
		}
		g := Group{Context: ctx, Name: ctx.Title()}
		for _, p := range e.Presets {
			file := path.Join("payloads", string(ctx), p.File)
			if _, err := fs.Stat(fsys, file); err != nil {
				return nil, fmt.Errorf("preset %q: %w", p.Name, err)
			}
			g.Presets = append(g.Presets, Preset{
				Name:    p.Name,
				URL:     URLPrefix + string(ctx) + "/" + p.File,
				Context: ctx,
			})
		}
		out = append(out, g)
	}
	return out, nil
}

// Loader fetches preset text.
type Loader interface {
	Load(ctx context.Context, url string) (string, error)
}

// EmbeddedLoader reads presets from the binary.
type EmbeddedLoader struct{}

// Load implements Loader.
func (EmbeddedLoader) Load(_ context.Context, url string) (string, error) {
	name, err := filePath(url)
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(Files(), name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	return string(data), nil
}

// filePath maps a preset URL to its path inside Files.
func filePath(url string) (string, error) {
	if !strings.HasPrefix(url, URLPrefix) {
		return "", fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	name := strings.TrimPrefix(url, URLPrefix)
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	return name, nil
}
