// Package selection binds the payload input and the two selectable catalogs
// (presets and output descriptors) to a renderer.
package selection

import (
	"fmt"
	"strings"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/presets"
)

// Item is one selectable entry of a menu.
type Item struct {
	Name         string                  `json:"name"`
	Group        string                  `json:"group"`
	Context      models.InjectionContext `json:"context"`
	Technologies []string                `json:"technologies,omitempty"`
	Quality      models.Quality          `json:"quality,omitempty"`

	Descriptor *catalog.Descriptor `json:"-"`
	Preset     *presets.Preset     `json:"-"`
}

// Menu is a selectable list of named items with a select callback.
type Menu interface {
	SetItems(items []Item)
	OnSelect(fn func(Item))
}

// ListMenu is an in-process Menu.
type ListMenu struct {
	items    []Item
	handlers []func(Item)
}

// NewListMenu creates an empty menu.
func NewListMenu() *ListMenu {
	return &ListMenu{}
}

func (m *ListMenu) SetItems(items []Item) {
	m.items = append([]Item(nil), items...)
}

func (m *ListMenu) OnSelect(fn func(Item)) {
	m.handlers = append(m.handlers, fn)
}

// Items returns the current items.
func (m *ListMenu) Items() []Item {
	return m.items
}

// Select picks the item at index i.
func (m *ListMenu) Select(i int) error {
	if i < 0 || i >= len(m.items) {
		return fmt.Errorf("selection %d out of range (%d items)", i, len(m.items))
	}
	m.emit(m.items[i])
	return nil
}

// SelectName picks the first item with the given name in group context.
// An empty context matches any group.
func (m *ListMenu) SelectName(ctx models.InjectionContext, name string) error {
	for _, it := range m.items {
		if it.Name == name && (ctx == "" || it.Context == ctx) {
			m.emit(it)
			return nil
		}
	}
	return fmt.Errorf("no item named %q", name)
}

func (m *ListMenu) emit(it Item) {
	for _, fn := range m.handlers {
		fn(it)
	}
}

// OutputItems lists every descriptor of c as menu items.
func OutputItems(c *catalog.Catalog) []Item {
	var items []Item
	for _, col := range c.Collections() {
		for _, d := range col.Descriptors {
			items = append(items, Item{
				Name:         d.Name,
				Group:        col.Name,
				Context:      d.Context,
				Technologies: d.Technologies(),
				Quality:      d.Quality,
				Descriptor:   d,
			})
		}
	}
	return items
}

// PresetItems lists the preset groups as menu items.
func PresetItems(groups []presets.Group) []Item {
	var items []Item
	for _, g := range groups {
		for i := range g.Presets {
			p := g.Presets[i]
			items = append(items, Item{
				Name:    p.Name,
				Group:   g.Name,
				Context: g.Context,
				Preset:  &p,
			})
		}
	}
	return items
}

// Filter keeps the items matching every whitespace separated term of query.
// A term matches the name, group, any technology or the quality,
// case-insensitively.
func Filter(items []Item, query string) []Item {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return items
	}

	var out []Item
	for _, it := range items {
		if matchesAll(it, terms) {
			out = append(out, it)
		}
	}
	return out
}

func matchesAll(it Item, terms []string) bool {
	fields := []string{
		strings.ToLower(it.Name),
		strings.ToLower(it.Group),
		strings.ToLower(string(it.Quality)),
	}
	for _, tech := range it.Technologies {
		fields = append(fields, strings.ToLower(tech))
	}

	for _, term := range terms {
		found := false
		for _, f := range fields {
			if strings.Contains(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
