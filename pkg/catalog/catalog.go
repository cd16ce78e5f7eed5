// Package catalog is the registry of output descriptors: every rendering
// technique the lab demonstrates, grouped by injection context, each wired to
// at most one processor and exactly one sink from the sink library.
package catalog

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/sinks"
	"github.com/lcalzada-xor/xsslab/pkg/templating"
)

// SinkKind names the four sink strategies.
type SinkKind string

const (
	KindSource   SinkKind = "source"
	KindDOM      SinkKind = "dom"
	KindLibrary  SinkKind = "library"
	KindTemplate SinkKind = "template"
)

// Sink is one of SourceSink, DOMSink, LibrarySink or TemplateSink.
type Sink interface {
	Kind() SinkKind
	Key() string
	isSink()
}

// SourceSink renders HTML source assigned to the container's markup.
type SourceSink struct {
	FuncKey string
	Provide sinks.SourceProvider
}

// DOMSink writes through DOM calls on the container.
type DOMSink struct {
	FuncKey string
	Inject  sinks.DOMInjector
}

// LibrarySink writes through the jQuery wrapper.
type LibrarySink struct {
	FuncKey string
	Inject  sinks.LibraryInjector
}

// TemplateSink instantiates a template component.
type TemplateSink struct {
	Component *templating.ComponentType
}

func (s SourceSink) Kind() SinkKind { return KindSource }
func (s SourceSink) Key() string { return s.FuncKey }
func (SourceSink) isSink()            {}
func (s DOMSink) Kind() SinkKind { return KindDOM }
func (s DOMSink) Key() string { return s.FuncKey }
func (DOMSink) isSink()               {}
func (s LibrarySink) Kind() SinkKind { return KindLibrary }
func (s LibrarySink) Key() string { return s.FuncKey }
func (LibrarySink) isSink()           {}
func (s TemplateSink) Kind() SinkKind { return KindTemplate }
func (s TemplateSink) Key() string { return s.Component.Name }
func (TemplateSink) isSink()          {}

// Descriptor is one rendering technique. Immutable once built.
type Descriptor struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Context     models.InjectionContext `json:"context"`
	Quality     models.Quality          `json:"quality"`

	ProcessorKey string          `json:"processor,omitempty"`
	Processor    sinks.Processor `json:"-"`
	Sink         Sink            `json:"-"`
}

// Process applies the processor, if any.
func (d *Descriptor) Process(payload string) any {
	if d.Processor == nil {
		return payload
	}
	return d.Processor(payload)
}

// Inert reports whether the descriptor has no sink.
func (d *Descriptor) Inert() bool {
	return d.Sink == nil
}

// Technologies returns filter tags derived from the processor and the sink.
func (d *Descriptor) Technologies() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(tags ...string) {
		for _, t := range tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	if d.ProcessorKey != "" {
		add(d.ProcessorKey)
		add(sinks.Technologies(d.ProcessorKey)...)
	}
	if d.Sink != nil {
		add(string(d.Sink.Kind()), d.Sink.Key())
		if d.Sink.Kind() == KindTemplate {
			add("html/template")
		} else {
			add(sinks.Technologies(d.Sink.Key())...)
		}
	}
	return out
}

// Collection is the ordered set of descriptors of one context.
type Collection struct {
	Context     models.InjectionContext `json:"context"`
	Name        string                  `json:"name"`
	Descriptors []*Descriptor           `json:"descriptors"`
}

// Find returns the descriptor with id, or nil.
func (c *Collection) Find(id string) *Descriptor {
	for _, d := range c.Descriptors {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Catalog is the built registry.
type Catalog struct {
	collections []*Collection
}

// Collections returns the collections in display order.
func (c *Catalog) Collections() []*Collection {
	return append([]*Collection(nil), c.collections...)
}

// FindCollection returns the collection of ctx, or nil.
func (c *Catalog) FindCollection(ctx models.InjectionContext) *Collection {
	for _, col := range c.collections {
		if col.Context == ctx {
			return col
		}
	}
	return nil
}

// FindDescriptor returns a descriptor by context and id, or nil.
func (c *Catalog) FindDescriptor(ctx models.InjectionContext, id string) *Descriptor {
	col := c.FindCollection(ctx)
	if col == nil {
		return nil
	}
	return col.Find(id)
}

// All returns every descriptor in display order.
func (c *Catalog) All() []*Descriptor {
	var out []*Descriptor
	for _, col := range c.collections {
		out = append(out, col.Descriptors...)
	}
	return out
}

// SinkRef names a sink by kind and function key.
type SinkRef struct {
	Kind SinkKind
	Key  string
}

// Source, DOM, Library and Template build sink references for tables.
func Source(key string) *SinkRef { return &SinkRef{Kind: KindSource, Key: key} }
func DOM(key string) *SinkRef { return &SinkRef{Kind: KindDOM, Key: key} }
func Library(key string) *SinkRef { return &SinkRef{Kind: KindLibrary, Key: key} }
func Template(name string) *SinkRef { return &SinkRef{Kind: KindTemplate, Key: name} }

// DescriptorDef is one row of a catalog table. A nil Sink makes an inert
// descriptor.
type DescriptorDef struct {
	ID          string
	Name        string
	Title       string
	Description string
	Quality     models.Quality
	Processor   string
	Sink        *SinkRef
}

// CollectionDef groups rows under a context.
type CollectionDef struct {
	Context     models.InjectionContext
	Descriptors []DescriptorDef
}

// Build resolves a table into a catalog. The table is static data, so any
// inconsistency is a programming error and panics.
func Build(defs []CollectionDef) *Catalog {
	c := &Catalog{}
	seenContext := make(map[models.InjectionContext]bool)

	for _, def := range defs {
		if _, err := models.ParseContext(string(def.Context)); err != nil {
			panic(fmt.Sprintf("catalog: %v", err))
		}
		if seenContext[def.Context] {
			panic(fmt.Sprintf("catalog: duplicate collection %s", def.Context))
		}
		seenContext[def.Context] = true

		col := &Collection{Context: def.Context, Name: def.Context.Title()}
		ids := make(map[string]bool)
		for _, row := range def.Descriptors {
			if ids[row.ID] {
				panic(fmt.Sprintf("catalog: duplicate descriptor %s/%s", def.Context, row.ID))
			}
			ids[row.ID] = true
			col.Descriptors = append(col.Descriptors, resolve(def.Context, row))
		}
		c.collections = append(c.collections, col)
	}
	return c
}

func resolve(ctx models.InjectionContext, row DescriptorDef) *Descriptor {
	where := fmt.Sprintf("catalog: %s/%s", ctx, row.ID)
	if row.ID == "" {
		panic(fmt.Sprintf("catalog: %s: descriptor without id", ctx))
	}
	if !row.Quality.Valid() {
		panic(fmt.Sprintf("%s: quality %q not assigned", where, row.Quality))
	}

	d := &Descriptor{
		ID:           row.ID,
		Name:         row.Name,
		Title:        row.Title,
		Description:  row.Description,
		Context:      ctx,
		Quality:      row.Quality,
		ProcessorKey: row.Processor,
	}
	if d.Name == "" {
		d.Name = row.ID
	}
	if d.Title == "" {
		d.Title = titleFromID(row.ID)
	}

	if row.Processor != "" {
		p, ok := sinks.LookupProcessor(row.Processor)
		if !ok {
			panic(fmt.Sprintf("%s: unknown processor %q", where, row.Processor))
		}
		d.Processor = p
	}

	if row.Sink == nil {
		return d
	}
	switch row.Sink.Kind {
	case KindSource:
		fn, ok := sinks.LookupSourceProvider(row.Sink.Key)
		if !ok {
			panic(fmt.Sprintf("%s: unknown source provider %q", where, row.Sink.Key))
		}
		d.Sink = SourceSink{FuncKey: row.Sink.Key, Provide: fn}
	case KindDOM:
		fn, ok := sinks.LookupDOMInjector(row.Sink.Key)
		if !ok {
			panic(fmt.Sprintf("%s: unknown DOM injector %q", where, row.Sink.Key))
		}
		d.Sink = DOMSink{FuncKey: row.Sink.Key, Inject: fn}
	case KindLibrary:
		fn, ok := sinks.LookupLibraryInjector(row.Sink.Key)
		if !ok {
			panic(fmt.Sprintf("%s: unknown library injector %q", where, row.Sink.Key))
		}
		d.Sink = LibrarySink{FuncKey: row.Sink.Key, Inject: fn}
	case KindTemplate:
		ct, ok := templating.Lookup(row.Sink.Key)
		if !ok {
			panic(fmt.Sprintf("%s: unknown component type %q", where, row.Sink.Key))
		}
		d.Sink = TemplateSink{Component: ct}
	default:
		panic(fmt.Sprintf("%s: unknown sink kind %q", where, row.Sink.Kind))
	}
	return d
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the lab's catalog, built on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = Build(table)
	})
	return defaultCatalog
}

// titleFromID splits a CamelCase id into words: "DomInnerHtmlRaw" becomes
// "Dom Inner Html Raw". Runs of capitals stay together ("URLValidate" is
// "URL Validate").
func titleFromID(id string) string {
	runes := []rune(id)
	var sb strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
