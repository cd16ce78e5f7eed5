// Package runner verifies the output catalog: every descriptor is rendered
// with every preset of its context and the observed executions are checked
// against the descriptor's quality rating.
package runner

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/dom"
	"github.com/lcalzada-xor/xsslab/pkg/landing"
	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/presets"
	"github.com/lcalzada-xor/xsslab/pkg/probe"
	"github.com/lcalzada-xor/xsslab/pkg/render"
)

// Runner handles the execution of the verification process
type Runner struct {
	options *Options
	catalog *catalog.Catalog
}

// NewRunner creates a new Runner over the default catalog
func NewRunner(options *Options) *Runner {
	return NewRunnerFor(catalog.Default(), options)
}

// NewRunnerFor creates a Runner over an explicit catalog.
func NewRunnerFor(c *catalog.Catalog, options *Options) *Runner {
	if options == nil {
		options = DefaultOptions()
	}
	defaults := DefaultOptions()
	if options.Workers <= 0 {
		options.Workers = defaults.Workers
	}
	if options.Loader == nil {
		options.Loader = defaults.Loader
	}
	if options.Logger == nil {
		options.Logger = defaults.Logger
	}
	return &Runner{options: options, catalog: c}
}

// Verify renders every descriptor in scope with every preset of its context.
func Verify(ctx context.Context, options *Options) ([]models.Verdict, error) {
	return NewRunner(options).Run(ctx)
}

type job struct {
	index      int
	descriptor *catalog.Descriptor
	preset     presets.Preset
	// marker jobs render the inert landing marker instead of a preset
	marker bool
}

type jobResult struct {
	index   int
	outcome models.Outcome
}

// Run executes the verification. Verdicts follow catalog order; outcomes
// follow preset order.
func (r *Runner) Run(ctx context.Context) ([]models.Verdict, error) {
	log := r.options.Logger

	var descriptors []*catalog.Descriptor
	var jobs []job
	for _, d := range r.catalog.All() {
		if !r.options.inScope(d.Context) {
			continue
		}
		descriptors = append(descriptors, d)
		jobs = append(jobs, job{index: len(jobs), descriptor: d, marker: true})
		for _, p := range presets.ForContext(d.Context) {
			jobs = append(jobs, job{index: len(jobs), descriptor: d, preset: p})
		}
	}

	log.Section("Verification")
	log.V("Verifying %d descriptors with %d jobs on %d workers", len(descriptors), len(jobs), r.options.Workers)

	p := pool.NewWithResults[jobResult]().
		WithContext(ctx).
		WithMaxGoroutines(r.options.Workers)

	for _, j := range jobs {
		p.Go(func(ctx context.Context) (jobResult, error) {
			if err := ctx.Err(); err != nil {
				return jobResult{}, err
			}
			return jobResult{index: j.index, outcome: r.runJob(ctx, j)}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("verification aborted: %w", err)
	}
	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })

	byDescriptor := make(map[*catalog.Descriptor][]models.Outcome, len(descriptors))
	landings := make(map[*catalog.Descriptor]models.Landing, len(descriptors))
	for _, res := range results {
		j := jobs[res.index]
		if j.marker {
			landings[j.descriptor] = landing.Detect(res.outcome.LiveSourceCode, landing.Marker)
			continue
		}
		byDescriptor[j.descriptor] = append(byDescriptor[j.descriptor], res.outcome)
	}

	verdicts := make([]models.Verdict, 0, len(descriptors))
	for _, d := range descriptors {
		v := models.Verdict{
			Context:      d.Context,
			DescriptorID: d.ID,
			Name:         d.Name,
			Quality:      d.Quality,
			Landing:      landings[d],
			Outcomes:     byDescriptor[d],
		}
		for _, o := range v.Outcomes {
			if o.Executed {
				v.Executed = true
				break
			}
		}
		v.Consistent = models.CheckQuality(v.Quality, v.Executed)
		if !v.Consistent {
			log.Warn("%s/%s is rated %s but executed=%v", d.Context, d.ID, d.Quality, v.Executed)
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, nil
}

// runJob renders one preset (or the landing marker) through one descriptor in
// a fresh document.
func (r *Runner) runJob(ctx context.Context, j job) models.Outcome {
	log := r.options.Logger
	outcome := models.Outcome{Preset: j.preset.Name}

	payload := landing.Payload(j.descriptor.Context)
	if !j.marker {
		text, err := r.options.Loader.Load(ctx, j.preset.URL)
		if err != nil {
			log.Err(err, "loading preset %q", j.preset.Name)
			outcome.Error = err.Error()
			return outcome
		}
		payload = text
	}

	pr := probe.New(log, nil, nil)
	doc := dom.New(
		dom.WithProbe(pr),
		dom.WithLogger(log),
		dom.WithScriptTimeout(r.options.ScriptTimeout),
		dom.WithMaxFrameDepth(r.options.MaxFrameDepth),
	)
	renderer := render.New(doc, log, true)
	renderer.Subscribe(func(n render.Notification) {
		if n.Err != nil {
			outcome.Error = n.Err.Error()
		}
	})

	renderer.SetPayload(payload)
	renderer.SetDescriptor(j.descriptor)
	doc.Interact(renderer.Container())
	fired := doc.RunTimers()

	alert := pr.Alert()
	outcome.Executed = alert.Count > 0
	outcome.ProbeCount = alert.Count
	outcome.ProbeMessage = alert.Message
	outcome.LiveSourceCode = renderer.State().LiveSourceCode

	log.VV("%s/%s + %q: executed=%v timers=%d", j.descriptor.Context, j.descriptor.ID, j.preset.Name, outcome.Executed, fired)
	return outcome
}
