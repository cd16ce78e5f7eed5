package runner

import (
	"time"

	"github.com/lcalzada-xor/xsslab/pkg/config"
	"github.com/lcalzada-xor/xsslab/pkg/logger"
	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/presets"
)

// Options holds all configuration options for the verifier
type Options struct {
	// Execution
	Workers       int
	ScriptTimeout time.Duration
	MaxFrameDepth int

	// Scope: empty means every context
	Contexts []models.InjectionContext

	// Preset source; nil reads the embedded files
	Loader presets.Loader

	Logger *logger.Logger
}

// DefaultOptions returns a new Options struct with default values
func DefaultOptions() *Options {
	return &Options{
		Workers:       config.DefaultVerifyWorkers,
		ScriptTimeout: config.DefaultScriptTimeout,
		MaxFrameDepth: config.DefaultMaxFrameDepth,
		Loader:        presets.EmbeddedLoader{},
		Logger:        logger.Nop(),
	}
}

// FromSettings builds options from the resolved configuration.
func FromSettings(s config.Settings, log *logger.Logger) *Options {
	opts := DefaultOptions()
	if s.VerifyWorkers > 0 {
		opts.Workers = s.VerifyWorkers
	}
	if s.ScriptTimeout > 0 {
		opts.ScriptTimeout = s.ScriptTimeout
	}
	if s.MaxFrameDepth > 0 {
		opts.MaxFrameDepth = s.MaxFrameDepth
	}
	if log != nil {
		opts.Logger = log
	}
	return opts
}

func (o *Options) inScope(ctx models.InjectionContext) bool {
	if len(o.Contexts) == 0 {
		return true
	}
	for _, c := range o.Contexts {
		if c == ctx {
			return true
		}
	}
	return false
}
