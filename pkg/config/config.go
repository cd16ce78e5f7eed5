package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	ListenAddr     string
	SessionTTL     time.Duration
	MaxSessions    int
	AutoUpdate     bool
	ScriptTimeout  time.Duration
	MaxFrameDepth  int
	PresetsBaseURL string
	FetchTimeout   time.Duration
	FetchRateLimit float64
	VerifyWorkers  int
	LogLevel       string
	LogFormat      string
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.listen", DefaultListenAddr)
	v.SetDefault("server.session_ttl", DefaultSessionTTL)
	v.SetDefault("server.max_sessions", DefaultMaxSessions)

	// Rendering
	v.SetDefault("render.auto_update", true)
	v.SetDefault("render.script_timeout", DefaultScriptTimeout)
	v.SetDefault("render.max_frame_depth", DefaultMaxFrameDepth)

	// Presets: an empty base URL serves the embedded payload files
	v.SetDefault("presets.base_url", "")
	v.SetDefault("presets.fetch_timeout", DefaultFetchTimeout)
	v.SetDefault("presets.rate_limit", DefaultFetchRateLimit)

	// Verification
	v.SetDefault("verify.workers", DefaultVerifyWorkers)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "pretty")
}

// Load reads the optional config file (path may be empty) and environment
// variables prefixed with XSSLAB_.
func Load(v *viper.Viper, path string) error {
	SetDefaults(v)
	v.SetEnvPrefix("xsslab")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("xsslab")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && path == "" {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// FromViper resolves Settings from a loaded viper instance.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		ListenAddr:     v.GetString("server.listen"),
		SessionTTL:     v.GetDuration("server.session_ttl"),
		MaxSessions:    v.GetInt("server.max_sessions"),
		AutoUpdate:     v.GetBool("render.auto_update"),
		ScriptTimeout:  v.GetDuration("render.script_timeout"),
		MaxFrameDepth:  v.GetInt("render.max_frame_depth"),
		PresetsBaseURL: v.GetString("presets.base_url"),
		FetchTimeout:   v.GetDuration("presets.fetch_timeout"),
		FetchRateLimit: v.GetFloat64("presets.rate_limit"),
		VerifyWorkers:  v.GetInt("verify.workers"),
		LogLevel:       v.GetString("logging.level"),
		LogFormat:      v.GetString("logging.format"),
	}
}

// Default returns the settings with every key at its default value.
func Default() Settings {
	v := viper.New()
	SetDefaults(v)
	return FromViper(v)
}
