package config

import "time"

// AppName is the program name used in headers and banners.
const AppName = "xsslab"

// Version is the current version of xsslab
const Version = "v1.0.0"

// Author is the author of the tool
const Author = "@lcalzada-xor"

// Default Values
const (
	DefaultListenAddr      = "127.0.0.1:4280"
	DefaultSessionTTL      = 30 * time.Minute
	DefaultMaxSessions     = 64
	DefaultVerifyWorkers   = 8
	DefaultScriptTimeout   = 2 * time.Second
	DefaultFetchTimeout    = 10 * time.Second
	DefaultFetchRateLimit  = 10
	DefaultMaxFrameDepth   = 3
	DefaultDemoWindowName  = "xss-demo-window"
	DefaultProbeGlobalName = "xss"
)

// ChallengeGroupName is the display name of the context-free descriptor group.
const ChallengeGroupName = "Challenges"
