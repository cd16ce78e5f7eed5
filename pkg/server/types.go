package server

import (
	"github.com/lcalzada-xor/xsslab/pkg/dom"
	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/probe"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateSessionInput configures a new session. All fields are optional.
type CreateSessionInput struct {
	AutoUpdate *bool  `json:"auto_update"`
	Context    string `json:"context" validate:"omitempty,oneof=html-content html-attribute url css javascript challenges"`
	OutputID   string `json:"output_id" validate:"required_with=Context"`
	Payload    string `json:"payload" validate:"max=65536"`
}

// PayloadInput replaces the payload.
type PayloadInput struct {
	Payload string `json:"payload" validate:"max=65536"`
}

// OutputInput selects an output descriptor.
type OutputInput struct {
	Context string `json:"context" validate:"required,oneof=html-content html-attribute url css javascript challenges"`
	ID      string `json:"id" validate:"required"`
}

// PresetInput loads a preset into the payload.
type PresetInput struct {
	Context string `json:"context" validate:"required,oneof=html-content html-attribute url css javascript challenges"`
	Name    string `json:"name" validate:"required"`
}

// AutoUpdateInput toggles automatic rendering.
type AutoUpdateInput struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// SessionView is the observable state of a session.
type SessionView struct {
	ID             string                  `json:"id"`
	Context        models.InjectionContext `json:"context,omitempty"`
	OutputID       string                  `json:"output_id,omitempty"`
	Quality        models.Quality          `json:"quality,omitempty"`
	Payload        string                  `json:"payload"`
	AutoUpdate     bool                    `json:"auto_update"`
	LiveSourceCode string                  `json:"live_source_code"`
	Seq            uint64                  `json:"seq"`
	Alert          probe.Alert             `json:"alert"`
	PendingTimers  int                     `json:"pending_timers"`
	Console        []string                `json:"console"`
	Navigations    []dom.Navigation        `json:"navigations"`
}

// Event kinds.
const (
	EventRender = "render"
	EventAlert  = "alert"
)

// Event is one entry of a session's event log.
type Event struct {
	ID             int                     `json:"id"`
	Kind           string                  `json:"kind"`
	Seq            uint64                  `json:"seq,omitempty"`
	Context        models.InjectionContext `json:"context,omitempty"`
	OutputID       string                  `json:"output_id,omitempty"`
	LiveSourceCode string                  `json:"live_source_code,omitempty"`
	Error          string                  `json:"error,omitempty"`
	Alert          *probe.Alert            `json:"alert,omitempty"`
}

// SourceView is the documentation of one sink function.
type SourceView struct {
	Key          string   `json:"key"`
	Source       string   `json:"source"`
	Technologies []string `json:"technologies"`
}

// TimersView reports a timer flush.
type TimersView struct {
	Ran     int         `json:"ran"`
	Session SessionView `json:"session"`
}
