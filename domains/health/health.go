package health

import (
	"context"
	"time"
)

type Status string

const (
	StatusOk       Status = "OK"
	StatusError    Status = "ERROR"
	StatusDisabled Status = "DISABLED"
)

// Check is the outcome of probing one dependency.
type Check struct {
	Name      string         `json:"name"`
	Status    Status         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms"`
	Details   map[string]any `json:"details,omitempty"`
}

type Report struct {
	Status    Status         `json:"status"`
	Checks    []Check        `json:"checks"`
	Config    map[string]any `json:"config"`
	CheckedAt time.Time      `json:"checked_at"`
}

// Probe checks one dependency. A nil error means healthy.
type Probe struct {
	Name    string
	Check   func(ctx context.Context) error
	Details func() map[string]any
}

type IHealthUsecase interface {
	Check(ctx context.Context) Report
}
