package scheduler

import (
	"encoding/json"
	"log"
	"time"
)

// RunContext carries the state of one execution attempt into a handler.
// Handlers write their summary message and counters directly into it; the
// dispatcher persists the contents onto the job log after the handler
// returns. This replaces any notion of a global "current log" reference.
type RunContext struct {
	Now    time.Time
	Logger *log.Logger

	// Message and Output become the job log's summary fields unless the
	// dispatcher has something more specific to say
	Message string
	Output  string

	metadata map[string]any
}

// NewRunContext creates a run context anchored at the dispatch instant
func NewRunContext(now time.Time, logger *log.Logger) *RunContext {
	return &RunContext{
		Now:      now,
		Logger:   logger,
		metadata: make(map[string]any),
	}
}

// SetMeta records a metadata value for the job log
func (rc *RunContext) SetMeta(key string, value any) {
	rc.metadata[key] = value
}

// AddCount increments an integer counter in the metadata
func (rc *RunContext) AddCount(key string, delta int) {
	n, _ := rc.metadata[key].(int)
	rc.metadata[key] = n + delta
}

// Count returns the current value of an integer counter
func (rc *RunContext) Count(key string) int {
	n, _ := rc.metadata[key].(int)
	return n
}

// MetadataJSON marshals the accumulated metadata; nil when empty
func (rc *RunContext) MetadataJSON() json.RawMessage {
	if len(rc.metadata) == 0 {
		return nil
	}
	b, err := json.Marshal(rc.metadata)
	if err != nil {
		return nil
	}
	return b
}
