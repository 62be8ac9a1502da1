package scheduler

import (
	"context"
	"fmt"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
)

// JobHandler is the business-logic unit executed for one job class
type JobHandler interface {
	Run(ctx context.Context, rc *RunContext) error
}

// Registry maps job classes to their handlers. It is built once at startup
// so an unregistered class is a per-job configuration error at dispatch
// time, never a silent default.
type Registry struct {
	handlers map[models.JobClass]JobHandler
}

// NewRegistry creates an empty handler registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[models.JobClass]JobHandler)}
}

// Register binds a handler to a job class; rebinding a class is a
// programming error
func (r *Registry) Register(class models.JobClass, h JobHandler) error {
	if !models.IsValidJobClass(class) {
		return fmt.Errorf("unknown job class: %s", class)
	}
	if _, dup := r.handlers[class]; dup {
		return fmt.Errorf("handler already registered for job class %s", class)
	}
	r.handlers[class] = h
	return nil
}

// Lookup resolves the handler for a job class
func (r *Registry) Lookup(class models.JobClass) (JobHandler, bool) {
	h, ok := r.handlers[class]
	return h, ok
}
