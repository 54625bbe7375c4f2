package cron

import (
	"context"
	"fmt"
)

// Job is one unit of scheduled work. Name labels logs, metrics and the
// joined cycle error.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry is an ordered set of jobs keyed by name.
type Registry struct {
	jobs []Job
}

// NewRegistry registers jobs in order, skipping nils and repeated names.
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{}
	for _, job := range jobs {
		_ = r.Register(job)
	}
	return r
}

func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	for _, existing := range r.jobs {
		if existing.Name() == job.Name() {
			return fmt.Errorf("cron job %q already registered", job.Name())
		}
	}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns a copy in registration order.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.jobs))
	for i, job := range r.jobs {
		names[i] = job.Name()
	}
	return names
}
