package scheduler

import "context"

// Job is a named unit of background work.
//
// Schedule is a robfig/cron expression (for example "@hourly" or "@every 1m").
// A job with an empty schedule is registered for on-demand runs only.
type Job interface {
	Name() string
	Schedule() string
	Execute(ctx context.Context) error
}

// FuncJob adapts a function to Job.
type FuncJob struct {
	JobName     string
	JobSchedule string
	Run         func(ctx context.Context) error
}

func (j FuncJob) Name() string                      { return j.JobName }
func (j FuncJob) Schedule() string                  { return j.JobSchedule }
func (j FuncJob) Execute(ctx context.Context) error { return j.Run(ctx) }
