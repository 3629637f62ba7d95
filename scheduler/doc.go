// Package scheduler runs a recurring task on a fixed delay.
//
// A Recurring runner waits Config.Delay, runs its Task, then waits
// Config.Period measured from the end of that run before the next one. Runs
// never overlap, so a slow run pushes the next one back instead of piling up.
//
// The task decides after each run whether it should run again:
//
//	r := scheduler.New(task, scheduler.Config{Delay: time.Minute, Period: 24 * time.Hour})
//	go r.Run(ctx)
//	...
//	r.Cancel()
//
// State machine:
//
//	Idle ──tick──> Running ──true──> Idle
//	                  │
//	                  ├──false──> Stopped
//	any ──cancel──> Cancelled
package scheduler
