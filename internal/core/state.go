package core

import "sync/atomic"

// Process-wide flags. Serving is neither set nor read by the pipeline;
// filesystem events are classified as they arrive whatever its value.
// Healthy is set false by the scheduler's full rebuild and true when
// BuildAll finishes; no code path reads it. ShutdownRequested is a
// one-way flag (RequestShutdown never clears it); nothing in the pipeline
// sets or reads it, since shutdown is driven by context cancellation.
var (
	serving           atomic.Bool
	healthy           atomic.Bool
	shutdownRequested atomic.Bool
)

func IsServing() bool { return serving.Load() }
func SetServing(v bool) { serving.Store(v) }

func IsHealthy() bool { return healthy.Load() }
func SetHealthy(v bool) { healthy.Store(v) }

func IsShutdownRequested() bool { return shutdownRequested.Load() }
func RequestShutdown()          { shutdownRequested.Store(true) }
