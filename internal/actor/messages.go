// Package actor wires the five pipeline stages — watch, classify,
// schedule, diff/cache (embedded in scheduler), and broadcast — into one
// running system over buffered channels, and owns the startup/shutdown
// handshake between them. It is the Go analogue of the original's
// src/actor/coordinator package: a thin orchestrator with no pipeline
// logic of its own.
package actor

import "time"

// ChannelBuffer is the original's CHANNEL_BUFFER value. Nothing in this
// package reads it: each channel is sized where it is made
// (scheduler.Messages and every broadcast connection's outbox hold 32,
// the watcher's Events channel holds 256).
const ChannelBuffer = 32

// SchedulerShutdownGrace bounds how long Run waits for the scheduler to
// finish its current batch after the event pump has exited, mirroring
// the original's bounded wait on vdom_handle after sending
// VdomMsg::Shutdown. A batch that hasn't finished within the grace
// period is abandoned; the next cold start restores from whatever was
// last persisted.
const SchedulerShutdownGrace = 500 * time.Millisecond

// shutdownSignal is sent on pumpDone once the watcher's event pump has
// exited, telling Run it is safe to start the scheduler's bounded
// shutdown wait. It carries no data; its only role is as a handshake,
// the same part VdomMsg::Shutdown plays in the original.
type shutdownSignal struct{}
