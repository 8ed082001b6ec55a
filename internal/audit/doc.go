// Package audit implements async dispatching of session events.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, zerolog, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: structured record of one session operation outcome.
//
// # Architecture boundaries
//
// This package owns buffering and sink delivery. It does NOT decide which events to
// emit; the session store does.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import portalAuth or any sibling internal package.
package audit
