// Package audit defines the engine's structured audit event model and the
// asynchronous dispatcher that forwards events to caller-provided sinks.
//
// Dispatch never blocks a flow: the dispatcher buffers events on a channel and,
// when configured with DropIfFull, counts rather than waits on overflow. Audit
// events complement, but do not replace, the durable Activity rows written by the
// session layer.
package audit
