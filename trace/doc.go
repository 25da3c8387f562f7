// Package trace implements the tamper-evident audit trail for one
// assessment session: an append-only sequence of immutable stage-transition
// events with a verification hash over the full ordered sequence.
//
// The core invariant is that no event, once appended, may be edited or
// removed; there is no mutation operation on the log. The verification
// hash is a deterministic function of the canonicalized event sequence,
// so any change to any field of any past event, including reordering,
// changes the hash, and identical sequences always reproduce identical
// hashes.
//
// Malformed events are rejected at construction time, before they enter
// the log; the trace's own operations never fail once an event has been
// admitted.
package trace
