// Package finding defines the value types produced by specialist analysis:
// evidence retrieved from the knowledge base, identified risks, deployment
// requirements, and the Finding that aggregates them per topic.
//
// Findings are produced once per specialist per assessment session and are
// immutable afterward. Construction-time validation (Validate) is the only
// gate: a Finding that fails validation never enters workflow state or the
// protocol trace.
package finding
