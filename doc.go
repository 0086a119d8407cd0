// Package brig is a lazy relational-query builder with interchangeable
// execution backends. Callers compose scan, filter, project, aggregate
// and limit operations into an immutable logical plan through a
// DataFrame, then trigger evaluation with Collect, which dispatches to
// the local in-process engine, a remote executor service, or a legacy
// cluster-manager-backed executor depending on the Context the
// DataFrame was created from.
package brig
