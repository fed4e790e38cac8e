// Package engine implements the job lifecycle engine: a polling worker that
// claims queued jobs one at a time, drives them through the job state
// machine, dispatches to the registered executor for the job's type, and
// records outcomes and retry bookkeeping through the store contracts.
package engine
