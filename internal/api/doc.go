// Package api contains the HTTP handlers for tasks, jobs, and report
// downloads, plus the error-to-status mapping that keeps internal error
// details out of responses.
package api
