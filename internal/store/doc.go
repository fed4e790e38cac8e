// Package store defines the persistence contracts consumed by the services
// and the job engine, along with shared error values and a transaction
// helper. Concrete implementations live under internal/platform/postgres.
package store
