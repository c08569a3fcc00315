// Package store defines the persistence interfaces for reviewers, admins,
// cafes, tasks and settlements, together with the errors implementations
// return. Implementations live in internal/platform/postgres.
package store
