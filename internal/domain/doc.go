// Package domain contains the business entities of the review desk: cafes,
// reviewers, tasks and monthly settlements. The task status state machine
// and the settlement arithmetic live here so that they can be tested
// without a database or transport.
package domain
