// Package api exposes the review desk over HTTP. Handlers decode and
// validate JSON payloads, resolve the caller from the request context and
// delegate to the services in internal/service. Errors are translated to
// status codes and client-safe messages in one place (HandleAPIError) so
// store and driver details never reach a response body.
package api
