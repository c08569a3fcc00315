// Package config loads the review desk's settings with viper: built-in
// defaults, then an optional config.yaml in the working directory, then
// REVIEWDESK_* environment variables.
//
// Settings are grouped into four sections. server covers the port, log level
// and timeouts. database covers the connection URL, pool sizes and automatic
// migration. auth covers the JWT secret, token lifetime, cookie flags,
// password hashing and the bootstrap admin. settlement covers the comment
// rate, the default unit price and the time zone used to bucket approvals
// into months. Loaded values are checked with validator struct tags.
package config
