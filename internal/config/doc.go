// Package config loads the portalctl configuration: defaults, a YAML file, a
// .env file, then PORTAL_* environment variables, each layer overriding the
// previous one.
package config
