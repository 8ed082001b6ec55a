// Package cli implements the portalctl command tree on cobra.
//
// Every command loads configuration in the root pre-run, builds a zerolog
// logger from it, and opens the session store against the configured
// persistence backend. Session commands always close the store on exit so the
// latest state is flushed.
package cli
