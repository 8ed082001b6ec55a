// Package role defines the closed set of portal roles and the single lookup table
// that maps each role to its home path.
//
// # Architecture boundaries
//
// Redirect logic in the gate and any authorization check elsewhere must consult
// [HomePath] and [Role.In] instead of comparing role strings directly.
//
// # What this package must NOT do
//
//   - Import portalAuth, gate, or session (no upward imports).
//   - Perform I/O.
package role
