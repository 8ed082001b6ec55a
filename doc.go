// Package portalAuth is the client-side authentication core of the photo-event
// portal: a [SessionStore] that owns who is logged in and mediates every
// session-mutating call to the auth backend.
//
// Every operation returns a tagged [Result] and never panics or returns a Go
// error past the store boundary. Login, Register and RefreshJWT are compound: the
// credential call is followed by a profile fetch, and a profile failure leaves the
// session in [PhaseTokenAcquired].
//
// # Architecture boundaries
//
// portalAuth is the public surface. It exposes [SessionStore], [Builder], [Config],
// the [AuthAPI] and [Persister] collaborator contracts, and value types. Flow
// orchestration and audit dispatch live under internal/. The HTTP implementation of
// AuthAPI lives in httpapi and route decisions in gate; both import this package,
// never the reverse.
//
// # What this package must NOT do
//
//   - Perform network I/O other than through the configured AuthAPI.
//   - Decide routes or redirects.
//   - Fail an operation because persistence failed.
package portalAuth
