// Package gate decides, for every navigation, whether to render the requested
// view, redirect to login, or redirect to the role home.
//
// # Decision rules
//
//   - Public-only routes (login, signup) redirect an authenticated user home.
//   - Protected routes redirect a visitor without a user to [LoginPath].
//   - Protected routes with roles redirect a user outside the set to the role home.
//   - The root path always redirects.
//   - Everything else renders. Unknown paths are [NotFound].
//
// [Decide] and [Table.Decide] are pure. [Gate] adds the bootstrap phase: until
// the startup refresh settles, [Gate.Evaluate] returns [Wait] and
// [Gate.Navigate] blocks.
//
// # Architecture boundaries
//
// The gate reads session state through [Store] and issues redirects through
// [Navigator]. [Gate.Middleware] adapts the same decisions to net/http.
//
// # What this package must NOT do
//
//   - Call the auth backend directly (only the store's RefreshJWT at bootstrap).
//   - Mutate session state.
//   - Treat a role mismatch as an error; it is a redirect.
package gate
