// Package flows contains pure-function orchestrators for every SessionStore
// operation.
//
// Each flow function (RunAcquire, RunFetchUser, RunLogout) accepts a typed dependency
// struct and returns a result without side-effects beyond those dependencies. The
// compound operations (login, register, refresh) are modeled as a two-step saga:
// credential call, then profile fetch, with [StageTokenAcquired] as the named
// intermediate state.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the auth API, state mutation callbacks, audit
// emission and metrics. They do NOT own any of these resources; ownership stays
// with the SessionStore.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import portalAuth (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency funcs.
package flows
