// Package mockapi is the development auth backend: an in-memory gin server that
// speaks the same /api/v1/auth contract as the production backend. It issues JWT
// access tokens in the response body and refresh tokens in an HTTP-only
// refresh_token cookie.
package mockapi
