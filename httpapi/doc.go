// Package httpapi implements portalAuth.AuthAPI against the portal REST backend
// under {BaseURL}/api/v1/auth.
//
// The client carries the HTTP-only refresh cookie in a cookie jar, attaches the
// bearer token from a portalAuth.TokenSource when one is present, and turns every
// failure into an error Result whose Err is an [*APIError] matching a portalAuth
// sentinel. User-facing error messages are handed to a [Notifier], except the
// "Token not provided" message an anonymous bootstrap produces.
package httpapi
