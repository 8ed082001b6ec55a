// Package jwt issues and verifies the portal's access and refresh tokens, and lets
// clients read a token's expiry without holding the verification key.
//
// Servers (the mock backend) use [Manager]. Clients use [PeekExpiry] only to schedule
// a silent refresh; they never trust unverified claims for authorization.
package jwt
