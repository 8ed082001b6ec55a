// Package password hashes and verifies account passwords for the mock auth
// backend with Argon2id.
//
// Hashes use the PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Hasher.NeedsUpgrade] reports hashes produced with weaker parameters than the
// current config so callers can rehash after a successful login.
package password
