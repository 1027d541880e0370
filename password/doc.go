// Package password derives and verifies argon2id password hashes encoded in
// the PHC string format. Raw passwords never leave this package; callers
// store only the encoded hash.
package password
