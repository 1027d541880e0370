// Package session tracks live authenticated contexts. Sessions are keyed by
// a hash of their current access token and indexed by owning user, so one
// user can hold many concurrent device sessions.
//
// A session is valid iff its expiry lies in the future; expiry is detected
// lazily by callers on access. Stores never hold raw tokens.
package session
