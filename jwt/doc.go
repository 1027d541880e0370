// Package jwt mints and parses the signed access tokens issued by the auth
// engine. A token carries the owning user id, the session id it belongs to,
// and a short expiry; the session store, not the token, is the source of
// truth for whether a login is still alive.
package jwt
