// Package internal holds token, secret, and code generation helpers shared by
// the engine flows. Nothing here is importable outside the module.
package internal
