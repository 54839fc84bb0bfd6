// Package internal holds token generation primitives shared by the engine.
// Nothing here is part of the public API.
package internal
