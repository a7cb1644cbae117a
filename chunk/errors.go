/*
File    : raven/chunk/errors.go
Package : chunk
*/
package chunk

import "errors"

var errJumpTooFar = errors.New("chunk: jump offset exceeds 65535 bytes")

// ErrJumpTooFar is returned by PatchJump/EmitJumpBack when a compiled
// block is too large for a 2-byte jump operand to reach.
var ErrJumpTooFar = errJumpTooFar
