package model

import "errors"

var (
	// ErrDecode reports source bytes the decoder rejected (malformed or encrypted)
	ErrDecode = errors.New("decode failure")

	// ErrStageViolation reports model state breaking an invariant a stage relies on
	ErrStageViolation = errors.New("stage violation")

	// ErrResourceExhausted reports input exceeding configured capacity
	ErrResourceExhausted = errors.New("resource exhausted")
)
