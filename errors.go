package moc

import "errors"

var (
	ErrBadMagic         = errors.New("moc: bad magic")
	ErrUnexpectedEOF    = errors.New("moc: unexpected end of stream")
	ErrMalformedLength  = errors.New("moc: malformed length")
	ErrSchemaMismatch   = errors.New("moc: schema mismatch")
	ErrInvalidReference = errors.New("moc: invalid backreference")
	ErrLimitExceeded    = errors.New("moc: limit exceeded")
	ErrInvalidPayload   = errors.New("moc: invalid packed payload")
	ErrValidation       = errors.New("moc: validation failed")
)
