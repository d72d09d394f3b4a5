package scene

import "errors"

// Errors returned by registry operations. They are wrapped with context;
// test for them with errors.Is.
var (
	ErrEmptyField       = errors.New("empty name")
	ErrEntityNotFound   = errors.New("entity not found")
	ErrNameExists       = errors.New("entity name already exists")
	ErrDegenerate       = errors.New("collinear points do not define a plane")
	ErrInvalidFormat    = errors.New("invalid scene format")
	ErrTypeMismatch     = errors.New("parameter type mismatch")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrWrongKind        = errors.New("wrong entity kind")
)
