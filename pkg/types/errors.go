package types

import "errors"

// Transition errors. These signal caller bugs or sequencing errors; the
// state is left untouched when one is returned.
var (
	ErrEntityNotFound    = errors.New("entity not found")
	ErrPaginateUnfetched = errors.New("cannot paginate a data key with no reference")
	ErrInvalidDataKey    = errors.New("data key must not be empty")
	ErrInvalidMethod     = errors.New("invalid request method")
	ErrUnknownEvent      = errors.New("unknown event")
)

// Normalization errors.
var (
	ErrInvalidLinkage    = errors.New("invalid resource linkage")
	ErrUnrecognizedShape = errors.New("unrecognized reference shape")
)

// Projection errors.
var (
	ErrRelationshipNotFound = errors.New("relationship not found")
)
