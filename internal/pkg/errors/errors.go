package errors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalid         = errors.New("invalid")
	ErrTooMany         = errors.New("too many requests")
	ErrInternal        = errors.New("internal")
	ErrExtraction      = errors.New("extraction failed")
	ErrSessionCreation = errors.New("session creation failed")
	ErrCollaborator    = errors.New("collaborator invocation failed")
	ErrSourceNotFound  = errors.New("source not found")
	ErrInvalidPage     = errors.New("invalid page")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsSourceNotFound(err error) bool {
	return errors.Is(err, ErrSourceNotFound)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}
