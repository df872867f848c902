package catalog

import "errors"

var (
	ErrEmptyQuery    = errors.New("search query is required")
	ErrUnknownSource = errors.New("unknown source")
	ErrUnknownStore  = errors.New("unknown store")
)
