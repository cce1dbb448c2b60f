package graph

import "errors"

var (
	ErrInvalidLabel        = errors.New("invalid label")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrInvalidEndpoint     = errors.New("invalid bond endpoint")
	ErrDanglingReference   = errors.New("bond endpoint does not exist")
	ErrUnknownNode         = errors.New("unknown node")
	ErrDuplicateGraphName  = errors.New("graph name already exists")
	ErrInvalidGraphName    = errors.New("invalid graph name")
	ErrGraphNotFound       = errors.New("graph not found")
	ErrInvalidQuery        = errors.New("invalid query")
)
