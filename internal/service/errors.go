package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoData           = errors.New("no data")
	ErrUpstream         = errors.New("upstream service failed")
)
