package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyAttached    = errors.New("project is already attached to this client")
	ErrDuplicateProject   = errors.New("project with this coolify uuid already exists")
	ErrDeployment         = errors.New("coolify request failed")
	ErrUnknownTable       = errors.New("unknown table")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrGoogleDisabled     = errors.New("google sign-in is not configured")
	ErrArchiveDisabled    = errors.New("backup archiving is not enabled")
)
