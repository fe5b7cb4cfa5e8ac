package domain

import "errors"

var (
	ErrTemplateNotFound = errors.New("questionnaire template not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrInstanceNotFound = errors.New("questionnaire instance not found")
	ErrNotOwner         = errors.New("caller does not own this resource")
	ErrInvalidSyncMode  = errors.New("invalid sync mode")
)
