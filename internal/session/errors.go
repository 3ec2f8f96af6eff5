package session

import "errors"

var (
	ErrNotFound         = errors.New("session not found")
	ErrNotRecording     = errors.New("session is not recording")
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	ErrStepNotFound     = errors.New("step not found")
	ErrInvalidField     = errors.New("invalid step field")
	ErrInvalidURL       = errors.New("url must be an absolute http or https url")
	ErrEmptyName        = errors.New("name must not be empty")
)
