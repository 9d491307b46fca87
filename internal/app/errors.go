package app

import "errors"

var (
	// ErrValidation marks rejected user input; details are wrapped around it.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials covers unknown username and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrChatNotFound       = errors.New("chat not found")
	ErrForbidden          = errors.New("forbidden")
	// ErrAcquireFailed marks a caption provider or transport fault, as
	// opposed to the expected no-transcript outcomes.
	ErrAcquireFailed = errors.New("caption acquisition failed")
	// ErrGenerationFailed marks a language-model gateway fault.
	ErrGenerationFailed = errors.New("reply generation failed")
)
