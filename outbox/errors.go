package outbox

import "errors"

var (
	// ErrUserDAORequired is returned when a user DAO is not provided.
	ErrUserDAORequired = errors.New("user DAO required")

	// ErrMessageDAORequired is returned when an unread message DAO is not provided.
	ErrMessageDAORequired = errors.New("unread message DAO required")

	// ErrPlatformRequired is returned when a messaging platform is not provided.
	ErrPlatformRequired = errors.New("messaging platform required")

	// ErrUnknownRecipient indicates a recipient with no stored user.
	ErrUnknownRecipient = errors.New("unknown recipient")

	// ErrNotLinked indicates a user without an id on the courier's platform.
	ErrNotLinked = errors.New("user not linked to platform")

	// ErrMalformedPayload indicates a queued message with no text to send.
	ErrMalformedPayload = errors.New("malformed message payload")
)
