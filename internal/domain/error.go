package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrStateConflict      = errors.New("entity is not in a valid state for this action")
	ErrAlreadyVIP         = errors.New("already a member")
	ErrNotChatMember      = errors.New("user is not a member of this chat")
	ErrChatNotAccepted    = errors.New("chat request has not been accepted")
	ErrGatewayFailure     = errors.New("payment gateway request failed")
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")
)
