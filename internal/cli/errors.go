package cli

import "errors"

// Errors returned by the CLI layer. Library errors from pkg/sqlcrud pass
// through unchanged.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDBPathEmpty        = errors.New("db cannot be empty")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrSQLRequired        = errors.New("sql statement is required")
	ErrAssignmentRequired = errors.New("at least one col=value pair is required")
	ErrInvalidAssignment  = errors.New("expected col=value")
	ErrUnterminatedQuote  = errors.New("unterminated quote")
	ErrNoRows             = errors.New("query returned no rows")
)
