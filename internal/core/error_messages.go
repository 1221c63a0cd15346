package core

// error_messages.go maps import and export errors to short messages with
// a support code.
//
// # Error Codes Reference
//
// Sentinel errors are matched first with errors.Is, then the error text is
// searched case-insensitively for known driver messages.
//
//	CFG001 - Configuration: the model or its format list is misconfigured
//	FMT001 - Unknown format: the format is not registered or not active
//	FMT002 - Missing dependency: the format's runtime dependency is absent
//	PAR001 - Unreadable file: the file has no header row
//	IMP001 - Unsupported source: the import source kind is not handled
//	IMP002 - Row rejected: the store refused a record built from a row
//	JOB001 - Busy: every job slot stayed taken for the wait time
//	IO001  - Permission denied writing or reading a file
//	IO002  - File not found
//	DB001  - Duplicate or unique value
//	DB002  - Unknown column or table
//	DB003  - Store unreachable
//	ERR000 - Anything else; the log has the original error

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// UserMessage is the user-facing rendition of an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

// Order matters: ErrMissingDependency is checked before ErrNotFound
// because strict lookups wrap both.
var sentinelMessages = []sentinelMessage{
	{ErrMissingDependency, UserMessage{
		Message: "The format is installed but its dependency is unavailable",
		Action:  "Install the missing dependency or choose another format",
		Code:    "FMT002",
	}},
	{ErrNotFound, UserMessage{
		Message: "Unknown or inactive format",
		Action:  "Run `dataio formats` to list the available formats",
		Code:    "FMT001",
	}},
	{ErrConfiguration, UserMessage{
		Message: "The import or export is not configured correctly",
		Action:  "Check the record type's field catalog and format list",
		Code:    "CFG001",
	}},
	{ErrParse, UserMessage{
		Message: "The file could not be read as a table",
		Action:  "Make sure the first row holds the column names",
		Code:    "PAR001",
	}},
	{ErrNotImplemented, UserMessage{
		Message: "This kind of import source is not supported",
		Action:  "Pass a filesystem path",
		Code:    "IMP001",
	}},
	{ErrTooManyJobs, UserMessage{
		Message: "Too many imports and exports are running",
		Action:  "Please try again in a few moments",
		Code:    "JOB001",
	}},
	{fs.ErrPermission, UserMessage{
		Message: "Permission denied",
		Action:  "Check the permissions of the data directory",
		Code:    "IO001",
	}},
	{fs.ErrNotExist, UserMessage{
		Message: "File not found",
		Action:  "Check the path and try again",
		Code:    "IO002",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"duplicate key", UserMessage{
		Message: "A record with this value already exists",
		Action:  "Remove duplicate rows and import again",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "A record with this value already exists",
		Action:  "Remove duplicate rows and import again",
		Code:    "DB001",
	}},
	{"has no column named", UserMessage{
		Message: "The file has a column the store does not know",
		Action:  "Rename or remove the column",
		Code:    "DB002",
	}},
	{"no such column", UserMessage{
		Message: "The file has a column the store does not know",
		Action:  "Rename or remove the column",
		Code:    "DB002",
	}},
	{"does not exist", UserMessage{
		Message: "The file has a column or record type the store does not know",
		Action:  "Rename or remove the column",
		Code:    "DB002",
	}},
	{"no such table", UserMessage{
		Message: "Unknown record type",
		Action:  "Verify the record type name",
		Code:    "DB002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to the store",
		Action:  "Please try again in a few moments",
		Code:    "DB003",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log for details",
	Code:    "ERR000",
}

var rowRejected = UserMessage{
	Message: "A row could not be stored",
	Action:  "Fix the reported row; earlier rows were already imported",
	Code:    "IMP002",
}

// MapError converts an error to a UserMessage. A nil error maps to the
// zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	var rowErr *RowError
	if errors.As(err, &rowErr) {
		return rowRejected
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
