package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//	DB005 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//	DB008 - Master query failed: The schedule could not be read from the database
//	        Patterns: "query master", "read master"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL004 - Missing column: Required column is missing
//	         Patterns: "missing required column"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Malformed source: File could not be read as a schedule export
//	         Patterns: "malformed source"
//	SRC002 - Duplicate label: Two sources share a label
//	         Patterns: "duplicate source label"
//	SRC003 - Unknown kind: No source kind matches the file
//	         Patterns: "unknown source kind"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	          Patterns: "file too large"
//	FILE002 - Unreadable workbook: Master file is not a valid workbook or CSV
//	          Patterns: "unsupported master", "open workbook"
//	FILE003 - Encoding error: File contains invalid characters
//	          Patterns: "encoding error"
//	FILE004 - No file: No file was selected
//	          Patterns: "no file provided"
//	FILE005 - Empty file: The uploaded file is empty
//	          Patterns: "empty file"
//
// # Run Errors (REC001-REC099)
//
//	REC001 - Incomplete: At least one source could not be reconciled
//	         Patterns: "reconciliation incomplete"
//	REC002 - System busy: Too many runs in progress
//	         Patterns: "too many concurrent runs"
//	REC003 - Run expired: Run not found
//	         Patterns: "run not found"
//	REC004 - Request cancelled: Request was cancelled
//	         Patterns: "context canceled"
//	REC005 - Request timeout: Request timed out
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones. A run error embeds the messages of its failed sources,
// which is why source and validation patterns come before REC001.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Validation and source errors
	// =========================================================================
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing",
			Action:  "Check that all required columns are present in your file",
			Code:    "VAL004",
		},
	},
	{
		pattern: "malformed source",
		msg: UserMessage{
			Message: "File could not be read as a schedule export",
			Action:  "Upload the CSV or JSON file exactly as exported",
			Code:    "SRC001",
		},
	},
	{
		pattern: "duplicate source label",
		msg: UserMessage{
			Message: "Two sources share the same label",
			Action:  "Rename one of the files or give each source its own label",
			Code:    "SRC002",
		},
	},
	{
		pattern: "unknown source kind",
		msg: UserMessage{
			Message: "File type is not a supported source",
			Action:  "Upload .csv flat exports or .json event feeds",
			Code:    "SRC003",
		},
	},

	// =========================================================================
	// File errors
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file or remove unused columns",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported master",
		msg: UserMessage{
			Message: "Master schedule is not a valid workbook or CSV",
			Action:  "Upload the schedule as .xlsx or .csv",
			Code:    "FILE002",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "Master schedule is not a valid workbook or CSV",
			Action:  "Upload the schedule as .xlsx or .csv",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Select a master schedule and at least one source",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header and data rows",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Database errors
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "query master",
		msg: UserMessage{
			Message: "The schedule could not be read from the database",
			Action:  "Check the master query and database permissions",
			Code:    "DB008",
		},
	},
	{
		pattern: "read master",
		msg: UserMessage{
			Message: "The schedule could not be read from the database",
			Action:  "Check the master query and database permissions",
			Code:    "DB008",
		},
	},

	// =========================================================================
	// Run errors
	// =========================================================================
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "System is busy processing other reconciliations",
			Action:  "Please wait a moment and try again",
			Code:    "REC002",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "Reconciliation run not found",
			Action:  "Results expire after a while. Please run the reconciliation again",
			Code:    "REC003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REC004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try fewer or smaller sources, or try again later",
			Code:    "REC005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "reconciliation incomplete",
		msg: UserMessage{
			Message: "Some sources could not be reconciled",
			Action:  "Review the failed sources listed with the result",
			Code:    "REC001",
		},
	},

	// =========================================================================
	// Rate limiting
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether an error matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
