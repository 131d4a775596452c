package core

// error_messages.go maps technical errors to messages an operator can act
// on. Each message has a code that can be quoted when reporting a problem.
//
// # Rule Errors (CFG001)
//
//	CFG001 - Invalid rule set: a rule has no selector, a bad pattern or an
//	         empty range. Patterns: "invalid rule set"
//
// # Table Errors (TBL001-TBL002)
//
//	TBL001 - Duplicate column: a table names the same column twice.
//	         Patterns: "duplicate column"
//	TBL002 - Table not found: the database master table does not exist.
//	         Patterns: "table not found", "does not exist"
//
// # File Errors (FILE001-FILE005)
//
//	FILE001 - File too large.    Patterns: "file too large", "request body too large"
//	FILE002 - Unreadable file.   Patterns: "invalid csv", "failed to open excel file"
//	FILE003 - Unsupported type.  Patterns: "unsupported file type"
//	FILE004 - No file.           Patterns: "no file provided"
//	FILE005 - Empty file.        Patterns: "empty file"
//
// # Comparison Errors (CMP001-CMP003)
//
//	CMP001 - System busy.        Patterns: "too many concurrent comparisons"
//	CMP002 - No master table.    Patterns: "no master table"
//	CMP003 - No table.           Patterns: "no table to validate"
//
// # Database Errors (DB004-DB007)
//
//	DB004 - Connection refused.  Patterns: "connection refused"
//	DB005 - Connection reset.    Patterns: "connection reset"
//	DB006 - Timeout.             Patterns: "timeout"
//	DB007 - No database.         Patterns: "no database configured"
//
// # Request Errors (REQ001-REQ002)
//
//	REQ001 - Request cancelled.  Patterns: "context canceled"
//	REQ002 - Request timed out.  Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests. Patterns: "rate limit"
//
// Unmatched errors map to ERR000; check the logs for the technical error.
// Patterns match case-insensitively and the first match wins.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// Specific patterns must come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "invalid rule set",
		msg: UserMessage{
			Message: "The validation rules are not usable",
			Action:  "Fix the listed rule problems and try again",
			Code:    "CFG001",
		},
	},

	{
		pattern: "duplicate column",
		msg: UserMessage{
			Message: "The table has two columns with the same name",
			Action:  "Rename or remove the repeated column header",
			Code:    "TBL001",
		},
	},
	{
		pattern: "table not found",
		msg: UserMessage{
			Message: "Master table not found",
			Action:  "Verify the table name is correct",
			Code:    "TBL002",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "Master table not found",
			Action:  "Verify the table name is correct",
			Code:    "TBL002",
		},
	},

	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file or raise the row cap",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file or raise the row cap",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid table",
			Action:  "Ensure every row has no more fields than the header",
			Code:    "FILE002",
		},
	},
	{
		pattern: "failed to open excel file",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Save the file as .xlsx or export it to CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "File type is not supported",
			Action:  "Use a .csv, .tsv or .xlsx file",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to check",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Please provide a file with a header row",
			Code:    "FILE005",
		},
	},

	{
		pattern: "too many concurrent comparisons",
		msg: UserMessage{
			Message: "System is busy with other comparisons",
			Action:  "Please wait a moment and try again",
			Code:    "CMP001",
		},
	},
	{
		pattern: "no master table",
		msg: UserMessage{
			Message: "No master table was provided",
			Action:  "Upload a master file, name a master table, or configure a default master",
			Code:    "CMP002",
		},
	},
	{
		pattern: "no table to validate",
		msg: UserMessage{
			Message: "No table was provided for validation",
			Action:  "Upload or name the file to check",
			Code:    "CMP003",
		},
	},

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
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller table or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "no database configured",
		msg: UserMessage{
			Message: "Database masters are not available",
			Action:  "Upload the master file instead, or set DATABASE_URL",
			Code:    "DB007",
		},
	},

	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "REQ002",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unmatched
// errors map to ERR000 and nil maps to the zero UserMessage.
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

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
