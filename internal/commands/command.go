package commands

import (
	"errors"
	"fmt"
	"strings"
)

type Intent string

const (
	IntentAddCategory        Intent = "add_category"
	IntentDeleteCategory     Intent = "delete_category"
	IntentEditCategory       Intent = "edit_category"
	IntentEnterCategory      Intent = "enter_category"
	IntentAddItem            Intent = "add_item"
	IntentDeleteItem         Intent = "delete_item"
	IntentEditItem           Intent = "edit_item"
	IntentCompleteItem       Intent = "complete_item"
	IntentReturnToCategories Intent = "return_to_categories"
	IntentUndoLastAction     Intent = "undo_last_action"
	IntentUnrecognized       Intent = "unrecognized"
)

// ItemScoped reports whether the intent is only valid while an item list is open.
func (i Intent) ItemScoped() bool {
	switch i {
	case IntentAddItem, IntentDeleteItem, IntentEditItem, IntentCompleteItem:
		return true
	default:
		return false
	}
}

// Mutating reports whether the intent changes stored state and therefore
// records an undo entry.
func (i Intent) Mutating() bool {
	switch i {
	case IntentAddCategory, IntentDeleteCategory, IntentEditCategory,
		IntentAddItem, IntentDeleteItem, IntentEditItem, IntentCompleteItem:
		return true
	default:
		return false
	}
}

// Renames reports whether the intent carries a secondary (new name) target.
func (i Intent) Renames() bool {
	return i == IntentEditCategory || i == IntentEditItem
}

type ErrorCode string

const (
	ErrCodeRecognitionEmpty ErrorCode = "recognition_empty"
	ErrCodeUnrecognized     ErrorCode = "unrecognized"
	ErrCodeScopeViolation   ErrorCode = "scope_violation"
	ErrCodeConflict         ErrorCode = "conflict"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeUndoUnavailable  ErrorCode = "undo_unavailable"
	ErrCodeHandlerMissing   ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, format string, args ...any) *CommandError {
	return &CommandError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func RecognitionEmpty() error {
	return newError(ErrCodeRecognitionEmpty, "no speech recognised")
}

func Unrecognized(text string) error {
	return newError(ErrCodeUnrecognized, "unrecognised command: %s", text)
}

func ScopeViolation(intent Intent) error {
	return newError(ErrCodeScopeViolation, "open a category before running %s", intent)
}

func Conflict(kind, name string) error {
	return newError(ErrCodeConflict, "%s %q already exists", kind, name)
}

func NotFound(kind, name string) error {
	return newError(ErrCodeNotFound, "%s %q not found", kind, name)
}

func UndoUnavailable() error {
	return newError(ErrCodeUndoUnavailable, "nothing to undo")
}

// CodeOf returns the taxonomy code carried by err, or "" when err is not a
// *CommandError.
func CodeOf(err error) ErrorCode {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

type Command struct {
	Intent    Intent
	Primary   string
	Secondary string
	Raw       string
}

// HasTargets reports whether the command carries every target its intent
// needs before it can be executed.
func (c Command) HasTargets() bool {
	switch c.Intent {
	case IntentReturnToCategories, IntentUndoLastAction:
		return true
	case IntentUnrecognized:
		return false
	}
	if strings.TrimSpace(c.Primary) == "" {
		return false
	}
	if c.Intent.Renames() && strings.TrimSpace(c.Secondary) == "" {
		return false
	}
	return true
}

func (c Command) String() string {
	switch {
	case c.Secondary != "":
		return fmt.Sprintf("%s(%q -> %q)", c.Intent, c.Primary, c.Secondary)
	case c.Primary != "":
		return fmt.Sprintf("%s(%q)", c.Intent, c.Primary)
	default:
		return string(c.Intent)
	}
}
