package apperrors

import (
	"net/http"
)

// Factories and predefined variables for common domain errors.

// ErrNotFound converts a repository miss (e.g. gorm.ErrRecordNotFound)
// into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists converts a uniqueness violation into a 409.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrInvalidOperation builds a 400 for operations the current state does
// not allow.
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus builds a 409 for illegal status transitions.
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// --- Auth ---

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Read status ---

// ErrUnknownCollection: the collection name is outside the closed
// novedades/eventos/boletines enum. A programming error, not a data state.
var ErrUnknownCollection = New(
	CodeInvalidOperation,
	"readstatus",
	"Unknown read-tracked collection",
	http.StatusBadRequest,
)

// --- Mensajes ---

var ErrConversationNotFound = New(
	CodeNotFound,
	"mensajes",
	"Conversation not found",
	http.StatusNotFound,
)

var ErrConversationAccessDenied = New(
	CodeForbidden,
	"mensajes",
	"Access to conversation denied",
	http.StatusForbidden,
)

// --- Cambios (pickup requests) ---

var ErrPickupNotPending = New(
	CodeInvalidStatus,
	"cambios",
	"Pickup request has already been resolved",
	http.StatusConflict,
)

var ErrStudentNotOwned = New(
	CodeForbidden,
	"cambios",
	"Student does not belong to this parent",
	http.StatusForbidden,
)
