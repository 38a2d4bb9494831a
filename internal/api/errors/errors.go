// Пакет errors — конструкторы стандартных ошибок QuickFolio API.
// Единый формат: {"error": "...", "details": [...]}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// Сообщения об ошибках, видимые клиенту.
const (
	MsgValidationFailed = "Validation failed"
	MsgMethodNotAllowed = "Method not allowed"
	MsgInternal         = "Internal server error"
	MsgUnauthorized     = "Unauthorized"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// WriteError записывает ответ ошибки. details может быть nil.
func WriteError(w http.ResponseWriter, statusCode int, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:   message,
		Details: details,
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationFailed — 400 с перечнем ошибок полей.
func ValidationFailed(w http.ResponseWriter, details any) {
	WriteError(w, http.StatusBadRequest, MsgValidationFailed, details)
}

// BadRequest — 400 с произвольным сообщением (например, "File ID is required").
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, nil)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, nil)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, MsgUnauthorized, message)
}

// MethodNotAllowed — 405 метод не поддерживается.
func MethodNotAllowed(w http.ResponseWriter) {
	WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed, nil)
}

// InternalError — 500 внутренняя ошибка. Подробности клиенту не раскрываются.
func InternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, MsgInternal, nil)
}
