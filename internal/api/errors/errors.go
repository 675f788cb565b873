// Пакет errors — конструкторы стандартных ошибок Editor Module.
// Единый формат: {"error": {"code": "...", "message": "...", ...}}.
// Все HTTP-ответы с ошибками должны использовать функции этого пакета.
package errors

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок API Editor Module.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodeReleaseLive        = "RELEASE_LIVE"
	CodeNotFound           = "NOT_FOUND"
	CodeUpstreamError      = "UPSTREAM_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Fields — пополевые ошибки валидации (только VALIDATION_ERROR)
	Fields map[string][]string `json:"fields,omitempty"`
	// Missing — недостающие предусловия (только PRECONDITION_FAILED)
	Missing []string `json:"missing,omitempty"`
}

// WriteError записывает ответ ошибки в стандартном формате.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	writeBody(w, statusCode, errorDetail{Code: code, Message: message})
}

// writeBody сериализует и записывает тело ошибки.
func writeBody(w http.ResponseWriter, statusCode int, detail errorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Error: detail})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// FieldValidationError — 400 с пополевыми ошибками валидации.
func FieldValidationError(w http.ResponseWriter, message string, fields map[string][]string) {
	writeBody(w, http.StatusBadRequest, errorDetail{
		Code:    CodeValidationError,
		Message: message,
		Fields:  fields,
	})
}

// PreconditionFailed — 409 провал предусловий публикации.
func PreconditionFailed(w http.ResponseWriter, message string, missing []string) {
	writeBody(w, http.StatusConflict, errorDetail{
		Code:    CodePreconditionFailed,
		Message: message,
		Missing: missing,
	})
}

// ReleaseLive — 409 операция запрещена для опубликованного релиза.
func ReleaseLive(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeReleaseLive, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// UpstreamError — 502 Repository API недоступен.
func UpstreamError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeUpstreamError, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
