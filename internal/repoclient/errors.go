// errors.go — разбор ошибок Repository API.
package repoclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// maxErrorBody — предел чтения тела ошибки (защита от огромных ответов).
const maxErrorBody = 64 << 10

// APIError — не-2xx ответ Repository API.
// Для 400 заполняется FieldErrors (поле → сообщения), для остальных
// статусов — Message.
type APIError struct {
	// StatusCode — HTTP статус-код ответа
	StatusCode int
	// FieldErrors — ошибки валидации по полям (только 400)
	FieldErrors map[string][]string
	// Message — сообщение для нетиповых ошибок
	Message string
	// Body — сырое тело ответа (для ответов нестандартной формы,
	// например параллельного массива построчных ошибок contributors)
	Body []byte
}

func (e *APIError) Error() string {
	if len(e.FieldErrors) > 0 {
		fields := make([]string, 0, len(e.FieldErrors))
		for f := range e.FieldErrors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		return fmt.Sprintf("repository api %d: ошибки валидации полей %s",
			e.StatusCode, strings.Join(fields, ", "))
	}
	return fmt.Sprintf("repository api %d: %s", e.StatusCode, e.Message)
}

// IsValidation сообщает, является ли ошибка ошибкой валидации (400).
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsTransient сообщает, имеет ли смысл повтор той же операции
// (5xx и таймауты gateway).
func (e *APIError) IsTransient() bool {
	return e.StatusCode >= 500
}

// decodeAPIError разбирает тело не-2xx ответа.
func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode, Body: body}

	if resp.StatusCode == http.StatusBadRequest {
		// 400 — карта поле → список сообщений.
		var fieldErrs map[string][]string
		if err := json.Unmarshal(body, &fieldErrs); err == nil && len(fieldErrs) > 0 {
			apiErr.FieldErrors = fieldErrs
			return apiErr
		}
	}

	// Остальные статусы (и нераспознанные 400) — непрозрачное сообщение.
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Error.Message != "":
			apiErr.Message = envelope.Error.Message
		case envelope.Detail != "":
			apiErr.Message = envelope.Detail
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
