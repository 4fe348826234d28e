package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/logging"
)

// Коды ошибок в теле ответа.
const (
	CodeInvalidBody         = "INVALID_BODY"
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeHasAssignments      = "HAS_ASSIGNMENTS"
	CodeReopenConflict      = "REOPEN_CONFLICT"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL_ERROR"
)

type APIError struct {
	Error APIErrorBody `json:"error"`
}

type APIErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	// ConflictingAssignmentID заполняется для ALREADY_ASSIGNED.
	ConflictingAssignmentID int64 `json:"conflictingAssignmentId,omitempty"`
}

// RespondJSON отправляет JSON-ответ с указанным статус-кодом.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// BadRequest отправляет JSON-ответ со статусом 400.
func BadRequest(w http.ResponseWriter, code, message string) {
	RespondJSON(w, http.StatusBadRequest, APIError{
		Error: APIErrorBody{Code: code, Message: message},
	})
}

// HTTPError описывает контролируемую HTTP-ошибку.
type HTTPError struct {
	status  int
	code    string
	message string
}

func (e *HTTPError) Error() string {
	return e.message
}

// NewHTTPError создаёт новую HTTP-ошибку.
func NewHTTPError(status int, code, message string) *HTTPError {
	return &HTTPError{
		status:  status,
		code:    code,
		message: message,
	}
}

// NewBadRequestError создаёт 400 ошибку.
func NewBadRequestError(code, message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, code, message)
}

// WithErrorHandling оборачивает обработчик, централизуя выдачу ошибок.
// Преобразует доменные ошибки в HTTP-ответы с соответствующими статус-кодами.
func WithErrorHandling(fn func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			var httpErr *HTTPError
			// Если ошибка уже является HTTPError, используем её статус и код
			if errors.As(err, &httpErr) {
				RespondJSON(w, httpErr.status, APIError{
					Error: APIErrorBody{Code: httpErr.code, Message: httpErr.message},
				})
				return
			}
			// Иначе преобразуем доменную ошибку в HTTP-ответ
			WriteDomainError(w, r, err)
		}
	}
}

// sentinelErrors сопоставление sentinel-ошибок со статусом и кодом ответа.
var sentinelErrors = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrConcurrencyConflict, http.StatusConflict, CodeConcurrencyConflict},
	{domain.ErrHasAssignments, http.StatusConflict, CodeHasAssignments},
	{domain.ErrReopenConflict, http.StatusConflict, CodeReopenConflict},
	{domain.ErrEmailTaken, http.StatusConflict, CodeEmailTaken},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{domain.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden, CodeForbidden},
}

// WriteDomainError преобразует доменные ошибки в HTTP-ответы.
// Поля лога, прикреплённые к ошибке в сервисе, попадают в записи этого запроса.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := logging.ErrorCtx(r.Context(), err)
	requestID := chimw.GetReqID(ctx)

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		slog.DebugContext(ctx, "validation failed", "request_id", requestID, "error", err)
		RespondJSON(w, http.StatusBadRequest, APIError{Error: APIErrorBody{
			Code: CodeValidation, Message: validation.Error(), Field: validation.Field,
		}})
		return
	}

	var eligibility *domain.EligibilityError
	if errors.As(err, &eligibility) {
		slog.DebugContext(ctx, "assignment not eligible", "request_id", requestID, "reason", eligibility.Reason)
		status := http.StatusBadRequest
		if eligibility.Reason == domain.ReasonAlreadyAssigned {
			status = http.StatusConflict
		}
		RespondJSON(w, status, APIError{Error: APIErrorBody{
			Code:                    string(eligibility.Reason),
			Message:                 eligibility.Error(),
			ConflictingAssignmentID: eligibility.ConflictingAssignmentID,
		}})
		return
	}

	for _, known := range sentinelErrors {
		if errors.Is(err, known.err) {
			slog.DebugContext(ctx, "request rejected", "request_id", requestID, "code", known.code, "error", err)
			RespondJSON(w, known.status, APIError{Error: APIErrorBody{Code: known.code, Message: err.Error()}})
			return
		}
	}

	slog.ErrorContext(ctx, "unhandled domain error", "request_id", requestID, "error", err)
	RespondJSON(w, http.StatusInternalServerError, APIError{Error: APIErrorBody{Code: CodeInternal, Message: "internal server error"}})
}
