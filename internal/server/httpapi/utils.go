package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"grading_service/internal/grading"
	"grading_service/internal/service"
)

var ErrBadRequest = errors.New("bad request")

func mapErr(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, grading.ErrUnparsableFormat),
		errors.Is(err, grading.ErrLengthMismatch):
		return http.StatusBadRequest
	case errors.Is(err, grading.ErrQuestionCountMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTopicNotFound),
		errors.Is(err, service.ErrNoAnswerKey):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateSubmission),
		errors.Is(err, service.ErrDuplicateTopic):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// errorMessage keeps internal failures opaque to the client.
func errorMessage(err error, statusCode int) string {
	if statusCode == http.StatusInternalServerError {
		return http.StatusText(statusCode)
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func parsePathParam(r *http.Request, key string) (string, error) {
	val := chi.URLParam(r, key)
	if val == "" {
		return "", fmt.Errorf("%w: missing path param: %s", ErrBadRequest, key)
	}
	return val, nil
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid id", ErrBadRequest, field)
	}
	return id, nil
}
