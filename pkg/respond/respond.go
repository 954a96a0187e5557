package respond

import (
	"encoding/json"
	"errors"
	"net/http"
)

var ErrEmptyBody = errors.New("empty request body")

func JSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// Error writes {"message": ...}, the shape the task API uses for failures.
func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	if message == "" {
		message = http.StatusText(code)
	}
	JSON(w, r, code, map[string]string{"message": message})
}

func NoContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Decode reads a JSON body into v, rejecting empty bodies.
func Decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return ErrEmptyBody
	}
	return json.NewDecoder(r.Body).Decode(v)
}
