package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/CrowderSoup/gamific/services"
	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

// respondError maps err onto a status code. Unexpected failures are logged
// and answered with a generic message.
func respondError(w http.ResponseWriter, action string, err error) {
	switch services.KindOf(err) {
	case services.KindValidation:
		var ve *services.ValidationError
		errors.As(err, &ve)
		var details any
		if ve.Field != "" {
			details = map[string]string{"field": ve.Field, "rule": string(ve.Kind)}
		}
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", ve.Message, details)
	case services.KindNotFound:
		var e *services.Error
		message := "Not found"
		if errors.As(err, &e) {
			message = e.Message
		}
		writeError(w, http.StatusNotFound, "NOT_FOUND", message, nil)
	case services.KindUnauthenticated:
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
	case services.KindInvariant:
		log.Printf("Error %s: %v", action, err)
		writeError(w, http.StatusInternalServerError, "INCONSISTENT_ORDERING", "Server error", nil)
	default:
		log.Printf("Error %s: %v", action, err)
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil)
	}
}

// decodeBody reads a single JSON payload into target. A type mismatch is
// reported as a validation failure naming the field; trailing data after the
// payload is rejected.
func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return &services.ValidationError{Kind: services.InvalidFormat, Message: "Invalid request format"}
		}
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &services.ValidationError{
			Field:   typeErr.Field,
			Kind:    services.InvalidType,
			Message: "Invalid " + typeErr.Field + ": expected " + typeErr.Type.String(),
		}
	}
	return &services.ValidationError{Kind: services.InvalidFormat, Message: "Invalid request format"}
}

// pathID returns the {id} route variable once it is known to be a UUID.
func pathID(r *http.Request) (string, error) {
	id := mux.Vars(r)["id"]
	if err := services.ValidateID("id", id); err != nil {
		return "", err
	}
	return id, nil
}
