package utils

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Envelope wraps JSON object responses.
type Envelope map[string]any

// WriteJSON writes a JSON response with the given status code and payload.
func WriteJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	if data == nil {
		return errors.New("response data is empty")
	}

	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	js = append(js, '\n')
	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)

	return nil
}
