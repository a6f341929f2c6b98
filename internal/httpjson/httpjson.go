package httpjson

import (
	"encoding/json"
	"net/http"
)

type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	Write(w, status, ErrorBody{Error: message})
}

// WriteCodedError ajoute un code stable (ex: http_status, invalid_payload) à la réponse.
func WriteCodedError(w http.ResponseWriter, status int, code, message string) {
	Write(w, status, ErrorBody{Error: message, Code: code})
}
