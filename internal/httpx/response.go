package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Códigos de error que expone la API.
const (
	CodeInvalidJSON   = "invalid_json"
	CodeInvalidInput  = "invalid_input"
	CodeInvalidID     = "invalid_id"
	CodeNotFound      = "not_found"
	CodeConflict      = "conflict"
	CodeEncodingError = "encoding_error"
	CodeDecodeError   = "decode_error"
	CodeInternalError = "internal_error"
	CodeNotReady      = "not_ready"
)

// Response es el sobre estándar que devuelve la API.
type Response struct {
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
	Meta  *Meta      `json:"meta,omitempty"`
}

// Meta lleva datos de trazabilidad.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	TimeUTC   string `json:"time_utc,omitempty"`
}

// ErrorBody describe un error. Nunca lleva SQL ni errores internos.
type ErrorBody struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON escribe la respuesta. Si el encode falla el status ya salió, así que solo queda un body de error plano.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)

	if err := enc.Encode(resp); err != nil {
		http.Error(w, `{"error":{"code":"internal_error","message":"internal server error"}}`, http.StatusInternalServerError)
	}
}

// OK devuelve una respuesta exitosa con data.
func OK(w http.ResponseWriter, r *http.Request, status int, data any) {
	JSON(w, status, Response{Data: data, Meta: newMeta(r)})
}

// Fail devuelve un error estructurado.
func Fail(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	JSON(w, status, Response{
		Error: &ErrorBody{Code: code, Message: message},
		Meta:  newMeta(r),
	})
}

// PNG escribe bytes de imagen tal cual, para endpoints que devuelven la imagen y no JSON.
func PNG(w http.ResponseWriter, r *http.Request, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	if id := RequestIDFrom(r); id != "" {
		w.Header().Set(RequestIDHeader, id)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func newMeta(r *http.Request) *Meta {
	return &Meta{
		RequestID: RequestIDFrom(r),
		TimeUTC:   time.Now().UTC().Format(time.RFC3339),
	}
}
