package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader es el header por el que entra y sale el id de la request.
const RequestIDHeader = "X-Request-Id"

// RequestIDFrom devuelve el id de la request.
// Primero el que dejó el middleware en el contexto, después el header entrante.
func RequestIDFrom(request *http.Request) string {
	if request == nil {
		return ""
	}
	if id, ok := request.Context().Value(middleware.RequestIDKey).(string); ok && id != "" {
		return id
	}
	return request.Header.Get(RequestIDHeader)
}

// RequestID asegura que toda request tenga un id: respeta el que manda el cliente
// y si no hay uno genera un UUID. Lo guarda en el contexto con la key de chi
// para que middleware.GetReqID siga funcionando, y lo devuelve en la respuesta.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
