package barcode

import "github.com/go-chi/chi/v5"

// RegisterRoutes registra las rutas de generación, lectura y validación de códigos.
func RegisterRoutes(route chi.Router, handler *Handler) {
	route.Route("/barcode", func(route chi.Router) {
		route.Post("/generate", handler.Generate)
		route.Post("/qr/generate", handler.GenerateQR)
		route.Post("/decode", handler.Decode)
		route.Post("/decode/base64", handler.DecodeBase64)
		route.Get("/items/{id}/qr-label", handler.QRLabel)
		route.Get("/items/{id}/qr-label.png", handler.QRLabelPNG)
		route.Post("/validate", handler.Validate)
	})
}
