package items

import "github.com/go-chi/chi/v5"

// RegisterRoutes registra las rutas de ítems.
// Las rutas fijas van antes que /{id}; chi igual les da prioridad.
func RegisterRoutes(route chi.Router, handler *Handler) {
	route.Route("/items", func(route chi.Router) {
		route.Get("/", handler.List)
		route.Post("/", handler.Create)

		route.Get("/search", handler.Search)
		route.Get("/category/{category}", handler.ListByCategory)
		route.Get("/low-stock", handler.ListLowStock)
		route.Get("/low-stock/{threshold}", handler.ListLowStockByThreshold)
		route.Get("/barcode/{barcode}", handler.GetByBarcode)
		route.Head("/barcode/{barcode}", handler.BarcodeExists)
		route.Get("/qr/{qrCode}", handler.GetByQRCode)
		route.Head("/qr/{qrCode}", handler.QRCodeExists)
		route.Get("/dashboard/stats", handler.DashboardStats)

		route.Get("/{id}", handler.GetByID)
		route.Put("/{id}", handler.Update)
		route.Patch("/{id}/quantity", handler.UpdateQuantity)
		route.Delete("/{id}", handler.Delete)
	})
}
