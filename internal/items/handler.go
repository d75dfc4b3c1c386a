package items

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Lelo88/inventory-api-golang/internal/dashboard"
	"github.com/Lelo88/inventory-api-golang/internal/httpx"
)

// ServiceAPI define lo que el handler necesita del service.
// Permite testear handlers con stubs sin tocar la base.
type ServiceAPI interface {
	Create(ctx context.Context, input CreateItemInput) (Item, error)
	Update(ctx context.Context, id int64, input UpdateItemInput) (Item, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id int64) (Item, error)
	GetByBarcode(ctx context.Context, barcode string) (Item, error)
	GetByQRCode(ctx context.Context, qrCode string) (Item, error)
	ListByCategory(ctx context.Context, category string) ([]Item, error)
	SearchByName(ctx context.Context, term string) ([]Item, error)
	ListLowStock(ctx context.Context) ([]Item, error)
	ListLowStockByThreshold(ctx context.Context, threshold int) ([]Item, error)
	ExistsByBarcode(ctx context.Context, barcode string) (bool, error)
	ExistsByQRCode(ctx context.Context, qrCode string) (bool, error)
}

// StatsProvider arma el resumen del dashboard (dashboard.Aggregator).
type StatsProvider interface {
	Stats(ctx context.Context) (dashboard.Stats, error)
}

// Handler HTTP para ítems. Solo traduce HTTP <-> service.
type Handler struct {
	service ServiceAPI
	stats   StatsProvider
}

// NewHandler crea un handler de ítems.
func NewHandler(service ServiceAPI, stats StatsProvider) *Handler {
	return &Handler{service: service, stats: stats}
}

// List maneja GET /items.
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	items, err := handler.service.List(request.Context())
	handler.respondList(writer, request, items, err)
}

// Create maneja POST /items.
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input CreateItemInput
	if err := httpx.DecodeJSON(writer, request, &input); err != nil {
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidJSON, "invalid JSON body")
		return
	}

	item, err := handler.service.Create(request.Context(), input)
	if err != nil {
		writeError(writer, request, err)
		return
	}

	httpx.OK(writer, request, http.StatusCreated, item)
}

// GetByID maneja GET /items/{id}.
func (handler *Handler) GetByID(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(writer, request)
	if !ok {
		return
	}

	item, err := handler.service.Get(request.Context(), id)
	if err != nil {
		writeError(writer, request, err)
		return
	}

	httpx.OK(writer, request, http.StatusOK, item)
}

// Update maneja PUT /items/{id}. Reemplaza todos los campos editables.
func (handler *Handler) Update(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(writer, request)
	if !ok {
		return
	}

	var input UpdateItemInput
	if err := httpx.DecodeJSON(writer, request, &input); err != nil {
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidJSON, "invalid JSON body")
		return
	}

	item, err := handler.service.Update(request.Context(), id, input)
	if err != nil {
		writeError(writer, request, err)
		return
	}

	httpx.OK(writer, request, http.StatusOK, item)
}

// UpdateQuantity maneja PATCH /items/{id}/quantity.
// La cantidad viene en ?quantity=N o, si no está, en el body {"quantity": N}.
func (handler *Handler) UpdateQuantity(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(writer, request)
	if !ok {
		return
	}

	var quantity int
	if raw := strings.TrimSpace(request.URL.Query().Get("quantity")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidInput, "quantity must be an integer")
			return
		}
		quantity = value
	} else {
		var body struct {
			Quantity *int `json:"quantity"`
		}
		if err := httpx.DecodeJSON(writer, request, &body); err != nil {
			httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidJSON, "invalid JSON body")
			return
		}
		if body.Quantity == nil {
			httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidInput, "quantity is required")
			return
		}
		quantity = *body.Quantity
	}

	item, err := handler.service.UpdateQuantity(request.Context(), id, quantity)
	if err != nil {
		writeError(writer, request, err)
		return
	}

	httpx.OK(writer, request, http.StatusOK, item)
}

// Delete maneja DELETE /items/{id}. Borrar un id inexistente no es error: deleted=false.
func (handler *Handler) Delete(writer http.ResponseWriter, request *http.Request) {
	id, ok := parseID(writer, request)
	if !ok {
		return
	}

	deleted, err := handler.service.Delete(request.Context(), id)
	if err != nil {
		writeError(writer, request, err)
		return
	}

	httpx.OK(writer, request, http.StatusOK, map[string]any{
		"id":      id,
		"deleted": deleted,
	})
}

// Search maneja GET /items/search?name=.
func (handler *Handler) Search(writer http.ResponseWriter, request *http.Request) {
	items, err := handler.service.SearchByName(request.Context(), request.URL.Query().Get("name"))
	handler.respondList(writer, request, items, err)
}

// ListByCategory maneja GET /items/category/{category}.
func (handler *Handler) ListByCategory(writer http.ResponseWriter, request *http.Request) {
	items, err := handler.service.ListByCategory(request.Context(), pathParam(request, "category"))
	handler.respondList(writer, request, items, err)
}

// ListLowStock maneja GET /items/low-stock (umbral de cada ítem).
func (handler *Handler) ListLowStock(writer http.ResponseWriter, request *http.Request) {
	items, err := handler.service.ListLowStock(request.Context())
	handler.respondList(writer, request, items, err)
}

// ListLowStockByThreshold maneja GET /items/low-stock/{threshold}.
func (handler *Handler) ListLowStockByThreshold(writer http.ResponseWriter, request *http.Request) {
	threshold, err := strconv.Atoi(chi.URLParam(request, "threshold"))
	if err != nil {
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidInput, "threshold must be an integer")
		return
	}

	items, err := handler.service.ListLowStockByThreshold(request.Context(), threshold)
	handler.respondList(writer, request, items, err)
}

// GetByBarcode maneja GET /items/barcode/{barcode}.
func (handler *Handler) GetByBarcode(writer http.ResponseWriter, request *http.Request) {
	item, err := handler.service.GetByBarcode(request.Context(), pathParam(request, "barcode"))
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpx.OK(writer, request, http.StatusOK, item)
}

// BarcodeExists maneja HEAD /items/barcode/{barcode}: 200 si existe, 404 si no.
func (handler *Handler) BarcodeExists(writer http.ResponseWriter, request *http.Request) {
	exists, err := handler.service.ExistsByBarcode(request.Context(), pathParam(request, "barcode"))
	writeExists(writer, exists, err)
}

// GetByQRCode maneja GET /items/qr/{qrCode}.
func (handler *Handler) GetByQRCode(writer http.ResponseWriter, request *http.Request) {
	item, err := handler.service.GetByQRCode(request.Context(), pathParam(request, "qrCode"))
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpx.OK(writer, request, http.StatusOK, item)
}

// QRCodeExists maneja HEAD /items/qr/{qrCode}.
func (handler *Handler) QRCodeExists(writer http.ResponseWriter, request *http.Request) {
	exists, err := handler.service.ExistsByQRCode(request.Context(), pathParam(request, "qrCode"))
	writeExists(writer, exists, err)
}

// DashboardStats maneja GET /items/dashboard/stats.
func (handler *Handler) DashboardStats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.stats.Stats(request.Context())
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpx.OK(writer, request, http.StatusOK, stats)
}

func (handler *Handler) respondList(writer http.ResponseWriter, request *http.Request, items []Item, err error) {
	if err != nil {
		writeError(writer, request, err)
		return
	}
	if items == nil {
		items = []Item{}
	}
	httpx.OK(writer, request, http.StatusOK, items)
}

// parseID lee {id}. Si no es un entero positivo ya respondió 400.
func parseID(writer http.ResponseWriter, request *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidID, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// pathParam devuelve el parámetro decodificado. chi matchea sobre RawPath cuando existe
// (por ejemplo un payload QR con %2F), y ahí el valor llega escapado.
func pathParam(request *http.Request, name string) string {
	value := chi.URLParam(request, name)
	if request.URL.RawPath == "" {
		return value
	}
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

// writeError traduce errores de dominio a HTTP. Lo inesperado sale como 500 sin detalles.
func writeError(writer http.ResponseWriter, request *http.Request, err error) {
	switch {
	case errors.Is(err, ErrorInvalidInput):
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidInput, err.Error())
	case errors.Is(err, ErrorNotFound):
		httpx.Fail(writer, request, http.StatusNotFound, httpx.CodeNotFound, "item not found")
	case errors.Is(err, ErrorDuplicateBarcode):
		httpx.Fail(writer, request, http.StatusConflict, httpx.CodeConflict, "barcode already exists")
	default:
		httpx.Fail(writer, request, http.StatusInternalServerError, httpx.CodeInternalError, "unexpected error")
	}
}

// writeExists responde sin body, como corresponde a HEAD.
func writeExists(writer http.ResponseWriter, exists bool, err error) {
	switch {
	case err != nil:
		writer.WriteHeader(http.StatusInternalServerError)
	case exists:
		writer.WriteHeader(http.StatusOK)
	default:
		writer.WriteHeader(http.StatusNotFound)
	}
}
