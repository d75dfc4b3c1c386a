package barcode

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Lelo88/inventory-api-golang/internal/httpx"
	"github.com/Lelo88/inventory-api-golang/internal/items"
)

// maxUploadBytes limita las imágenes subidas por multipart.
const maxUploadBytes = 10 << 20

// Renderer es lo que el handler usa para generar y leer imágenes (Service lo cumple).
type Renderer interface {
	Barcode(ctx context.Context, text string) ([]byte, error)
	QR(ctx context.Context, text string, width, height int) ([]byte, error)
	QRLabel(ctx context.Context, payload string) ([]byte, error)
	Decode(data []byte) (string, error)
}

// ItemLookup son las búsquedas de ítems que hacen decode, label y validate.
type ItemLookup interface {
	Get(ctx context.Context, id int64) (items.Item, error)
	GetByBarcode(ctx context.Context, barcode string) (items.Item, error)
	GetByQRCode(ctx context.Context, qrCode string) (items.Item, error)
}

// Handler HTTP de barcode/QR.
type Handler struct {
	renderer Renderer
	items    ItemLookup
	logger   *zap.Logger
}

func NewHandler(renderer Renderer, lookup ItemLookup, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{renderer: renderer, items: lookup, logger: logger}
}

type generateRequest struct {
	Text   string `json:"text"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type decodeResponse struct {
	DecodedText   string      `json:"decoded_text"`
	Success       bool        `json:"success"`
	InventoryItem *items.Item `json:"inventory_item,omitempty"`
}

// Generate maneja POST /barcode/generate.
func (handler *Handler) Generate(writer http.ResponseWriter, request *http.Request) {
	var body generateRequest
	if !decodeBody(writer, request, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidInput, "text is required")
		return
	}

	data, err := handler.renderer.Barcode(request.Context(), body.Text)
	if err != nil {
		handler.writeError(writer, request, err)
		return
	}

	httpx.OK(writer, request, http.StatusOK, map[string]any{
		"barcode": EncodeBase64(data),
		"text":    body.Text,
	})
}

// GenerateQR maneja POST /barcode/qr/generate.
func (handler *Handler) GenerateQR(writer http.ResponseWriter, request *http.Request) {
	var body generateRequest
	if !decodeBody(writer, request, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidInput, "text is required")
		return
	}

	data, err := handler.renderer.QR(request.Context(), body.Text, body.Width, body.Height)
	if err != nil {
		handler.writeError(writer, request, err)
		return
	}

	httpx.OK(writer, request, http.StatusOK, map[string]any{
		"qr_code": EncodeBase64(data),
		"text":    body.Text,
	})
}

// Decode maneja POST /barcode/decode con la imagen en el campo multipart "image".
func (handler *Handler) Decode(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, maxUploadBytes)
	file, _, err := request.FormFile("image")
	if err != nil {
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidInput, "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidInput, "could not read image")
		return
	}

	handler.decodeAndRespond(writer, request, data)
}

// DecodeBase64 maneja POST /barcode/decode/base64 con {"image": "<base64>"}.
func (handler *Handler) DecodeBase64(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Image string `json:"image"`
	}
	if !decodeBody(writer, request, &body) {
		return
	}

	data, err := DecodeBase64(body.Image)
	if err != nil {
		handler.writeError(writer, request, err)
		return
	}

	handler.decodeAndRespond(writer, request, data)
}

func (handler *Handler) decodeAndRespond(writer http.ResponseWriter, request *http.Request, data []byte) {
	text, err := handler.renderer.Decode(data)
	if err != nil {
		handler.writeError(writer, request, err)
		return
	}

	response := decodeResponse{DecodedText: text, Success: true}

	item, err := handler.lookupDecoded(request.Context(), text)
	switch {
	case err == nil:
		response.InventoryItem = &item
	case errors.Is(err, items.ErrorNotFound):
		// El código se leyó bien pero no es de ningún ítem.
	default:
		handler.writeError(writer, request, err)
		return
	}

	httpx.OK(writer, request, http.StatusOK, response)
}

// lookupDecoded busca el texto como payload QR si tiene ese formato, y si no como barcode.
func (handler *Handler) lookupDecoded(ctx context.Context, text string) (items.Item, error) {
	if _, _, ok := items.ParseQRPayload(text); ok {
		return handler.items.GetByQRCode(ctx, text)
	}
	return handler.items.GetByBarcode(ctx, strings.TrimSpace(text))
}

// QRLabel maneja GET /barcode/items/{id}/qr-label.
func (handler *Handler) QRLabel(writer http.ResponseWriter, request *http.Request) {
	item, data, ok := handler.renderLabel(writer, request)
	if !ok {
		return
	}

	httpx.OK(writer, request, http.StatusOK, map[string]any{
		"qr_code":   EncodeBase64(data),
		"item_id":   item.ID,
		"item_name": item.Name,
		"barcode":   item.Barcode,
		"payload":   labelPayload(item),
	})
}

// QRLabelPNG maneja GET /barcode/items/{id}/qr-label.png y devuelve la imagen cruda.
func (handler *Handler) QRLabelPNG(writer http.ResponseWriter, request *http.Request) {
	_, data, ok := handler.renderLabel(writer, request)
	if !ok {
		return
	}
	httpx.PNG(writer, request, data)
}

func (handler *Handler) renderLabel(writer http.ResponseWriter, request *http.Request) (items.Item, []byte, bool) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidID, "id must be a positive integer")
		return items.Item{}, nil, false
	}

	item, err := handler.items.Get(request.Context(), id)
	if err != nil {
		handler.writeError(writer, request, err)
		return items.Item{}, nil, false
	}

	data, err := handler.renderer.QRLabel(request.Context(), labelPayload(item))
	if err != nil {
		handler.writeError(writer, request, err)
		return items.Item{}, nil, false
	}
	return item, data, true
}

// labelPayload usa el payload guardado; uno vacío solo puede darse entre las fases del alta.
func labelPayload(item items.Item) string {
	if item.QRCode != "" {
		return item.QRCode
	}
	return items.FormatQRPayload(item.ID, item.Name)
}

// Validate maneja POST /barcode/validate.
// Si el barcode es válido informa además si ya pertenece a un ítem.
func (handler *Handler) Validate(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Barcode string `json:"barcode"`
	}
	if !decodeBody(writer, request, &body) {
		return
	}

	valid := IsValidBarcode(body.Barcode)
	response := map[string]any{
		"valid":   valid,
		"barcode": body.Barcode,
	}

	if valid {
		item, err := handler.items.GetByBarcode(request.Context(), strings.TrimSpace(body.Barcode))
		switch {
		case err == nil:
			response["exists"] = true
			response["existing_item"] = item
		case errors.Is(err, items.ErrorNotFound):
			response["exists"] = false
		default:
			handler.writeError(writer, request, err)
			return
		}
	}

	httpx.OK(writer, request, http.StatusOK, response)
}

func decodeBody(writer http.ResponseWriter, request *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(writer, request, dst); err != nil {
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeInvalidJSON, "invalid JSON body")
		return false
	}
	return true
}

func (handler *Handler) writeError(writer http.ResponseWriter, request *http.Request, err error) {
	switch {
	case errors.Is(err, ErrorEncoding):
		httpx.Fail(writer, request, http.StatusBadRequest, httpx.CodeEncodingError, err.Error())
	case errors.Is(err, ErrorDecode):
		httpx.Fail(writer, request, http.StatusUnprocessableEntity, httpx.CodeDecodeError, err.Error())
	case errors.Is(err, items.ErrorNotFound):
		httpx.Fail(writer, request, http.StatusNotFound, httpx.CodeNotFound, "item not found")
	default:
		handler.logger.Error("barcode request failed", zap.String("path", request.URL.Path), zap.Error(err))
		httpx.Fail(writer, request, http.StatusInternalServerError, httpx.CodeInternalError, "unexpected error")
	}
}
