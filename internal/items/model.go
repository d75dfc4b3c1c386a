package items

import (
	"encoding/json"
	"time"
)

// DefaultLowStockThreshold se usa cuando ni el request ni la config lo definen.
const DefaultLowStockThreshold = 10

// Item es un ítem de inventario tal como vive en el store.
// Barcode y QRCode los asigna el service en la segunda fase del alta.
type Item struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Quantity          int       `json:"quantity"`
	Category          string    `json:"category"`
	Image             *string   `json:"image"`
	Barcode           string    `json:"barcode"`
	QRCode            string    `json:"qr_code"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsLowStock es derivado, nunca se persiste.
func (item Item) IsLowStock() bool {
	return item.Quantity <= item.LowStockThreshold
}

// MarshalJSON agrega low_stock a la representación del ítem.
func (item Item) MarshalJSON() ([]byte, error) {
	// plain no tiene MarshalJSON, así evitamos la recursión.
	type plain Item
	return json.Marshal(struct {
		plain
		LowStock bool `json:"low_stock"`
	}{
		plain:    plain(item),
		LowStock: item.IsLowStock(),
	})
}

// CreateItemInput es el payload de alta.
// Quantity es puntero para distinguir "no vino" de 0.
type CreateItemInput struct {
	Name              string  `json:"name"`
	Quantity          *int    `json:"quantity"`
	Category          string  `json:"category"`
	Image             *string `json:"image,omitempty"`
	Barcode           string  `json:"barcode,omitempty"`
	LowStockThreshold *int    `json:"low_stock_threshold,omitempty"`
}

// UpdateItemInput es el payload del PUT. El barcode no se puede cambiar.
type UpdateItemInput struct {
	Name              string  `json:"name"`
	Quantity          *int    `json:"quantity"`
	Category          string  `json:"category"`
	Image             *string `json:"image,omitempty"`
	LowStockThreshold *int    `json:"low_stock_threshold,omitempty"`
}

// NewItem es lo que recibe el store en la primera fase del alta (sin códigos).
type NewItem struct {
	Name              string
	Quantity          int
	Category          string
	Image             *string
	LowStockThreshold int
}

// ItemChanges es la fila completa que escribe un update.
type ItemChanges struct {
	Name              string
	Quantity          int
	Category          string
	Image             *string
	LowStockThreshold int
	QRCode            string
}
