package items

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestItem_IsLowStock(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		want      bool
	}{
		{"below", 3, 10, true},
		{"equal", 10, 10, true},
		{"above", 11, 10, false},
		{"zero threshold zero quantity", 0, 0, true},
		{"zero threshold", 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Item{Quantity: tt.quantity, LowStockThreshold: tt.threshold}
			require.Equal(t, tt.want, item.IsLowStock())
		})
	}
}

func TestItem_MarshalJSON(t *testing.T) {
	image := "https://img.example/laptop.png"
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	item := Item{
		ID:                1,
		Name:              "Laptop",
		Quantity:          5,
		Category:          "Electronics",
		Image:             &image,
		Barcode:           "ITEM000001",
		QRCode:            "INV:1:Laptop",
		LowStockThreshold: 10,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}

	raw, err := json.Marshal(item)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, true, out["low_stock"])
	require.Equal(t, "INV:1:Laptop", out["qr_code"])
	require.Equal(t, float64(10), out["low_stock_threshold"])
	require.Equal(t, image, out["image"])
	require.Equal(t, "2024-05-01T10:00:00Z", out["created_at"])

	// Volver a decodificar no choca con low_stock.
	var back Item
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, item, back)
}
