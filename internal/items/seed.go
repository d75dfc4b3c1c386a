package items

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// seedTarget es lo que necesita SeedSampleData (Service lo cumple).
type seedTarget interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, input CreateItemInput) (Item, error)
}

type sampleItem struct {
	name     string
	quantity int
	category string
	barcode  string
	image    string
}

var sampleItems = []sampleItem{
	{"Laptop", 15, "Electronics", "ITEM000001", "Laptop"},
	{"Mouse", 50, "Electronics", "ITEM000002", "Mouse"},
	{"Keyboard", 25, "Electronics", "ITEM000003", "Keyboard"},
	{"Monitor", 8, "Electronics", "ITEM000004", "Monitor"},
	{"Desk Chair", 12, "Furniture", "ITEM000005", "Chair"},
	{"Office Desk", 5, "Furniture", "ITEM000006", "Desk"},
	{"Printer Paper", 200, "Office Supplies", "ITEM000007", "Paper"},
	{"Pens", 150, "Office Supplies", "ITEM000008", "Pens"},
	{"Notebooks", 75, "Office Supplies", "ITEM000009", "Notebooks"},
	{"Coffee Mug", 30, "Kitchen", "ITEM000010", "Mug"},
	{"Water Bottle", 45, "Kitchen", "ITEM000011", "Bottle"},
	{"USB Cable", 100, "Electronics", "ITEM000012", "Cable"},
	{"Headphones", 20, "Electronics", "ITEM000013", "Headphones"},
	{"Webcam", 10, "Electronics", "ITEM000014", "Webcam"},
	{"Stapler", 25, "Office Supplies", "ITEM000015", "Stapler"},
}

// SeedSampleData carga ítems de ejemplo solo si el store está vacío.
// Devuelve cuántos creó.
func SeedSampleData(ctx context.Context, target seedTarget, logger *zap.Logger) (int, error) {
	count, err := target.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	if count > 0 {
		logger.Info("sample data skipped, store not empty", zap.Int64("items", count))
		return 0, nil
	}

	for i, sample := range sampleItems {
		quantity := sample.quantity
		image := "https://via.placeholder.com/150x150?text=" + sample.image

		if _, err := target.Create(ctx, CreateItemInput{
			Name:     sample.name,
			Quantity: &quantity,
			Category: sample.category,
			Image:    &image,
			Barcode:  sample.barcode,
		}); err != nil {
			return i, fmt.Errorf("seed %q: %w", sample.name, err)
		}
	}

	logger.Info("sample data loaded", zap.Int("items", len(sampleItems)))
	return len(sampleItems), nil
}
