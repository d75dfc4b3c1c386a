package dashboard

import (
	"context"
	"fmt"
)

// Stats es la foto del inventario que muestra el dashboard.
type Stats struct {
	TotalItems     int64            `json:"total_items"`
	TotalQuantity  int64            `json:"total_quantity"`
	LowStockItems  int64            `json:"low_stock_items"`
	CategoryCounts map[string]int64 `json:"category_counts"`
}

// Source son las cuatro lecturas que necesita el aggregator. items.Store la cumple.
type Source interface {
	Count(ctx context.Context) (int64, error)
	TotalQuantity(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

// Aggregator arma Stats a partir de lecturas independientes.
// No hay transacción entre ellas: con escrituras concurrentes los totales pueden no cuadrar.
type Aggregator struct {
	source Source
}

func NewAggregator(source Source) *Aggregator {
	return &Aggregator{source: source}
}

// Stats no cachea: cada llamada consulta el store.
func (aggregator *Aggregator) Stats(ctx context.Context) (Stats, error) {
	total, err := aggregator.source.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count items: %w", err)
	}

	quantity, err := aggregator.source.TotalQuantity(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("total quantity: %w", err)
	}

	lowStock, err := aggregator.source.CountLowStock(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count low stock: %w", err)
	}

	categories, err := aggregator.source.CountByCategory(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count by category: %w", err)
	}
	if categories == nil {
		categories = map[string]int64{}
	}

	return Stats{
		TotalItems:     total,
		TotalQuantity:  quantity,
		LowStockItems:  lowStock,
		CategoryCounts: categories,
	}, nil
}
