package items

import "context"

// Store es el contrato de persistencia de ítems.
// Hay dos implementaciones: Repository (PostgreSQL) y SQLiteRepository.
// Los listados no garantizan orden.
type Store interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id int64) (Item, error)
	GetByBarcode(ctx context.Context, barcode string) (Item, error)
	GetByQRCode(ctx context.Context, qrCode string) (Item, error)
	ListByCategory(ctx context.Context, category string) ([]Item, error)
	SearchByName(ctx context.Context, term string) ([]Item, error)
	ListLowStock(ctx context.Context) ([]Item, error)
	ListLowStockByThreshold(ctx context.Context, threshold int) ([]Item, error)
	ExistsByBarcode(ctx context.Context, barcode string) (bool, error)
	ExistsByQRCode(ctx context.Context, qrCode string) (bool, error)

	Count(ctx context.Context) (int64, error)
	TotalQuantity(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)

	Insert(ctx context.Context, item NewItem) (Item, error)
	SetCodes(ctx context.Context, id int64, barcode, qrCode string) (Item, error)
	Update(ctx context.Context, id int64, changes ItemChanges) (Item, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
