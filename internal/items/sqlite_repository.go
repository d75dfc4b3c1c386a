package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

const sqliteColumns = `id, name, quantity, category, image, barcode, qr_code, low_stock_threshold, created_at, updated_at`

// sqliteItem es la fila tal cual la guarda SQLite: fechas en TEXT RFC3339 y códigos nullables.
type sqliteItem struct {
	ID                int64          `db:"id"`
	Name              string         `db:"name"`
	Quantity          int            `db:"quantity"`
	Category          string         `db:"category"`
	Image             sql.NullString `db:"image"`
	Barcode           sql.NullString `db:"barcode"`
	QRCode            sql.NullString `db:"qr_code"`
	LowStockThreshold int            `db:"low_stock_threshold"`
	CreatedAt         string         `db:"created_at"`
	UpdatedAt         string         `db:"updated_at"`
}

func (row sqliteItem) toItem() (Item, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return Item{}, fmt.Errorf("item %d: bad created_at %q: %w", row.ID, row.CreatedAt, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, row.UpdatedAt)
	if err != nil {
		return Item{}, fmt.Errorf("item %d: bad updated_at %q: %w", row.ID, row.UpdatedAt, err)
	}

	item := Item{
		ID:                row.ID,
		Name:              row.Name,
		Quantity:          row.Quantity,
		Category:          row.Category,
		Barcode:           row.Barcode.String,
		QRCode:            row.QRCode.String,
		LowStockThreshold: row.LowStockThreshold,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
	if row.Image.Valid {
		image := row.Image.String
		item.Image = &image
	}
	return item, nil
}

// SQLiteRepository implementa Store sobre una base SQLite embebida.
type SQLiteRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteRepository espera una base con el schema ya aplicado (db.OpenSQLite).
func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (repository *SQLiteRepository) List(ctx context.Context) ([]Item, error) {
	return repository.selectItems(ctx, `SELECT `+sqliteColumns+` FROM inventory_items ORDER BY id`)
}

func (repository *SQLiteRepository) GetByID(ctx context.Context, id int64) (Item, error) {
	return repository.getItem(ctx, `SELECT `+sqliteColumns+` FROM inventory_items WHERE id = ?`, id)
}

func (repository *SQLiteRepository) GetByBarcode(ctx context.Context, barcode string) (Item, error) {
	return repository.getItem(ctx, `SELECT `+sqliteColumns+` FROM inventory_items WHERE barcode = ?`, barcode)
}

func (repository *SQLiteRepository) GetByQRCode(ctx context.Context, qrCode string) (Item, error) {
	return repository.getItem(ctx, `SELECT `+sqliteColumns+` FROM inventory_items WHERE qr_code = ? ORDER BY id LIMIT 1`, qrCode)
}

func (repository *SQLiteRepository) ListByCategory(ctx context.Context, category string) ([]Item, error) {
	return repository.selectItems(ctx, `SELECT `+sqliteColumns+` FROM inventory_items WHERE category = ? ORDER BY id`, category)
}

// SearchByName filtra en Go: LIKE de SQLite solo ignora mayúsculas en ASCII
// y los nombres pueden traer acentos o ß.
func (repository *SQLiteRepository) SearchByName(ctx context.Context, term string) ([]Item, error) {
	all, err := repository.List(ctx)
	if err != nil {
		return nil, err
	}
	if term == "" {
		return all, nil
	}

	// Un Caser no se comparte entre goroutines.
	fold := cases.Fold()
	needle := fold.String(term)

	matches := make([]Item, 0)
	for _, item := range all {
		if strings.Contains(fold.String(item.Name), needle) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

func (repository *SQLiteRepository) ListLowStock(ctx context.Context) ([]Item, error) {
	return repository.selectItems(ctx, `SELECT `+sqliteColumns+` FROM inventory_items WHERE quantity <= low_stock_threshold ORDER BY id`)
}

func (repository *SQLiteRepository) ListLowStockByThreshold(ctx context.Context, threshold int) ([]Item, error) {
	return repository.selectItems(ctx, `SELECT `+sqliteColumns+` FROM inventory_items WHERE quantity <= ? ORDER BY id`, threshold)
}

func (repository *SQLiteRepository) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	var exists bool
	err := repository.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE barcode = ?)`, barcode)
	return exists, err
}

func (repository *SQLiteRepository) ExistsByQRCode(ctx context.Context, qrCode string) (bool, error) {
	var exists bool
	err := repository.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE qr_code = ?)`, qrCode)
	return exists, err
}

func (repository *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := repository.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM inventory_items`)
	return count, err
}

func (repository *SQLiteRepository) TotalQuantity(ctx context.Context) (int64, error) {
	var total int64
	err := repository.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(quantity), 0) FROM inventory_items`)
	return total, err
}

func (repository *SQLiteRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := repository.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM inventory_items WHERE quantity <= low_stock_threshold`)
	return count, err
}

func (repository *SQLiteRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Category string `db:"category"`
		Count    int64  `db:"total"`
	}
	if err := repository.db.SelectContext(ctx, &rows, `SELECT category, COUNT(*) AS total FROM inventory_items GROUP BY category`); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

func (repository *SQLiteRepository) Insert(ctx context.Context, item NewItem) (Item, error) {
	now := repository.timestamp()
	result, err := repository.db.ExecContext(ctx, `
		INSERT INTO inventory_items (name, quantity, category, image, low_stock_threshold, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Quantity, item.Category, item.Image, item.LowStockThreshold, now, now,
	)
	if err != nil {
		return Item{}, translateSQLiteError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Item{}, err
	}
	return repository.GetByID(ctx, id)
}

func (repository *SQLiteRepository) SetCodes(ctx context.Context, id int64, barcode, qrCode string) (Item, error) {
	return repository.updateItem(ctx, id,
		`UPDATE inventory_items SET barcode = ?, qr_code = ?, updated_at = ? WHERE id = ?`,
		barcode, qrCode, repository.timestamp(), id,
	)
}

func (repository *SQLiteRepository) Update(ctx context.Context, id int64, changes ItemChanges) (Item, error) {
	return repository.updateItem(ctx, id, `
		UPDATE inventory_items
		SET name = ?, quantity = ?, category = ?, image = ?, low_stock_threshold = ?, qr_code = ?, updated_at = ?
		WHERE id = ?`,
		changes.Name, changes.Quantity, changes.Category, changes.Image, changes.LowStockThreshold, changes.QRCode,
		repository.timestamp(), id,
	)
}

func (repository *SQLiteRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) (Item, error) {
	return repository.updateItem(ctx, id,
		`UPDATE inventory_items SET quantity = ?, updated_at = ? WHERE id = ?`,
		quantity, repository.timestamp(), id,
	)
}

func (repository *SQLiteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := repository.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Ping cumple health.Pinger.
func (repository *SQLiteRepository) Ping(ctx context.Context) error {
	return repository.db.PingContext(ctx)
}

// updateItem ejecuta el UPDATE y relee la fila. Cero filas afectadas = no existe.
func (repository *SQLiteRepository) updateItem(ctx context.Context, id int64, query string, args ...any) (Item, error) {
	result, err := repository.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Item{}, translateSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Item{}, err
	}
	if affected == 0 {
		return Item{}, ErrorNotFound
	}
	return repository.GetByID(ctx, id)
}

func (repository *SQLiteRepository) getItem(ctx context.Context, query string, args ...any) (Item, error) {
	var row sqliteItem
	if err := repository.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrorNotFound
		}
		return Item{}, err
	}
	return row.toItem()
}

func (repository *SQLiteRepository) selectItems(ctx context.Context, query string, args ...any) ([]Item, error) {
	var rows []sqliteItem
	if err := repository.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item, err := row.toItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (repository *SQLiteRepository) timestamp() string {
	return repository.now().Format(time.RFC3339Nano)
}

func translateSQLiteError(err error) error {
	var sqliteError sqlite3.Error
	if errors.As(err, &sqliteError) && sqliteError.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrorDuplicateBarcode
	}
	return err
}
