package items

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// database es el subconjunto de pgxpool.Pool que usa el repositorio.
type database interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// itemColumns: barcode y qr_code son NULL entre las dos fases del alta.
const itemColumns = `id, name, quantity, category, image, COALESCE(barcode, ''), COALESCE(qr_code, ''),
	low_stock_threshold, created_at, updated_at`

// Repository accede a la tabla inventory_items en PostgreSQL.
type Repository struct {
	database database
}

// NewRepository crea un repositorio de ítems.
func NewRepository(database database) *Repository {
	return &Repository{database: database}
}

func (repository *Repository) List(ctx context.Context) ([]Item, error) {
	return repository.queryItems(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY id`)
}

func (repository *Repository) GetByID(ctx context.Context, id int64) (Item, error) {
	return repository.queryItem(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

func (repository *Repository) GetByBarcode(ctx context.Context, barcode string) (Item, error) {
	return repository.queryItem(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE barcode = $1`, barcode)
}

func (repository *Repository) GetByQRCode(ctx context.Context, qrCode string) (Item, error) {
	return repository.queryItem(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE qr_code = $1 ORDER BY id LIMIT 1`, qrCode)
}

func (repository *Repository) ListByCategory(ctx context.Context, category string) ([]Item, error) {
	return repository.queryItems(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE category = $1 ORDER BY id`, category)
}

// SearchByName busca por substring sin distinguir mayúsculas.
// Los comodines del término se escapan: "50%" busca literalmente "50%".
func (repository *Repository) SearchByName(ctx context.Context, term string) ([]Item, error) {
	const query = `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY id`
	return repository.queryItems(ctx, query, escapeLike(term))
}

func (repository *Repository) ListLowStock(ctx context.Context) ([]Item, error) {
	return repository.queryItems(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE quantity <= low_stock_threshold ORDER BY id`)
}

func (repository *Repository) ListLowStockByThreshold(ctx context.Context, threshold int) ([]Item, error) {
	return repository.queryItems(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE quantity <= $1 ORDER BY id`, threshold)
}

func (repository *Repository) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	return repository.queryBool(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE barcode = $1)`, barcode)
}

func (repository *Repository) ExistsByQRCode(ctx context.Context, qrCode string) (bool, error) {
	return repository.queryBool(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE qr_code = $1)`, qrCode)
}

func (repository *Repository) Count(ctx context.Context) (int64, error) {
	return repository.queryInt(ctx, `SELECT COUNT(*) FROM inventory_items`)
}

// TotalQuantity devuelve 0 con la tabla vacía (SUM daría NULL).
func (repository *Repository) TotalQuantity(ctx context.Context) (int64, error) {
	return repository.queryInt(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM inventory_items`)
}

func (repository *Repository) CountLowStock(ctx context.Context) (int64, error) {
	return repository.queryInt(ctx, `SELECT COUNT(*) FROM inventory_items WHERE quantity <= low_stock_threshold`)
}

func (repository *Repository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	rows, err := repository.database.Query(ctx, `SELECT category, COUNT(*) FROM inventory_items GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Insert es la primera fase del alta: la fila queda sin barcode ni QR.
func (repository *Repository) Insert(ctx context.Context, item NewItem) (Item, error) {
	const query = `
		INSERT INTO inventory_items (name, quantity, category, image, low_stock_threshold)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + itemColumns

	return repository.queryItem(ctx, query, item.Name, item.Quantity, item.Category, item.Image, item.LowStockThreshold)
}

// SetCodes es la segunda fase del alta.
func (repository *Repository) SetCodes(ctx context.Context, id int64, barcode, qrCode string) (Item, error) {
	const query = `
		UPDATE inventory_items
		SET barcode = $2, qr_code = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + itemColumns

	return repository.queryItem(ctx, query, id, barcode, qrCode)
}

func (repository *Repository) Update(ctx context.Context, id int64, changes ItemChanges) (Item, error) {
	const query = `
		UPDATE inventory_items
		SET name = $2, quantity = $3, category = $4, image = $5, low_stock_threshold = $6, qr_code = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + itemColumns

	return repository.queryItem(ctx, query,
		id, changes.Name, changes.Quantity, changes.Category, changes.Image, changes.LowStockThreshold, changes.QRCode)
}

func (repository *Repository) UpdateQuantity(ctx context.Context, id int64, quantity int) (Item, error) {
	const query = `
		UPDATE inventory_items
		SET quantity = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + itemColumns

	return repository.queryItem(ctx, query, id, quantity)
}

// Delete devuelve false (sin error) si el id no existe.
func (repository *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	var deletedID int64
	err := repository.database.QueryRow(ctx, `DELETE FROM inventory_items WHERE id = $1 RETURNING id`, id).Scan(&deletedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (repository *Repository) queryItem(ctx context.Context, query string, args ...any) (Item, error) {
	item, err := scanItem(repository.database.QueryRow(ctx, query, args...))
	if err != nil {
		return Item{}, translatePgError(err)
	}
	return item, nil
}

// queryItems nunca devuelve nil: un listado vacío se serializa como [].
func (repository *Repository) queryItems(ctx context.Context, query string, args ...any) ([]Item, error) {
	rows, err := repository.database.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (repository *Repository) queryInt(ctx context.Context, query string) (int64, error) {
	var value int64
	if err := repository.database.QueryRow(ctx, query).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}

func (repository *Repository) queryBool(ctx context.Context, query string, args ...any) (bool, error) {
	var value bool
	if err := repository.database.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		return false, err
	}
	return value, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (Item, error) {
	var item Item
	err := row.Scan(
		&item.ID, &item.Name, &item.Quantity, &item.Category, &item.Image,
		&item.Barcode, &item.QRCode, &item.LowStockThreshold, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

// translatePgError mapea errores de pgx a errores de dominio.
func translatePgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}
	// Postgres: unique_violation = 23505. El único índice unique es el de barcode.
	var postgresError *pgconn.PgError
	if errors.As(err, &postgresError) && postgresError.Code == "23505" {
		return ErrorDuplicateBarcode
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
