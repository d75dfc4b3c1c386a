package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Errores de dominio (no HTTP). El handler los traduce a status codes.
var (
	ErrorInvalidInput     = errors.New("invalid input")
	ErrorNotFound         = errors.New("item not found")
	ErrorDuplicateBarcode = errors.New("barcode already exists")
)

// Service contiene las reglas de ciclo de vida de los ítems.
type Service struct {
	store            Store
	defaultThreshold int
	logger           *zap.Logger
}

// NewService crea un service de ítems.
// defaultThreshold se aplica cuando el payload no trae low_stock_threshold.
func NewService(store Store, defaultThreshold int, logger *zap.Logger) *Service {
	if defaultThreshold < 0 {
		defaultThreshold = DefaultLowStockThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, defaultThreshold: defaultThreshold, logger: logger}
}

// Create da de alta un ítem en dos fases: insert (para obtener el id) y
// asignación de barcode + payload QR, que dependen de ese id.
func (service *Service) Create(ctx context.Context, input CreateItemInput) (Item, error) {
	record, err := service.normalize(input.Name, input.Quantity, input.Category, input.Image, input.LowStockThreshold)
	if err != nil {
		return Item{}, err
	}

	barcode := strings.TrimSpace(input.Barcode)
	if barcode != "" {
		exists, err := service.store.ExistsByBarcode(ctx, barcode)
		if err != nil {
			return Item{}, err
		}
		if exists {
			return Item{}, fmt.Errorf("%w: %s", ErrorDuplicateBarcode, barcode)
		}
	}

	created, err := service.store.Insert(ctx, NewItem{
		Name:              record.Name,
		Quantity:          record.Quantity,
		Category:          record.Category,
		Image:             record.Image,
		LowStockThreshold: record.LowStockThreshold,
	})
	if err != nil {
		return Item{}, err
	}

	if barcode == "" {
		barcode = FormatBarcode(created.ID)
	}

	item, err := service.store.SetCodes(ctx, created.ID, barcode, FormatQRPayload(created.ID, created.Name))
	if err != nil {
		// No dejamos filas sin códigos. Si el borrado también falla solo queda loguearlo.
		if _, deleteErr := service.store.Delete(ctx, created.ID); deleteErr != nil {
			service.logger.Error("could not remove half-created item",
				zap.Int64("id", created.ID),
				zap.Error(deleteErr),
			)
		}
		return Item{}, err
	}

	service.logger.Info("item created",
		zap.Int64("id", item.ID),
		zap.String("barcode", item.Barcode),
	)
	return item, nil
}

// Update reemplaza los campos editables. El payload QR se regenera solo si cambió el nombre
// y el barcode nunca se toca.
func (service *Service) Update(ctx context.Context, id int64, input UpdateItemInput) (Item, error) {
	record, err := service.normalize(input.Name, input.Quantity, input.Category, input.Image, input.LowStockThreshold)
	if err != nil {
		return Item{}, err
	}

	current, err := service.store.GetByID(ctx, id)
	if err != nil {
		return Item{}, err
	}

	qrCode := current.QRCode
	if record.Name != current.Name || qrCode == "" {
		qrCode = FormatQRPayload(id, record.Name)
	}

	return service.store.Update(ctx, id, ItemChanges{
		Name:              record.Name,
		Quantity:          record.Quantity,
		Category:          record.Category,
		Image:             record.Image,
		LowStockThreshold: record.LowStockThreshold,
		QRCode:            qrCode,
	})
}

// UpdateQuantity cambia solo la cantidad.
func (service *Service) UpdateQuantity(ctx context.Context, id int64, quantity int) (Item, error) {
	if quantity < 0 {
		return Item{}, fmt.Errorf("%w: quantity must be >= 0", ErrorInvalidInput)
	}
	return service.store.UpdateQuantity(ctx, id, quantity)
}

// Delete devuelve true si se borró una fila. Un id inexistente no es error.
func (service *Service) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := service.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		service.logger.Info("item deleted", zap.Int64("id", id))
	}
	return deleted, nil
}

func (service *Service) List(ctx context.Context) ([]Item, error) {
	return service.store.List(ctx)
}

func (service *Service) Get(ctx context.Context, id int64) (Item, error) {
	return service.store.GetByID(ctx, id)
}

func (service *Service) GetByBarcode(ctx context.Context, barcode string) (Item, error) {
	return service.store.GetByBarcode(ctx, strings.TrimSpace(barcode))
}

func (service *Service) GetByQRCode(ctx context.Context, qrCode string) (Item, error) {
	return service.store.GetByQRCode(ctx, qrCode)
}

func (service *Service) ListByCategory(ctx context.Context, category string) ([]Item, error) {
	return service.store.ListByCategory(ctx, strings.TrimSpace(category))
}

// SearchByName con término vacío devuelve todo.
func (service *Service) SearchByName(ctx context.Context, term string) ([]Item, error) {
	return service.store.SearchByName(ctx, strings.TrimSpace(term))
}

func (service *Service) ListLowStock(ctx context.Context) ([]Item, error) {
	return service.store.ListLowStock(ctx)
}

func (service *Service) ListLowStockByThreshold(ctx context.Context, threshold int) ([]Item, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must be >= 0", ErrorInvalidInput)
	}
	return service.store.ListLowStockByThreshold(ctx, threshold)
}

func (service *Service) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	return service.store.ExistsByBarcode(ctx, strings.TrimSpace(barcode))
}

func (service *Service) ExistsByQRCode(ctx context.Context, qrCode string) (bool, error) {
	return service.store.ExistsByQRCode(ctx, qrCode)
}

func (service *Service) Count(ctx context.Context) (int64, error) {
	return service.store.Count(ctx)
}

// normalize aplica trim, defaults y validaciones comunes a alta y update.
func (service *Service) normalize(name string, quantity *int, category string, image *string, threshold *int) (NewItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewItem{}, fmt.Errorf("%w: name is required", ErrorInvalidInput)
	}
	if quantity == nil {
		return NewItem{}, fmt.Errorf("%w: quantity is required", ErrorInvalidInput)
	}
	if *quantity < 0 {
		return NewItem{}, fmt.Errorf("%w: quantity must be >= 0", ErrorInvalidInput)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return NewItem{}, fmt.Errorf("%w: category is required", ErrorInvalidInput)
	}

	lowStock := service.defaultThreshold
	if threshold != nil {
		if *threshold < 0 {
			return NewItem{}, fmt.Errorf("%w: low_stock_threshold must be >= 0", ErrorInvalidInput)
		}
		lowStock = *threshold
	}

	var cleanImage *string
	if image != nil {
		if trimmed := strings.TrimSpace(*image); trimmed != "" {
			cleanImage = &trimmed
		}
	}

	return NewItem{
		Name:              name,
		Quantity:          *quantity,
		Category:          category,
		Image:             cleanImage,
		LowStockThreshold: lowStock,
	}, nil
}
