package items

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore implementa Store en memoria. Los campos *Err permiten forzar fallas.
type memStore struct {
	items  map[int64]Item
	nextID int64

	insertErr   error
	setCodesErr error
	deleteErr   error
	existsErr   error

	deleteCalls []int64
}

func newMemStore() *memStore {
	return &memStore{items: make(map[int64]Item)}
}

func (store *memStore) sorted(keep func(Item) bool) []Item {
	out := make([]Item, 0)
	for _, item := range store.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (store *memStore) find(keep func(Item) bool) (Item, error) {
	if found := store.sorted(keep); len(found) > 0 {
		return found[0], nil
	}
	return Item{}, ErrorNotFound
}

func (store *memStore) List(ctx context.Context) ([]Item, error) {
	return store.sorted(func(Item) bool { return true }), nil
}

func (store *memStore) GetByID(ctx context.Context, id int64) (Item, error) {
	return store.find(func(item Item) bool { return item.ID == id })
}

func (store *memStore) GetByBarcode(ctx context.Context, barcode string) (Item, error) {
	return store.find(func(item Item) bool { return item.Barcode == barcode })
}

func (store *memStore) GetByQRCode(ctx context.Context, qrCode string) (Item, error) {
	return store.find(func(item Item) bool { return item.QRCode == qrCode })
}

func (store *memStore) ListByCategory(ctx context.Context, category string) ([]Item, error) {
	return store.sorted(func(item Item) bool { return item.Category == category }), nil
}

func (store *memStore) SearchByName(ctx context.Context, term string) ([]Item, error) {
	return store.sorted(func(item Item) bool {
		return strings.Contains(strings.ToLower(item.Name), strings.ToLower(term))
	}), nil
}

func (store *memStore) ListLowStock(ctx context.Context) ([]Item, error) {
	return store.sorted(func(item Item) bool { return item.IsLowStock() }), nil
}

func (store *memStore) ListLowStockByThreshold(ctx context.Context, threshold int) ([]Item, error) {
	return store.sorted(func(item Item) bool { return item.Quantity <= threshold }), nil
}

func (store *memStore) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	if store.existsErr != nil {
		return false, store.existsErr
	}
	_, err := store.GetByBarcode(ctx, barcode)
	return err == nil, nil
}

func (store *memStore) ExistsByQRCode(ctx context.Context, qrCode string) (bool, error) {
	_, err := store.GetByQRCode(ctx, qrCode)
	return err == nil, nil
}

func (store *memStore) Count(ctx context.Context) (int64, error) {
	return int64(len(store.items)), nil
}

func (store *memStore) TotalQuantity(ctx context.Context) (int64, error) {
	var total int64
	for _, item := range store.items {
		total += int64(item.Quantity)
	}
	return total, nil
}

func (store *memStore) CountLowStock(ctx context.Context) (int64, error) {
	low, _ := store.ListLowStock(ctx)
	return int64(len(low)), nil
}

func (store *memStore) CountByCategory(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, item := range store.items {
		counts[item.Category]++
	}
	return counts, nil
}

func (store *memStore) Insert(ctx context.Context, record NewItem) (Item, error) {
	if store.insertErr != nil {
		return Item{}, store.insertErr
	}
	store.nextID++
	now := time.Now().UTC()
	item := Item{
		ID:                store.nextID,
		Name:              record.Name,
		Quantity:          record.Quantity,
		Category:          record.Category,
		Image:             record.Image,
		LowStockThreshold: record.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	store.items[item.ID] = item
	return item, nil
}

func (store *memStore) SetCodes(ctx context.Context, id int64, barcode, qrCode string) (Item, error) {
	if store.setCodesErr != nil {
		return Item{}, store.setCodesErr
	}
	item, ok := store.items[id]
	if !ok {
		return Item{}, ErrorNotFound
	}
	for _, other := range store.items {
		if other.ID != id && other.Barcode == barcode {
			return Item{}, ErrorDuplicateBarcode
		}
	}
	item.Barcode = barcode
	item.QRCode = qrCode
	store.items[id] = item
	return item, nil
}

func (store *memStore) Update(ctx context.Context, id int64, changes ItemChanges) (Item, error) {
	item, ok := store.items[id]
	if !ok {
		return Item{}, ErrorNotFound
	}
	item.Name = changes.Name
	item.Quantity = changes.Quantity
	item.Category = changes.Category
	item.Image = changes.Image
	item.LowStockThreshold = changes.LowStockThreshold
	item.QRCode = changes.QRCode
	item.UpdatedAt = time.Now().UTC()
	store.items[id] = item
	return item, nil
}

func (store *memStore) UpdateQuantity(ctx context.Context, id int64, quantity int) (Item, error) {
	item, ok := store.items[id]
	if !ok {
		return Item{}, ErrorNotFound
	}
	item.Quantity = quantity
	store.items[id] = item
	return item, nil
}

func (store *memStore) Delete(ctx context.Context, id int64) (bool, error) {
	store.deleteCalls = append(store.deleteCalls, id)
	if store.deleteErr != nil {
		return false, store.deleteErr
	}
	if _, ok := store.items[id]; !ok {
		return false, nil
	}
	delete(store.items, id)
	return true, nil
}

func newTestService(store Store) *Service {
	return NewService(store, DefaultLowStockThreshold, zap.NewNop())
}

func TestService_Create(t *testing.T) {
	t.Run("derives barcode and qr payload from id", func(t *testing.T) {
		store := newMemStore()
		service := newTestService(store)

		item, err := service.Create(context.Background(), CreateItemInput{
			Name: "  Laptop ", Quantity: integerPointer(15), Category: " Electronics ",
		})

		require.NoError(t, err)
		require.Equal(t, int64(1), item.ID)
		require.Equal(t, "Laptop", item.Name)
		require.Equal(t, "Electronics", item.Category)
		require.Equal(t, "ITEM000001", item.Barcode)
		require.Equal(t, "INV:1:Laptop", item.QRCode)
		require.Equal(t, DefaultLowStockThreshold, item.LowStockThreshold)
		require.Nil(t, item.Image)

		id, name, ok := ParseQRPayload(item.QRCode)
		require.True(t, ok)
		require.Equal(t, item.ID, id)
		require.Equal(t, item.Name, name)
	})

	t.Run("keeps supplied barcode and threshold", func(t *testing.T) {
		store := newMemStore()
		service := newTestService(store)

		item, err := service.Create(context.Background(), CreateItemInput{
			Name: "Mouse", Quantity: integerPointer(0), Category: "Electronics",
			Barcode: " 7501234567890 ", LowStockThreshold: integerPointer(0), Image: stringPointer(" https://img/m.png "),
		})

		require.NoError(t, err)
		require.Equal(t, "7501234567890", item.Barcode)
		require.Equal(t, 0, item.LowStockThreshold)
		require.Equal(t, "https://img/m.png", *item.Image)
		require.True(t, item.IsLowStock())
	})

	t.Run("configured default threshold", func(t *testing.T) {
		service := NewService(newMemStore(), 3, zap.NewNop())

		item, err := service.Create(context.Background(), CreateItemInput{
			Name: "Pens", Quantity: integerPointer(5), Category: "Office Supplies",
		})

		require.NoError(t, err)
		require.Equal(t, 3, item.LowStockThreshold)
		require.False(t, item.IsLowStock())
	})

	t.Run("blank image becomes nil", func(t *testing.T) {
		service := newTestService(newMemStore())

		item, err := service.Create(context.Background(), CreateItemInput{
			Name: "Pens", Quantity: integerPointer(5), Category: "Office Supplies", Image: stringPointer("   "),
		})

		require.NoError(t, err)
		require.Nil(t, item.Image)
	})

	t.Run("invalid input", func(t *testing.T) {
		tests := []struct {
			name  string
			input CreateItemInput
		}{
			{"empty name", CreateItemInput{Name: "  ", Quantity: integerPointer(1), Category: "A"}},
			{"missing quantity", CreateItemInput{Name: "A", Category: "A"}},
			{"negative quantity", CreateItemInput{Name: "A", Quantity: integerPointer(-1), Category: "A"}},
			{"empty category", CreateItemInput{Name: "A", Quantity: integerPointer(1), Category: " "}},
			{"negative threshold", CreateItemInput{Name: "A", Quantity: integerPointer(1), Category: "A", LowStockThreshold: integerPointer(-1)}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := newMemStore()
				service := newTestService(store)

				_, err := service.Create(context.Background(), tt.input)

				require.ErrorIs(t, err, ErrorInvalidInput)
				require.Empty(t, store.items)
			})
		}
	})

	t.Run("duplicate supplied barcode", func(t *testing.T) {
		store := newMemStore()
		service := newTestService(store)
		_, err := service.Create(context.Background(), CreateItemInput{
			Name: "Laptop", Quantity: integerPointer(1), Category: "Electronics", Barcode: "ITEM000001",
		})
		require.NoError(t, err)

		_, err = service.Create(context.Background(), CreateItemInput{
			Name: "Other", Quantity: integerPointer(1), Category: "Electronics", Barcode: "ITEM000001",
		})

		require.ErrorIs(t, err, ErrorDuplicateBarcode)
		require.Len(t, store.items, 1)
	})

	t.Run("supplied barcode colliding with a derived one", func(t *testing.T) {
		store := newMemStore()
		service := newTestService(store)
		_, err := service.Create(context.Background(), CreateItemInput{
			Name: "Custom", Quantity: integerPointer(1), Category: "A", Barcode: "ITEM000002",
		})
		require.NoError(t, err)

		// El id 2 derivaría ITEM000002, que ya está tomado: la segunda fase falla y la fila se borra.
		_, err = service.Create(context.Background(), CreateItemInput{
			Name: "Derived", Quantity: integerPointer(1), Category: "A",
		})

		require.ErrorIs(t, err, ErrorDuplicateBarcode)
		require.Len(t, store.items, 1)
		require.Equal(t, []int64{2}, store.deleteCalls)
	})

	t.Run("exists check error", func(t *testing.T) {
		store := newMemStore()
		store.existsErr = errors.New("db down")
		service := newTestService(store)

		_, err := service.Create(context.Background(), CreateItemInput{
			Name: "A", Quantity: integerPointer(1), Category: "A", Barcode: "123",
		})

		require.ErrorIs(t, err, store.existsErr)
	})

	t.Run("insert error", func(t *testing.T) {
		store := newMemStore()
		store.insertErr = errors.New("insert failed")
		service := newTestService(store)

		_, err := service.Create(context.Background(), CreateItemInput{Name: "A", Quantity: integerPointer(1), Category: "A"})

		require.ErrorIs(t, err, store.insertErr)
		require.Empty(t, store.deleteCalls)
	})

	t.Run("second phase error removes the row even if delete fails", func(t *testing.T) {
		store := newMemStore()
		store.setCodesErr = errors.New("update failed")
		store.deleteErr = errors.New("delete failed")
		service := newTestService(store)

		_, err := service.Create(context.Background(), CreateItemInput{Name: "A", Quantity: integerPointer(1), Category: "A"})

		require.ErrorIs(t, err, store.setCodesErr)
		require.Equal(t, []int64{1}, store.deleteCalls)
	})
}

func TestService_Update(t *testing.T) {
	seed := func(t *testing.T) (*memStore, *Service, Item) {
		store := newMemStore()
		service := newTestService(store)
		item, err := service.Create(context.Background(), CreateItemInput{
			Name: "Laptop", Quantity: integerPointer(15), Category: "Electronics", LowStockThreshold: integerPointer(4),
		})
		require.NoError(t, err)
		return store, service, item
	}

	t.Run("rename regenerates qr payload only", func(t *testing.T) {
		_, service, original := seed(t)

		updated, err := service.Update(context.Background(), original.ID, UpdateItemInput{
			Name: "Laptop Pro", Quantity: integerPointer(3), Category: "Computers", LowStockThreshold: integerPointer(5),
		})

		require.NoError(t, err)
		require.Equal(t, "Laptop Pro", updated.Name)
		require.Equal(t, "INV:1:Laptop Pro", updated.QRCode)
		require.Equal(t, original.Barcode, updated.Barcode)
		require.Equal(t, 5, updated.LowStockThreshold)
		require.True(t, updated.IsLowStock())
	})

	t.Run("same name keeps qr payload", func(t *testing.T) {
		store, service, original := seed(t)
		// Un payload viejo se conserva tal cual mientras el nombre no cambie.
		stored := store.items[original.ID]
		stored.QRCode = "INV:1:Laptop (legacy)"
		store.items[original.ID] = stored

		updated, err := service.Update(context.Background(), original.ID, UpdateItemInput{
			Name: " Laptop ", Quantity: integerPointer(20), Category: "Electronics",
		})

		require.NoError(t, err)
		require.Equal(t, "INV:1:Laptop (legacy)", updated.QRCode)
		require.Equal(t, 20, updated.Quantity)
	})

	t.Run("absent threshold falls back to default", func(t *testing.T) {
		_, service, original := seed(t)

		updated, err := service.Update(context.Background(), original.ID, UpdateItemInput{
			Name: "Laptop", Quantity: integerPointer(15), Category: "Electronics",
		})

		require.NoError(t, err)
		require.Equal(t, DefaultLowStockThreshold, updated.LowStockThreshold)
	})

	t.Run("not found", func(t *testing.T) {
		_, service, _ := seed(t)

		_, err := service.Update(context.Background(), 404, UpdateItemInput{
			Name: "X", Quantity: integerPointer(1), Category: "Y",
		})

		require.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("invalid input is reported before lookup", func(t *testing.T) {
		_, service, _ := seed(t)

		_, err := service.Update(context.Background(), 404, UpdateItemInput{Name: "", Quantity: integerPointer(1), Category: "Y"})

		require.ErrorIs(t, err, ErrorInvalidInput)
	})
}

func TestService_UpdateQuantity(t *testing.T) {
	store := newMemStore()
	service := newTestService(store)
	item, err := service.Create(context.Background(), CreateItemInput{Name: "Pens", Quantity: integerPointer(150), Category: "Office"})
	require.NoError(t, err)

	updated, err := service.UpdateQuantity(context.Background(), item.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 0, updated.Quantity)
	require.Equal(t, item.Name, updated.Name)
	require.Equal(t, item.QRCode, updated.QRCode)

	_, err = service.UpdateQuantity(context.Background(), item.ID, -1)
	require.ErrorIs(t, err, ErrorInvalidInput)
	require.Equal(t, 0, store.items[item.ID].Quantity)

	_, err = service.UpdateQuantity(context.Background(), 404, 3)
	require.ErrorIs(t, err, ErrorNotFound)
}

func TestService_Delete(t *testing.T) {
	store := newMemStore()
	service := newTestService(store)
	item, err := service.Create(context.Background(), CreateItemInput{Name: "Pens", Quantity: integerPointer(1), Category: "Office"})
	require.NoError(t, err)

	deleted, err := service.Delete(context.Background(), item.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = service.Delete(context.Background(), item.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	store.deleteErr = errors.New("db down")
	_, err = service.Delete(context.Background(), item.ID)
	require.ErrorIs(t, err, store.deleteErr)
}

func TestService_Reads(t *testing.T) {
	store := newMemStore()
	service := newTestService(store)
	ctx := context.Background()
	for _, input := range []CreateItemInput{
		{Name: "Laptop", Quantity: integerPointer(15), Category: "Electronics"},
		{Name: "Monitor", Quantity: integerPointer(8), Category: "Electronics"},
		{Name: "Coffee Mug", Quantity: integerPointer(30), Category: "Kitchen"},
	} {
		_, err := service.Create(ctx, input)
		require.NoError(t, err)
	}

	all, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	got, err := service.Get(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "Monitor", got.Name)

	byBarcode, err := service.GetByBarcode(ctx, " ITEM000003 ")
	require.NoError(t, err)
	require.Equal(t, "Coffee Mug", byBarcode.Name)

	byQR, err := service.GetByQRCode(ctx, "INV:1:Laptop")
	require.NoError(t, err)
	require.Equal(t, "Laptop", byQR.Name)

	kitchen, err := service.ListByCategory(ctx, " Kitchen ")
	require.NoError(t, err)
	require.Len(t, kitchen, 1)

	found, err := service.SearchByName(ctx, " MUG ")
	require.NoError(t, err)
	require.Len(t, found, 1)

	low, err := service.ListLowStock(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Monitor"}, names(low))

	lowCustom, err := service.ListLowStockByThreshold(ctx, 15)
	require.NoError(t, err)
	require.Equal(t, []string{"Laptop", "Monitor"}, names(lowCustom))

	_, err = service.ListLowStockByThreshold(ctx, -1)
	require.ErrorIs(t, err, ErrorInvalidInput)

	exists, err := service.ExistsByBarcode(ctx, "ITEM000001")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = service.ExistsByQRCode(ctx, "INV:9:Nope")
	require.NoError(t, err)
	require.False(t, exists)

	count, err := service.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func stringPointer(value string) *string {
	return &value
}

func integerPointer(value int) *int {
	return &value
}
