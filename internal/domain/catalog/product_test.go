package catalog

import (
	"strings"
	"testing"

	"github.com/dropship/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct(tenantID, "SKU-001", "Wireless Earbuds")
		require.NoError(t, err)
		require.NotNil(t, product)

		assert.Equal(t, tenantID, product.TenantID)
		assert.Equal(t, "SKU-001", product.SKU)
		assert.Equal(t, "Wireless Earbuds", product.Name)
		assert.True(t, product.PurchasePrice.IsZero())
		assert.True(t, product.SellingPrice.IsZero())
		assert.True(t, product.Payout.IsZero())
		assert.Equal(t, 0, product.StockQty)
		assert.Equal(t, ProductVisibilityDraft, product.Visibility)
		assert.Nil(t, product.CategoryID)
		assert.Empty(t, product.GetImages())
		assert.NotEmpty(t, product.ID)
		assert.Equal(t, 1, product.GetVersion())
	})

	t.Run("converts sku to uppercase", func(t *testing.T) {
		product, err := NewProduct(tenantID, "sku-001", "Wireless Earbuds")
		require.NoError(t, err)
		assert.Equal(t, "SKU-001", product.SKU)
	})

	t.Run("publishes ProductCreated event", func(t *testing.T) {
		product, err := NewProduct(tenantID, "SKU-002", "Wireless Earbuds")
		require.NoError(t, err)

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())

		event, ok := events[0].(*ProductCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, product.ID, event.ProductID)
		assert.Equal(t, product.SKU, event.SKU)
		assert.Equal(t, product.Name, event.Name)
	})

	t.Run("fails with empty sku", func(t *testing.T) {
		_, err := NewProduct(tenantID, "", "Wireless Earbuds")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SKU cannot be empty")
	})

	t.Run("fails with sku too long", func(t *testing.T) {
		longSKU := strings.Repeat("A", 51)
		_, err := NewProduct(tenantID, longSKU, "Wireless Earbuds")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed 50 characters")
	})

	t.Run("fails with invalid sku characters", func(t *testing.T) {
		_, err := NewProduct(tenantID, "SKU@001", "Wireless Earbuds")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can only contain letters")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct(tenantID, "SKU-001", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with name too long", func(t *testing.T) {
		longName := strings.Repeat("x", 201)
		_, err := NewProduct(tenantID, "SKU-001", longName)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed 200 characters")
	})
}

func TestProductUpdate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("updates name and description", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Old Name")
		product.ClearDomainEvents()

		err := product.Update("New Name", "A fuller description")
		require.NoError(t, err)
		assert.Equal(t, "New Name", product.Name)
		assert.Equal(t, "A fuller description", product.Description)
		assert.Equal(t, 2, product.GetVersion())

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductUpdated, events[0].EventType())
	})

	t.Run("rejects update on archived product", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		require.NoError(t, product.Archive())

		err := product.Update("New Name", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Archived products cannot be modified")
	})
}

func TestProductSupplierURL(t *testing.T) {
	tenantID := uuid.New()

	t.Run("accepts valid http url", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		err := product.SetSupplierURL("https://supplier.example.com/item/42")
		require.NoError(t, err)
		assert.Equal(t, "https://supplier.example.com/item/42", product.SupplierURL)
	})

	t.Run("accepts empty url", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		require.NoError(t, product.SetSupplierURL(""))
	})

	t.Run("rejects non-http scheme", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		err := product.SetSupplierURL("ftp://supplier.example.com/item")
		require.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		err := product.SetSupplierURL("not a url")
		require.Error(t, err)
	})
}

func TestProductImages(t *testing.T) {
	tenantID := uuid.New()

	t.Run("round-trips image keys", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		err := product.SetImages([]string{"media/a.jpg", "media/b.jpg"})
		require.NoError(t, err)
		assert.Equal(t, []string{"media/a.jpg", "media/b.jpg"}, product.GetImages())
	})

	t.Run("nil clears images", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		require.NoError(t, product.SetImages([]string{"media/a.jpg"}))
		require.NoError(t, product.SetImages(nil))
		assert.Empty(t, product.GetImages())
	})

	t.Run("rejects blank key", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		err := product.SetImages([]string{" "})
		require.Error(t, err)
	})

	t.Run("rejects more than 20 images", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		keys := make([]string, 21)
		for i := range keys {
			keys[i] = "media/img.jpg"
		}
		err := product.SetImages(keys)
		require.Error(t, err)
	})
}

func TestProductPricing(t *testing.T) {
	tenantID := uuid.New()

	t.Run("sets prices and publishes event", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		product.ClearDomainEvents()

		err := product.SetPrices(valueobject.NewMoneyUSDFromFloat(4.50), valueobject.NewMoneyUSDFromFloat(19.99))
		require.NoError(t, err)
		assert.True(t, product.PurchasePrice.Equal(decimal.NewFromFloat(4.50)))
		assert.True(t, product.SellingPrice.Equal(decimal.NewFromFloat(19.99)))

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*ProductPriceChangedEvent)
		require.True(t, ok)
		assert.True(t, event.OldSellingPrice.IsZero())
		assert.True(t, event.NewSellingPrice.Equal(decimal.NewFromFloat(19.99)))
	})

	t.Run("rejects negative prices", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		err := product.SetPrices(valueobject.NewMoneyUSDFromFloat(-1), valueobject.NewMoneyUSDFromFloat(10))
		require.Error(t, err)
	})

	t.Run("sets payout", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		err := product.SetPayout(valueobject.NewMoneyUSDFromFloat(7.00))
		require.NoError(t, err)
		assert.True(t, product.Payout.Equal(decimal.NewFromFloat(7.00)))
	})

	t.Run("rejects negative payout", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		err := product.SetPayout(valueobject.NewMoneyUSDFromFloat(-0.01))
		require.Error(t, err)
	})

	t.Run("computes profit margin", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		require.NoError(t, product.SetPrices(valueobject.NewMoneyUSDFromFloat(10), valueobject.NewMoneyUSDFromFloat(15)))
		assert.True(t, product.GetProfitMargin().Equal(decimal.NewFromInt(50)))
	})

	t.Run("margin is zero when purchase price is zero", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		assert.True(t, product.GetProfitMargin().IsZero())
	})
}

func TestProductStock(t *testing.T) {
	tenantID := uuid.New()

	t.Run("adjusts stock by delta", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		product.ClearDomainEvents()

		require.NoError(t, product.AdjustStock(10))
		assert.Equal(t, 10, product.StockQty)
		require.NoError(t, product.AdjustStock(-4))
		assert.Equal(t, 6, product.StockQty)

		events := product.GetDomainEvents()
		require.Len(t, events, 2)
		event, ok := events[1].(*ProductStockAdjustedEvent)
		require.True(t, ok)
		assert.Equal(t, 10, event.OldQty)
		assert.Equal(t, 6, event.NewQty)
	})

	t.Run("rejects adjustment below zero", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		require.NoError(t, product.AdjustStock(3))
		err := product.AdjustStock(-4)
		require.Error(t, err)
		assert.Equal(t, 3, product.StockQty)
	})

	t.Run("sets absolute stock", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		require.NoError(t, product.SetStock(25))
		assert.Equal(t, 25, product.StockQty)
	})

	t.Run("rejects negative absolute stock", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		err := product.SetStock(-1)
		require.Error(t, err)
	})
}

func TestProductVisibilityTransitions(t *testing.T) {
	tenantID := uuid.New()

	t.Run("draft activates", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		product.ClearDomainEvents()

		require.NoError(t, product.Activate())
		assert.Equal(t, ProductVisibilityActive, product.Visibility)
		assert.True(t, product.IsActive())

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*ProductVisibilityChangedEvent)
		require.True(t, ok)
		assert.Equal(t, ProductVisibilityDraft, event.OldVisibility)
		assert.Equal(t, ProductVisibilityActive, event.NewVisibility)
	})

	t.Run("active hides", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		require.NoError(t, product.Activate())
		require.NoError(t, product.Hide())
		assert.Equal(t, ProductVisibilityHidden, product.Visibility)
	})

	t.Run("activate is rejected when already active", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		require.NoError(t, product.Activate())
		err := product.Activate()
		require.Error(t, err)
	})

	t.Run("archived product cannot activate", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		require.NoError(t, product.Archive())
		err := product.Activate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "restore it first")
	})

	t.Run("restore brings archived back as hidden", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		require.NoError(t, product.Archive())
		require.NoError(t, product.Restore())
		assert.Equal(t, ProductVisibilityHidden, product.Visibility)
	})

	t.Run("restore is rejected on non-archived product", func(t *testing.T) {
		product, _ := NewProduct(tenantID, "SKU-001", "Name")
		err := product.Restore()
		require.Error(t, err)
	})
}

func TestProductVisibilityIsValid(t *testing.T) {
	assert.True(t, ProductVisibilityDraft.IsValid())
	assert.True(t, ProductVisibilityActive.IsValid())
	assert.True(t, ProductVisibilityHidden.IsValid())
	assert.True(t, ProductVisibilityArchived.IsValid())
	assert.False(t, ProductVisibility("unknown").IsValid())
}
