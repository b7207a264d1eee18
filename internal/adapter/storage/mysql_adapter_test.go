package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/funkystitch/storefront/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true&multiStatements=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := RunMigrations(db); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *sql.DB, p *domain.Product) {
	t.Helper()
	store := NewMySQLProductStore(db)
	if err := store.Create(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	t.Cleanup(func() {
		store.Delete(context.Background(), p.ID)
	})
}

func TestAdjustStockForOrder_VariantAndFlat(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewMySQLProductStore(db)
	now := time.Now().UTC().Truncate(time.Second)

	variantProduct := &domain.Product{
		ID:         uuid.NewString(),
		Name:       "Crew Tee",
		BasePrice:  decimal.NewFromInt(25),
		TotalStock: 20,
		Variants: []domain.Variant{
			{Size: "m", Color: "black", Price: decimal.NewFromInt(25), Stock: 12},
			{Size: "l", Color: "black", Price: decimal.NewFromInt(25), Stock: 8},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	flatProduct := &domain.Product{
		ID:           uuid.NewString(),
		Name:         "Tote Bag",
		BasePrice:    decimal.NewFromInt(15),
		CountInStock: 10,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	seedProduct(t, db, variantProduct)
	seedProduct(t, db, flatProduct)

	adjustments, err := store.AdjustStockForOrder(ctx, []domain.StockDecrement{
		{ProductID: variantProduct.ID, Variant: &domain.VariantSelector{Size: "m", Color: "black"}, Quantity: 5},
		{ProductID: flatProduct.ID, Quantity: 3},
		{ProductID: uuid.NewString(), Quantity: 1}, // unknown product
		{ProductID: variantProduct.ID, Variant: &domain.VariantSelector{Size: "xl", Color: "black"}, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(adjustments) != 4 {
		t.Fatalf("expected 4 adjustments, got %d", len(adjustments))
	}
	want := []domain.StockOutcome{
		domain.StockApplied,
		domain.StockApplied,
		domain.StockProductMissing,
		domain.StockVariantMissing,
	}
	for i, outcome := range want {
		if adjustments[i].Outcome != outcome {
			t.Errorf("line %d: expected outcome %s, got %s", i, outcome, adjustments[i].Outcome)
		}
	}

	// Verify the persisted counters.
	got, err := store.GetByID(ctx, variantProduct.ID)
	if err != nil {
		t.Fatalf("reload variant product: %v", err)
	}
	if v := got.FindVariant("m", "black"); v == nil || v.Stock != 7 {
		t.Errorf("expected bucket stock 7, got %+v", v)
	}
	if got.TotalStock != 15 {
		t.Errorf("expected total stock 15, got %d", got.TotalStock)
	}

	got, err = store.GetByID(ctx, flatProduct.ID)
	if err != nil {
		t.Fatalf("reload flat product: %v", err)
	}
	if got.CountInStock != 7 {
		t.Errorf("expected flat stock 7, got %d", got.CountInStock)
	}
}

func TestOrderUpdate_MissingRowReturnsNotFound(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	store := NewMySQLOrderStore(db)
	now := time.Now().UTC().Truncate(time.Second)
	ghost := &domain.Order{
		ID:             uuid.NewString(),
		UserID:         uuid.NewString(),
		Status:         domain.OrderStatusProcessing,
		ItemsPrice:     decimal.NewFromInt(100),
		DiscountAmount: decimal.Zero,
		ShippingPrice:  decimal.Zero,
		TaxPrice:       decimal.NewFromInt(5),
		TotalPrice:     decimal.NewFromInt(105),
		IsPaid:         true,
		PaidAt:         &now,
		UpdatedAt:      now,
	}

	if err := store.Update(context.Background(), ghost); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for a deleted order, got: %v", err)
	}
}

func TestEmailOrPhoneTaken_EmptyPhoneChecksEmailOnly(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewMySQLUserStore(db)
	now := time.Now().UTC().Truncate(time.Second)

	// A row with an empty phone must never collide with email-only
	// checks for other accounts.
	u := &domain.User{
		ID:        uuid.NewString(),
		Name:      "No Phone",
		Email:     uuid.NewString() + "@example.com",
		Phone:     "",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	t.Cleanup(func() { store.Delete(ctx, u.ID) })

	taken, err := store.EmailOrPhoneTaken(ctx, uuid.NewString()+"@example.com", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if taken {
		t.Error("unrelated email reported as taken")
	}

	taken, err = store.EmailOrPhoneTaken(ctx, u.Email, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !taken {
		t.Error("existing email not reported as taken")
	}
}

func TestAdjustStockForOrder_ClampsAtZero(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewMySQLProductStore(db)
	now := time.Now().UTC().Truncate(time.Second)

	p := &domain.Product{
		ID:           uuid.NewString(),
		Name:         "Beanie",
		BasePrice:    decimal.NewFromInt(12),
		CountInStock: 2,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	seedProduct(t, db, p)

	adjustments, err := store.AdjustStockForOrder(ctx, []domain.StockDecrement{
		{ProductID: p.ID, Quantity: 5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adjustments[0].Clamped {
		t.Error("expected clamped adjustment")
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if got.CountInStock != 0 {
		t.Errorf("expected stock clamped to 0, got %d", got.CountInStock)
	}
}
