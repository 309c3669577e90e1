package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_catalog/internal/database"
	"github.com/GTDGit/gtd_catalog/internal/models"
)

// openTestDB connects to the PostgreSQL named by CATALOG_TEST_DATABASE_URL and
// skips the test when it is not set.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("CATALOG_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CATALOG_TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.CreateTables(db.DB); err != nil {
		t.Fatalf("CreateTables: %v", err)
	}
	return db
}

func TestProductCreate_ConcurrentCreatesKeepTheirOwnTiers(t *testing.T) {
	db := openTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	const n = 8
	want := make(map[int64][]models.PriceTier, n)
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		ids []int64
	)
	errs := make(chan error, n)
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p1 := decimal.New(int64(i), 0)
			p2 := decimal.New(int64(i*100+1), -2)
			q := i * 10
			p, err := repo.Create(ctx, &models.CreateProductRequest{
				Name:        fmt.Sprintf("concurrent-%d", i),
				CategoryIDs: []int64{int64(i)},
				Prices: []models.PriceTierRequest{
					{Price: &p1, Quantity: &q},
					{Price: &p2},
				},
			})
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			ids = append(ids, p.ID)
			want[p.ID] = []models.PriceTier{
				{Price: p1, Quantity: q},
				{Price: p2, Quantity: models.DefaultTierQuantity},
			}
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	close(errs)
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM products WHERE id = ANY($1)`, pq.Array(ids))
	})
	for err := range errs {
		t.Fatalf("Create: %v", err)
	}
	if len(want) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(want))
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	seen := 0
	for _, p := range all {
		tiers, ok := want[p.ID]
		if !ok {
			continue
		}
		seen++
		if len(p.Prices) != len(tiers) {
			t.Fatalf("product %d has %d tiers, want %d: %+v", p.ID, len(p.Prices), len(tiers), p.Prices)
		}
		for i := range tiers {
			if !p.Prices[i].Price.Equal(tiers[i].Price) || p.Prices[i].Quantity != tiers[i].Quantity {
				t.Fatalf("product %d tier %d = %+v, want %+v", p.ID, i, p.Prices[i], tiers[i])
			}
		}
	}
	if seen != n {
		t.Fatalf("listed %d of %d created products", seen, n)
	}
}
