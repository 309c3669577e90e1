package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/codec"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// productSelect rebuilds hydrated products in one pass. Each child table is
// aggregated in its own subquery so tiers and images never multiply each
// other. Tiers fold into the "price:quantity;..." aggregate decoded by
// package codec; image paths come back as a text[].
const productSelect = `
	SELECT p.id, p.name, p.category_ids,
	       pr.prices,
	       COALESCE(im.images, '{}') AS images
	FROM products p
	LEFT JOIN (
		SELECT product_id, string_agg(price::text || ':' || quantity::text, ';' ORDER BY id) AS prices
		FROM prices
		GROUP BY product_id
	) pr ON pr.product_id = p.id
	LEFT JOIN (
		SELECT product_id, array_agg(image_path ORDER BY id) AS images
		FROM images
		GROUP BY product_id
	) im ON im.product_id = p.id`

const (
	insertProductQuery = `INSERT INTO products (name, category_ids) VALUES ($1, $2) RETURNING id`
	insertPriceQuery   = `INSERT INTO prices (product_id, price, quantity) VALUES ($1, $2, $3)`
)

// productRow is the flat shape returned by productSelect.
type productRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	CategoryIDs string         `db:"category_ids"`
	Prices      sql.NullString `db:"prices"`
	Images      pq.StringArray `db:"images"`
}

// ProductRepository handles data access for products and their price tiers.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create validates req, then inserts the product and its price tiers in a
// single transaction. Nothing is committed unless every tier insert succeeds.
// The stored product is read back through the aggregation query.
func (r *ProductRepository) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: product body is required", utils.ErrValidation)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", utils.ErrValidation)
	}
	if len(req.CategoryIDs) == 0 {
		return nil, fmt.Errorf("%w: category_ids is required", utils.ErrValidation)
	}
	for _, id := range req.CategoryIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: category id %d is invalid", utils.ErrValidation, id)
		}
	}
	tiers, err := normalizeTiers(req.Prices)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin product tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id int64
	if err := tx.QueryRowxContext(ctx, insertProductQuery, name, codec.EncodeCategoryIDs(req.CategoryIDs)).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	if err := insertTiers(ctx, tx, id, tiers); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit product: %w", err)
	}

	return r.GetByID(ctx, id)
}

// AddPriceTiers appends tiers to an existing product in one transaction and
// returns the re-read product.
func (r *ProductRepository) AddPriceTiers(ctx context.Context, productID int64, reqs []models.PriceTierRequest) (*models.Product, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: at least one price tier is required", utils.ErrValidation)
	}
	tiers, err := normalizeTiers(reqs)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin price tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Lock the parent so it cannot vanish while its tiers are written.
	var locked int64
	if err := tx.QueryRowxContext(ctx, `SELECT id FROM products WHERE id = $1 FOR SHARE`, productID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %d", utils.ErrNotFound, productID)
		}
		return nil, err
	}
	if err := insertTiers(ctx, tx, productID, tiers); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit prices: %w", err)
	}

	return r.GetByID(ctx, productID)
}

// GetAll returns every product, hydrated, ordered by id.
func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, productSelect+` ORDER BY p.id`); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows))
	for i := range rows {
		p, err := hydrate(&rows[i])
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

// GetByID returns a single hydrated product.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var row productRow
	if err := r.db.GetContext(ctx, &row, productSelect+` WHERE p.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %d", utils.ErrNotFound, id)
		}
		return nil, err
	}
	return hydrate(&row)
}

// Exists reports whether a product with id is stored.
func (r *ProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.db.GetContext(ctx, &ok, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id); err != nil {
		return false, err
	}
	return ok, nil
}

// hydrate decodes the flat columns of row. A decode failure is a data
// integrity fault and is logged as such before being returned.
func hydrate(row *productRow) (*models.Product, error) {
	categoryIDs, err := codec.DecodeCategoryIDs(row.CategoryIDs)
	if err != nil {
		logIntegrityFault(row.ID, "category_ids", err)
		return nil, fmt.Errorf("product %d: %w", row.ID, err)
	}
	prices, err := codec.DecodePriceTiers(row.Prices.String)
	if err != nil {
		logIntegrityFault(row.ID, "prices", err)
		return nil, fmt.Errorf("product %d: %w", row.ID, err)
	}
	images := []string(row.Images)
	if images == nil {
		images = make([]string, 0)
	}

	return &models.Product{
		ID:          row.ID,
		Name:        row.Name,
		CategoryIDs: categoryIDs,
		Prices:      prices,
		Images:      images,
	}, nil
}

func logIntegrityFault(productID int64, column string, err error) {
	log.Error().
		Err(err).
		Str("fault", "data_integrity").
		Int64("product_id", productID).
		Str("column", column).
		Msg("stored product column could not be decoded")
}

// normalizeTiers validates client tiers and fills in the default quantity.
func normalizeTiers(reqs []models.PriceTierRequest) ([]models.PriceTier, error) {
	tiers := make([]models.PriceTier, 0, len(reqs))
	for i, req := range reqs {
		if req.Price == nil {
			return nil, fmt.Errorf("%w: prices[%d].price is required", utils.ErrValidation, i)
		}
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: prices[%d].price must not be negative", utils.ErrValidation, i)
		}
		t := models.PriceTier{Price: *req.Price, Quantity: models.DefaultTierQuantity}
		if req.Quantity != nil {
			if *req.Quantity < 0 {
				return nil, fmt.Errorf("%w: prices[%d].quantity must not be negative", utils.ErrValidation, i)
			}
			// prices.quantity is an INTEGER column.
			if *req.Quantity > math.MaxInt32 {
				return nil, fmt.Errorf("%w: prices[%d].quantity must not exceed %d", utils.ErrValidation, i, math.MaxInt32)
			}
			t.Quantity = *req.Quantity
		}
		if err := codec.CheckPriceTier(t); err != nil {
			return nil, fmt.Errorf("%w: prices[%d]: %v", utils.ErrValidation, i, err)
		}
		tiers = append(tiers, t)
	}
	return tiers, nil
}

func insertTiers(ctx context.Context, tx *sqlx.Tx, productID int64, tiers []models.PriceTier) error {
	for i, t := range tiers {
		if _, err := tx.ExecContext(ctx, insertPriceQuery, productID, t.Price, t.Quantity); err != nil {
			return fmt.Errorf("insert price tier %d: %w", i, err)
		}
	}
	return nil
}
