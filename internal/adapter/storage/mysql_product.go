package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/funkystitch/storefront/internal/core/domain"
)

type MySQLProductStore struct {
	db *sql.DB
}

func NewMySQLProductStore(db *sql.DB) *MySQLProductStore {
	return &MySQLProductStore{db: db}
}

const productColumns = `id, name, image, brand, category, description, features, specifications,
	available_sizes, available_colors, base_price, discount_percent, rating, num_reviews,
	count_in_stock, total_stock, created_by, created_at, updated_at`

func (s *MySQLProductStore) Create(ctx context.Context, product *domain.Product) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		features, err := marshalJSON(product.Features)
		if err != nil {
			return fmt.Errorf("marshal features: %w", err)
		}
		specs, err := marshalJSON(product.Specifications)
		if err != nil {
			return fmt.Errorf("marshal specifications: %w", err)
		}
		sizes, err := marshalJSON(product.AvailableSizes)
		if err != nil {
			return fmt.Errorf("marshal sizes: %w", err)
		}
		colors, err := marshalJSON(product.AvailableColors)
		if err != nil {
			return fmt.Errorf("marshal colors: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, name, image, brand, category, description, features,
				specifications, available_sizes, available_colors, base_price, discount_percent,
				rating, num_reviews, count_in_stock, total_stock, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			product.ID, product.Name, product.Image, product.Brand, product.Category,
			product.Description, features, specs, sizes, colors,
			product.BasePrice.StringFixed(2), product.DiscountPercent.StringFixed(2),
			product.Rating, product.NumReviews, product.CountInStock, product.TotalStock,
			nullString(product.CreatedBy), product.CreatedAt, product.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		return insertVariantsAndImages(ctx, tx, product)
	})
}

func (s *MySQLProductStore) Update(ctx context.Context, product *domain.Product) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		features, err := marshalJSON(product.Features)
		if err != nil {
			return fmt.Errorf("marshal features: %w", err)
		}
		specs, err := marshalJSON(product.Specifications)
		if err != nil {
			return fmt.Errorf("marshal specifications: %w", err)
		}
		sizes, err := marshalJSON(product.AvailableSizes)
		if err != nil {
			return fmt.Errorf("marshal sizes: %w", err)
		}
		colors, err := marshalJSON(product.AvailableColors)
		if err != nil {
			return fmt.Errorf("marshal colors: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE products SET name = ?, image = ?, brand = ?, category = ?, description = ?,
				features = ?, specifications = ?, available_sizes = ?, available_colors = ?,
				base_price = ?, discount_percent = ?, total_stock = ?
			WHERE id = ?`,
			product.Name, product.Image, product.Brand, product.Category, product.Description,
			features, specs, sizes, colors,
			product.BasePrice.StringFixed(2), product.DiscountPercent.StringFixed(2),
			product.TotalStock, product.ID,
		)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if err := requireRow(result); err != nil {
			return err
		}

		// Variants and images are replaced wholesale on admin edits.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM product_variants WHERE product_id = ?`, product.ID); err != nil {
			return fmt.Errorf("clear variants: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM product_images WHERE product_id = ?`, product.ID); err != nil {
			return fmt.Errorf("clear images: %w", err)
		}

		return insertVariantsAndImages(ctx, tx, product)
	})
}

func insertVariantsAndImages(ctx context.Context, tx *sql.Tx, product *domain.Product) error {
	for _, v := range product.Variants {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_variants (product_id, size, color, price, stock)
			VALUES (?, ?, ?, ?, ?)`,
			product.ID, v.Size, v.Color, v.Price.StringFixed(2), v.Stock,
		)
		if err != nil {
			return fmt.Errorf("insert variant: %w", err)
		}
	}
	for _, img := range product.Images {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_images (product_id, url, color, is_variant_main)
			VALUES (?, ?, ?, ?)`,
			product.ID, img.URL, img.Color, img.IsVariantMain,
		)
		if err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
	}
	return nil
}

func (s *MySQLProductStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return requireRow(result)
}

func (s *MySQLProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	products, err := s.GetByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return &products[0], nil
}

func (s *MySQLProductStore) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachDetails(ctx, products, true); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MySQLProductStore) List(ctx context.Context, query domain.ProductQuery) ([]domain.Product, int, error) {
	where, args := buildProductFilter(query.Keyword)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 8
	}

	pageArgs := append(args, pageSize, (page-1)*pageSize)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products`+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := s.attachDetails(ctx, products, false); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *MySQLProductStore) Top(ctx context.Context, limit int) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY rating DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachDetails(ctx, products, false); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MySQLProductStore) AddReview(ctx context.Context, productID string, review domain.Review, rating float64, numReviews int) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_reviews (id, product_id, user_id, user_name, rating, comment, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			review.ID, productID, review.UserID, review.UserName, review.Rating,
			review.Comment, review.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE products SET rating = ?, num_reviews = ? WHERE id = ?`,
			rating, numReviews, productID)
		if err != nil {
			return fmt.Errorf("update rating: %w", err)
		}
		return requireRow(result)
	})
}

// AdjustStockForOrder applies every line of one paid order inside a
// single transaction, locking the touched rows so two concurrent
// payments cannot under-decrement the same bucket. Missing products
// and variants come back as per-line outcomes, not errors.
func (s *MySQLProductStore) AdjustStockForOrder(ctx context.Context, decs []domain.StockDecrement) ([]domain.StockAdjustment, error) {
	adjustments := make([]domain.StockAdjustment, 0, len(decs))

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, dec := range decs {
			adj, err := applyDecrementTx(ctx, tx, dec)
			if err != nil {
				return err
			}
			adjustments = append(adjustments, adj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

func applyDecrementTx(ctx context.Context, tx *sql.Tx, dec domain.StockDecrement) (domain.StockAdjustment, error) {
	p := domain.Product{ID: dec.ProductID}

	err := tx.QueryRowContext(ctx,
		`SELECT count_in_stock, total_stock FROM products WHERE id = ? FOR UPDATE`,
		dec.ProductID,
	).Scan(&p.CountInStock, &p.TotalStock)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockAdjustment{
			ProductID: dec.ProductID,
			Variant:   dec.Variant,
			Quantity:  dec.Quantity,
			Outcome:   domain.StockProductMissing,
		}, nil
	}
	if err != nil {
		return domain.StockAdjustment{}, fmt.Errorf("lock product %s: %w", dec.ProductID, err)
	}

	if dec.Variant != nil {
		rows, err := tx.QueryContext(ctx,
			`SELECT size, color, stock FROM product_variants WHERE product_id = ? FOR UPDATE`,
			dec.ProductID)
		if err != nil {
			return domain.StockAdjustment{}, fmt.Errorf("lock variants of %s: %w", dec.ProductID, err)
		}
		for rows.Next() {
			var v domain.Variant
			if err := rows.Scan(&v.Size, &v.Color, &v.Stock); err != nil {
				rows.Close()
				return domain.StockAdjustment{}, fmt.Errorf("scan variant: %w", err)
			}
			p.Variants = append(p.Variants, v)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return domain.StockAdjustment{}, fmt.Errorf("scan variants: %w", err)
		}
	}

	adj := domain.ApplyStockDecrement(&p, dec)
	if adj.Outcome != domain.StockApplied {
		return adj, nil
	}

	if dec.Variant != nil {
		v := p.FindVariant(dec.Variant.Size, dec.Variant.Color)
		if _, err := tx.ExecContext(ctx,
			`UPDATE product_variants SET stock = ? WHERE product_id = ? AND size = ? AND color = ?`,
			v.Stock, dec.ProductID, dec.Variant.Size, dec.Variant.Color); err != nil {
			return domain.StockAdjustment{}, fmt.Errorf("update variant stock: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET total_stock = ? WHERE id = ?`,
			p.TotalStock, dec.ProductID); err != nil {
			return domain.StockAdjustment{}, fmt.Errorf("update total stock: %w", err)
		}
		return adj, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET count_in_stock = ? WHERE id = ?`,
		p.CountInStock, dec.ProductID); err != nil {
		return domain.StockAdjustment{}, fmt.Errorf("update stock: %w", err)
	}
	return adj, nil
}

// buildProductFilter turns a keyword string into a WHERE clause.
// Plain terms match any of the text columns; "field:value" terms must
// all match their named column.
func buildProductFilter(keyword string) (string, []any) {
	terms := strings.Fields(keyword)
	if len(terms) == 0 {
		return "", nil
	}

	searchable := map[string]string{
		"name":        "name",
		"brand":       "brand",
		"category":    "category",
		"description": "description",
	}

	var orParts, andParts []string
	var orArgs, andArgs []any
	for _, term := range terms {
		if field, value, ok := strings.Cut(term, ":"); ok {
			column, known := searchable[field]
			if !known {
				continue
			}
			andParts = append(andParts, column+" LIKE ?")
			andArgs = append(andArgs, "%"+value+"%")
			continue
		}
		orParts = append(orParts,
			"(name LIKE ? OR description LIKE ? OR brand LIKE ? OR category LIKE ?)")
		pattern := "%" + term + "%"
		orArgs = append(orArgs, pattern, pattern, pattern, pattern)
	}

	var conds []string
	var args []any
	if len(orParts) > 0 {
		conds = append(conds, "("+strings.Join(orParts, " OR ")+")")
		args = append(args, orArgs...)
	}
	if len(andParts) > 0 {
		conds = append(conds, andParts...)
		args = append(args, andArgs...)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p                            domain.Product
			features, specs              []byte
			sizes, colors                []byte
			basePrice, discount          string
			createdBy                    sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Image, &p.Brand, &p.Category, &p.Description,
			&features, &specs, &sizes, &colors, &basePrice, &discount, &p.Rating,
			&p.NumReviews, &p.CountInStock, &p.TotalStock, &createdBy,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		p.BasePrice = parseDec(basePrice)
		p.DiscountPercent = parseDec(discount)
		p.CreatedBy = createdBy.String
		if err := unmarshalJSON(features, &p.Features); err != nil {
			return nil, fmt.Errorf("unmarshal features: %w", err)
		}
		if err := unmarshalJSON(specs, &p.Specifications); err != nil {
			return nil, fmt.Errorf("unmarshal specifications: %w", err)
		}
		if err := unmarshalJSON(sizes, &p.AvailableSizes); err != nil {
			return nil, fmt.Errorf("unmarshal sizes: %w", err)
		}
		if err := unmarshalJSON(colors, &p.AvailableColors); err != nil {
			return nil, fmt.Errorf("unmarshal colors: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// attachDetails loads variants and images for the given products, and
// reviews too when withReviews is set. Listing endpoints skip reviews.
func (s *MySQLProductStore) attachDetails(ctx context.Context, products []domain.Product, withReviews bool) error {
	if len(products) == 0 {
		return nil
	}

	index := make(map[string]*domain.Product, len(products))
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(products)), ",")
	args := make([]any, len(products))
	for i := range products {
		index[products[i].ID] = &products[i]
		args[i] = products[i].ID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, size, color, price, stock FROM product_variants
		 WHERE product_id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return fmt.Errorf("query variants: %w", err)
	}
	for rows.Next() {
		var (
			productID, price string
			v                domain.Variant
		)
		if err := rows.Scan(&productID, &v.Size, &v.Color, &price, &v.Stock); err != nil {
			rows.Close()
			return fmt.Errorf("scan variant: %w", err)
		}
		v.Price = parseDec(price)
		if p, ok := index[productID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("scan variants: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT product_id, url, color, is_variant_main FROM product_images
		 WHERE product_id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return fmt.Errorf("query images: %w", err)
	}
	for rows.Next() {
		var (
			productID string
			img       domain.ProductImage
		)
		if err := rows.Scan(&productID, &img.URL, &img.Color, &img.IsVariantMain); err != nil {
			rows.Close()
			return fmt.Errorf("scan image: %w", err)
		}
		if p, ok := index[productID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("scan images: %w", err)
	}

	if !withReviews {
		return nil
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT product_id, id, user_id, user_name, rating, comment, created_at
		 FROM product_reviews WHERE product_id IN (`+placeholders+`) ORDER BY created_at`, args...)
	if err != nil {
		return fmt.Errorf("query reviews: %w", err)
	}
	for rows.Next() {
		var (
			productID string
			r         domain.Review
			comment   sql.NullString
		)
		if err := rows.Scan(&productID, &r.ID, &r.UserID, &r.UserName, &r.Rating,
			&comment, &r.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan review: %w", err)
		}
		r.Comment = comment.String
		if p, ok := index[productID]; ok {
			p.Reviews = append(p.Reviews, r)
		}
	}
	rows.Close()
	return rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
