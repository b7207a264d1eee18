package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/funkystitch/storefront/internal/core/domain"
)

type MySQLOrderStore struct {
	db *sql.DB
}

func NewMySQLOrderStore(db *sql.DB) *MySQLOrderStore {
	return &MySQLOrderStore{db: db}
}

const orderColumns = `id, user_id, ship_address, ship_city, ship_postal_code, ship_country,
	payment_method, items_price, discount_amount, shipping_price, tax_price, total_price,
	is_paid, paid_at, is_delivered, delivered_at, status, shipped_at, tracking_number, carrier,
	payment_txn_id, payment_status, payment_update_time, payment_email, payment_amount,
	payment_currency, created_at, updated_at`

func (s *MySQLOrderStore) Create(ctx context.Context, order *domain.Order) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, user_id, ship_address, ship_city, ship_postal_code,
				ship_country, payment_method, items_price, discount_amount, shipping_price,
				tax_price, total_price, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			order.ID, order.UserID, order.ShippingAddress.Address, order.ShippingAddress.City,
			order.ShippingAddress.PostalCode, order.ShippingAddress.Country, order.PaymentMethod,
			order.ItemsPrice.StringFixed(2), order.DiscountAmount.StringFixed(2),
			order.ShippingPrice.StringFixed(2), order.TaxPrice.StringFixed(2),
			order.TotalPrice.StringFixed(2), order.Status, order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range order.Items {
			var size, color, price any
			if it.Variant != nil {
				size = it.Variant.Size
				color = it.Variant.Color
				price = it.Variant.Price.StringFixed(2)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, product_id, name, image, brand, category,
					quantity, unit_price, base_price, discount_percent, variant_size,
					variant_color, variant_price)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				order.ID, it.ProductID, it.Name, it.Image, it.Brand, it.Category,
				it.Quantity, it.UnitPrice.StringFixed(2), it.BasePrice.StringFixed(2),
				it.DiscountPercent.StringFixed(2), size, color, price,
			)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
}

func (s *MySQLOrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := s.queryOrders(ctx, ` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNotFound
	}
	return &orders[0], nil
}

func (s *MySQLOrderStore) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.queryOrders(ctx, ` WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (s *MySQLOrderStore) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.queryOrders(ctx, ` ORDER BY created_at DESC`)
}

// Update persists the mutable order state: lifecycle flags, shipping
// details and the payment result. Items are immutable once created.
// Callers bump UpdatedAt, so an existing row always counts as affected
// and a zero rows result means the order is gone.
func (s *MySQLOrderStore) Update(ctx context.Context, order *domain.Order) error {
	var txnID, payStatus, payTime, payEmail, payAmount, payCurrency any
	if order.PaymentResult != nil {
		txnID = order.PaymentResult.TransactionID
		payStatus = order.PaymentResult.Status
		payTime = order.PaymentResult.UpdateTime
		payEmail = order.PaymentResult.PayerEmail
		payAmount = order.PaymentResult.Amount.StringFixed(2)
		payCurrency = order.PaymentResult.Currency
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET is_paid = ?, paid_at = ?, is_delivered = ?, delivered_at = ?,
			status = ?, shipped_at = ?, tracking_number = ?, carrier = ?,
			payment_txn_id = COALESCE(?, payment_txn_id),
			payment_status = COALESCE(?, payment_status),
			payment_update_time = COALESCE(?, payment_update_time),
			payment_email = COALESCE(?, payment_email),
			payment_amount = COALESCE(?, payment_amount),
			payment_currency = COALESCE(?, payment_currency),
			updated_at = ?
		WHERE id = ?`,
		order.IsPaid, order.PaidAt, order.IsDelivered, order.DeliveredAt,
		order.Status, order.ShippedAt, order.TrackingNumber, order.Carrier,
		txnID, payStatus, payTime, payEmail, payAmount, payCurrency,
		order.UpdatedAt, order.ID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return requireRow(result)
}

func (s *MySQLOrderStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return requireRow(result)
}

func (s *MySQLOrderStore) PaymentTransactionSeen(ctx context.Context, transactionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE payment_txn_id = ? AND is_paid = TRUE)`,
		transactionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query payment transaction: %w", err)
	}
	return exists, nil
}

func (s *MySQLOrderStore) queryOrders(ctx context.Context, clause string, args ...any) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders`+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var (
			o                                  domain.Order
			itemsPrice, discount               string
			shipping, tax, total               string
			txnID, payStatus, payTime          sql.NullString
			payEmail, payAmount, payCurrency   sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.ShippingAddress.Address,
			&o.ShippingAddress.City, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
			&o.PaymentMethod, &itemsPrice, &discount, &shipping, &tax, &total,
			&o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.Status, &o.ShippedAt,
			&o.TrackingNumber, &o.Carrier, &txnID, &payStatus, &payTime, &payEmail,
			&payAmount, &payCurrency, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		o.ItemsPrice = parseDec(itemsPrice)
		o.DiscountAmount = parseDec(discount)
		o.ShippingPrice = parseDec(shipping)
		o.TaxPrice = parseDec(tax)
		o.TotalPrice = parseDec(total)
		if txnID.Valid {
			o.PaymentResult = &domain.PaymentResult{
				TransactionID: txnID.String,
				Status:        payStatus.String,
				UpdateTime:    payTime.String,
				PayerEmail:    payEmail.String,
				Amount:        parseNullDec(payAmount),
				Currency:      payCurrency.String,
			}
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *MySQLOrderStore) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	index := make(map[string]*domain.Order, len(orders))
	placeholders := ""
	args := make([]any, 0, len(orders))
	for i := range orders {
		index[orders[i].ID] = &orders[i]
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, orders[i].ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, image, brand, category, quantity, unit_price,
			base_price, discount_percent, variant_size, variant_color, variant_price
		FROM order_items WHERE order_id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID                       string
			it                            domain.OrderItem
			unitPrice, basePrice, disc    string
			vSize, vColor, vPrice         sql.NullString
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Image, &it.Brand,
			&it.Category, &it.Quantity, &unitPrice, &basePrice, &disc,
			&vSize, &vColor, &vPrice); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}

		it.UnitPrice = parseDec(unitPrice)
		it.BasePrice = parseDec(basePrice)
		it.DiscountPercent = parseDec(disc)
		if vSize.Valid {
			it.Variant = &domain.OrderItemVariant{
				Size:  vSize.String,
				Color: vColor.String,
				Price: parseNullDec(vPrice),
			}
		}
		if o, ok := index[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}
