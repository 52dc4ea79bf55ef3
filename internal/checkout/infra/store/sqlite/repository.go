// Package sqlite implements the checkout store ports on SQLite.
//
// WAL mode is enabled on Open so webhook reconciliation writes never block
// the order-status reads coming from the client polling loop.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
	"github.com/gyroball/checkout/internal/checkout/core/ports"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps Alpine/scratch container builds simple.
	_ "modernc.org/sqlite"
)

func init() {
	// sqlx does not know the modernc driver name out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// schema is the DDL executed once on startup. Timestamps are RFC3339 TEXT,
// the SQLite idiom.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
    id          TEXT PRIMARY KEY,

    -- National tax id (CPF). One customer record per tax id; name, email
    -- and phone are overwritten on every new order from the same id.
    tax_id      TEXT NOT NULL UNIQUE,

    name        TEXT NOT NULL,
    email       TEXT NOT NULL,
    phone       TEXT NOT NULL,
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS shipping_addresses (
    id            TEXT PRIMARY KEY,
    customer_id   TEXT NOT NULL REFERENCES customers(id),

    postal_code   TEXT NOT NULL,
    street        TEXT NOT NULL,
    number        TEXT NOT NULL,
    complement    TEXT,
    neighborhood  TEXT NOT NULL,
    city          TEXT NOT NULL,
    state         TEXT NOT NULL,
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id                  TEXT PRIMARY KEY,
    customer_id         TEXT NOT NULL REFERENCES customers(id),
    shipping_address_id TEXT NOT NULL REFERENCES shipping_addresses(id),

    quantity            INTEGER NOT NULL,
    subtotal            REAL NOT NULL,
    shipping_cost       REAL NOT NULL,

    -- Stored exactly as submitted; the server does not recompute it.
    total               REAL NOT NULL,

    payment_method      TEXT NOT NULL,
    payment_status      TEXT NOT NULL DEFAULT 'pending',
    fulfillment_status  TEXT NOT NULL DEFAULT 'pending',

    -- Gateway preference id. NULL until the checkout session is created,
    -- and stays NULL when preference creation degraded to the mock path.
    payment_intent_id   TEXT,

    created_at          TEXT NOT NULL,
    updated_at          TEXT NOT NULL
);

-- Webhook lookups correlate notifications by the gateway id.
CREATE INDEX IF NOT EXISTS idx_orders_payment_intent ON orders(payment_intent_id);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, created_at);
`

// Store owns the database handle and exposes one repository per aggregate.
// All three repositories share the same connection pool.
type Store struct {
	db *sqlx.DB

	Customers *CustomerRepo
	Addresses *AddressRepo
	Orders    *OrderRepo
}

type CustomerRepo struct{ db *sqlx.DB }
type AddressRepo struct{ db *sqlx.DB }
type OrderRepo struct{ db *sqlx.DB }

var (
	_ ports.CustomerStore = (*CustomerRepo)(nil)
	_ ports.AddressStore  = (*AddressRepo)(nil)
	_ ports.OrderStore    = (*OrderRepo)(nil)
)

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
func Open(path string) (*Store, error) {
	// WAL enables concurrent readers. foreign_keys=on enforces the customer
	// and address references. busy_timeout waits for locks instead of
	// failing immediately on concurrent webhook deliveries.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{
		db:        db,
		Customers: &CustomerRepo{db: db},
		Addresses: &AddressRepo{db: db},
		Orders:    &OrderRepo{db: db},
	}, nil
}

// DB exposes the underlying handle so the saga log repository can share it.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error { return s.db.Close() }

// --- customers ---

type customerRow struct {
	ID        string `db:"id"`
	TaxID     string `db:"tax_id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	CreatedAt string `db:"created_at"`
}

func (row customerRow) toEntity() (entity.Customer, error) {
	createdAt, err := parseRFC3339(row.CreatedAt)
	if err != nil {
		return entity.Customer{}, err
	}
	return entity.Customer{
		ID:        row.ID,
		TaxID:     row.TaxID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone,
		CreatedAt: createdAt,
	}, nil
}

func (r *CustomerRepo) FindByTaxID(ctx context.Context, taxID string) (*entity.Customer, error) {
	const q = `SELECT id, tax_id, name, email, phone, created_at FROM customers WHERE tax_id = ?`

	var row customerRow
	err := r.db.GetContext(ctx, &row, q, taxID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find customer by tax id: %w", err)
	}

	customer, err := row.toEntity()
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepo) Insert(ctx context.Context, c *entity.Customer) error {
	const q = `INSERT INTO customers (id, tax_id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q, c.ID, c.TaxID, c.Name, c.Email, c.Phone, formatRFC3339(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: insert customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	const q = `UPDATE customers SET name = ?, email = ?, phone = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, q, c.Name, c.Email, c.Phone, c.ID)
	if err != nil {
		return fmt.Errorf("sqlite: update customer %q: %w", c.ID, err)
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete customer %q: %w", id, err)
	}
	return nil
}

// --- shipping addresses ---

func (r *AddressRepo) Insert(ctx context.Context, a *entity.ShippingAddress) error {
	const q = `
		INSERT INTO shipping_addresses
			(id, customer_id, postal_code, street, number, complement, neighborhood, city, state, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.CustomerID, a.PostalCode, a.Street, a.Number,
		nullableString(a.Complement), a.Neighborhood, a.City, a.State,
		formatRFC3339(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert shipping address: %w", err)
	}
	return nil
}

func (r *AddressRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shipping_addresses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete shipping address %q: %w", id, err)
	}
	return nil
}

// --- orders ---

func (r *OrderRepo) Insert(ctx context.Context, o *entity.Order) error {
	const q = `
		INSERT INTO orders
			(id, customer_id, shipping_address_id, quantity, subtotal, shipping_cost, total,
			 payment_method, payment_status, fulfillment_status, payment_intent_id, created_at, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		o.ID, o.CustomerID, o.ShippingAddressID, o.Quantity, o.Subtotal, o.ShippingCost, o.Total,
		string(o.PaymentMethod), string(o.PaymentStatus), string(o.FulfillmentStatus),
		nullableString(o.PaymentIntentID), formatRFC3339(o.CreatedAt), formatRFC3339(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete order %q: %w", id, err)
	}
	return nil
}

func (r *OrderRepo) SetPaymentIntent(ctx context.Context, orderID, intentID string) error {
	const q = `UPDATE orders SET payment_intent_id = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, q, intentID, orderID)
	if err != nil {
		return fmt.Errorf("sqlite: set payment intent on order %q: %w", orderID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

type orderRow struct {
	ID                string         `db:"id"`
	CustomerID        string         `db:"customer_id"`
	ShippingAddressID string         `db:"shipping_address_id"`
	Quantity          int            `db:"quantity"`
	Subtotal          float64        `db:"subtotal"`
	ShippingCost      float64        `db:"shipping_cost"`
	Total             float64        `db:"total"`
	PaymentMethod     string         `db:"payment_method"`
	PaymentStatus     string         `db:"payment_status"`
	FulfillmentStatus string         `db:"fulfillment_status"`
	PaymentIntentID   sql.NullString `db:"payment_intent_id"`
	CreatedAt         string         `db:"created_at"`
	UpdatedAt         string         `db:"updated_at"`
}

func (row orderRow) toEntity() (entity.Order, error) {
	createdAt, err := parseRFC3339(row.CreatedAt)
	if err != nil {
		return entity.Order{}, err
	}
	updatedAt, err := parseRFC3339(row.UpdatedAt)
	if err != nil {
		return entity.Order{}, err
	}
	return entity.Order{
		ID:                row.ID,
		CustomerID:        row.CustomerID,
		ShippingAddressID: row.ShippingAddressID,
		Quantity:          row.Quantity,
		Subtotal:          row.Subtotal,
		ShippingCost:      row.ShippingCost,
		Total:             row.Total,
		PaymentMethod:     entity.PaymentMethod(row.PaymentMethod),
		PaymentStatus:     entity.PaymentStatus(row.PaymentStatus),
		FulfillmentStatus: entity.FulfillmentStatus(row.FulfillmentStatus),
		PaymentIntentID:   row.PaymentIntentID.String,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}, nil
}

const orderColumns = `id, customer_id, shipping_address_id, quantity, subtotal, shipping_cost, total,
	payment_method, payment_status, fulfillment_status, payment_intent_id, created_at, updated_at`

func (r *OrderRepo) FindByPaymentIntent(ctx context.Context, intentID string) (*entity.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE payment_intent_id = ?`

	var row orderRow
	err := r.db.GetContext(ctx, &row, q, intentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order by payment intent: %w", err)
	}

	order, err := row.toEntity()
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID string, payment entity.PaymentStatus, fulfillment entity.FulfillmentStatus) error {
	const q = `UPDATE orders SET payment_status = ?, fulfillment_status = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, q, string(payment), string(fulfillment), formatRFC3339(time.Now().UTC()), orderID)
	if err != nil {
		return fmt.Errorf("sqlite: update order status %q: %w", orderID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

type orderDetailRow struct {
	orderRow

	CustomerTaxID     string `db:"customer_tax_id"`
	CustomerName      string `db:"customer_name"`
	CustomerEmail     string `db:"customer_email"`
	CustomerPhone     string `db:"customer_phone"`
	CustomerCreatedAt string `db:"customer_created_at"`

	AddrPostalCode   string         `db:"addr_postal_code"`
	AddrStreet       string         `db:"addr_street"`
	AddrNumber       string         `db:"addr_number"`
	AddrComplement   sql.NullString `db:"addr_complement"`
	AddrNeighborhood string         `db:"addr_neighborhood"`
	AddrCity         string         `db:"addr_city"`
	AddrState        string         `db:"addr_state"`
	AddrCreatedAt    string         `db:"addr_created_at"`
}

func (r *OrderRepo) List(ctx context.Context, filter ports.OrderFilter) ([]entity.OrderDetail, error) {
	const q = `
		SELECT
			o.id, o.customer_id, o.shipping_address_id, o.quantity, o.subtotal, o.shipping_cost, o.total,
			o.payment_method, o.payment_status, o.fulfillment_status, o.payment_intent_id,
			o.created_at, o.updated_at,
			c.tax_id      AS customer_tax_id,
			c.name        AS customer_name,
			c.email       AS customer_email,
			c.phone       AS customer_phone,
			c.created_at  AS customer_created_at,
			a.postal_code AS addr_postal_code,
			a.street      AS addr_street,
			a.number      AS addr_number,
			a.complement  AS addr_complement,
			a.neighborhood AS addr_neighborhood,
			a.city        AS addr_city,
			a.state       AS addr_state,
			a.created_at  AS addr_created_at
		FROM orders o
		JOIN customers c          ON c.id = o.customer_id
		JOIN shipping_addresses a ON a.id = o.shipping_address_id
		WHERE (? = '' OR o.customer_id = ?)
		  AND (? = '' OR o.id = ?)
		ORDER BY o.created_at DESC, o.id DESC`

	var rows []orderDetailRow
	err := r.db.SelectContext(ctx, &rows, q,
		filter.CustomerID, filter.CustomerID,
		filter.OrderID, filter.OrderID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}

	details := make([]entity.OrderDetail, 0, len(rows))
	for _, row := range rows {
		order, err := row.orderRow.toEntity()
		if err != nil {
			return nil, err
		}
		customerCreatedAt, err := parseRFC3339(row.CustomerCreatedAt)
		if err != nil {
			return nil, err
		}
		addrCreatedAt, err := parseRFC3339(row.AddrCreatedAt)
		if err != nil {
			return nil, err
		}
		details = append(details, entity.OrderDetail{
			Order: order,
			Customer: entity.Customer{
				ID:        order.CustomerID,
				TaxID:     row.CustomerTaxID,
				Name:      row.CustomerName,
				Email:     row.CustomerEmail,
				Phone:     row.CustomerPhone,
				CreatedAt: customerCreatedAt,
			},
			Address: entity.ShippingAddress{
				ID:           order.ShippingAddressID,
				CustomerID:   order.CustomerID,
				PostalCode:   row.AddrPostalCode,
				Street:       row.AddrStreet,
				Number:       row.AddrNumber,
				Complement:   row.AddrComplement.String,
				Neighborhood: row.AddrNeighborhood,
				City:         row.AddrCity,
				State:        row.AddrState,
				CreatedAt:    addrCreatedAt,
			},
		})
	}
	return details, nil
}

// nullableString returns nil for empty strings so SQLite stores NULL instead
// of an empty TEXT.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
