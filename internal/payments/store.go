package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that the store uses, so the
// database can be faked in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Store is the persistence contract of the lifecycle engine. Every method is
// a single atomic row operation.
type Store interface {
	Insert(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	AttachAuthorizationURL(ctx context.Context, id uuid.UUID, url string) error
	// TransitionByReference atomically moves the payment out of a
	// non-terminal state into to, recording transactionID when non-empty.
	// When the guard does not match it returns the current row with
	// applied=false; unknown references return ErrNotFound.
	TransitionByReference(ctx context.Context, reference string, to Status, transactionID string) (p *Payment, applied bool, err error)
}

const paymentColumns = `id, customer_name, customer_email, phone_number, state, country,
	amount, currency, status, gateway_reference, gateway_transaction_id,
	authorization_url, created_at, updated_at`

type PostgresStore struct {
	pool DBPool
}

func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Insert(ctx context.Context, p *Payment) error {
	const query = `
	INSERT INTO payments (id, customer_name, customer_email, phone_number, state, country,
	                      amount, currency, status, gateway_reference)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at, updated_at`

	row := s.pool.QueryRow(ctx, query,
		p.ID, p.CustomerName, p.CustomerEmail, p.PhoneNumber, p.State, p.Country,
		p.Amount, p.Currency, p.Status, p.GatewayReference,
	)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	return scanPayment(row)
}

func (s *PostgresStore) GetByReference(ctx context.Context, reference string) (*Payment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE gateway_reference = $1`, reference)
	return scanPayment(row)
}

func (s *PostgresStore) AttachAuthorizationURL(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE payments SET authorization_url = $2, updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("attach authorization url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) TransitionByReference(ctx context.Context, reference string, to Status, transactionID string) (*Payment, bool, error) {
	// The guard keeps the update a single atomic statement: concurrent
	// deliveries for the same reference cannot interleave partial writes,
	// and a terminal row is never overwritten.
	const query = `
	UPDATE payments
	SET status = $2,
	    gateway_transaction_id = CASE WHEN $3 <> '' THEN $3 ELSE gateway_transaction_id END,
	    updated_at = now()
	WHERE gateway_reference = $1
	  AND status IN ('pending', 'processing')
	RETURNING ` + paymentColumns

	p, err := scanPayment(s.pool.QueryRow(ctx, query, reference, to, transactionID))
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	// Guard missed: the row is terminal already, or the reference is unknown.
	current, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.CustomerName, &p.CustomerEmail, &p.PhoneNumber, &p.State, &p.Country,
		&p.Amount, &p.Currency, &p.Status, &p.GatewayReference, &p.GatewayTransactionID,
		&p.AuthorizationURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return &p, nil
}
