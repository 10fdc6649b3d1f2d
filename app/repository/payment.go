package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/zemen-travel/ms-go-payments/app/entity"
)

var (
	ErrPaymentAlreadyExists = errors.New("payment already exists")
	ErrStatusConflict       = errors.New("payment status changed concurrently")
)

type PaymentFilter struct {
	Email     string
	HasStatus bool
	Status    int32
	Limit     int32
	Offset    int32
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			tx_ref, amount, currency, email, full_name, phone_number,
			status, checkout_url, gateway_transaction_id, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.TxRef,
		payment.Amount,
		payment.Currency,
		payment.Email,
		payment.FullName,
		payment.PhoneNumber,
		payment.Status,
		nullableStringValue(payment.CheckoutURL),
		nullableStringValue(payment.GatewayTransactionID),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

// UpdateStatus persists a status transition guarded by the status the
// caller read. Zero affected rows means another writer got there first.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, payment *entity.Payment, expectedStatus int32) error {
	query := `
		UPDATE payments SET
			status = ?,
			gateway_transaction_id = ?,
			updated_at = ?
		WHERE tx_ref = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.Status,
		nullableStringValue(payment.GatewayTransactionID),
		payment.UpdatedAt,
		payment.TxRef,
		expectedStatus,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	return nil
}

func (r *PaymentRepository) FindByTxRef(ctx context.Context, txRef string) (*entity.Payment, error) {
	query := `
		SELECT id, tx_ref, amount, currency, email, full_name, phone_number,
			status, checkout_url, gateway_transaction_id, created_at, updated_at
		FROM payments
		WHERE tx_ref = ?
		LIMIT 1
	`

	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, txRef), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]*entity.Payment, error) {
	query := `
		SELECT id, tx_ref, amount, currency, email, full_name, phone_number,
			status, checkout_url, gateway_transaction_id, created_at, updated_at
		FROM payments
	`

	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)

	if strings.TrimSpace(filter.Email) != "" {
		conditions = append(conditions, "email = ?")
		args = append(args, filter.Email)
	}
	if filter.HasStatus {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item, err := scanPaymentFromRows(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PaymentRepository) ListStalePending(ctx context.Context, before time.Time, limit int32) ([]*entity.Payment, error) {
	query := `
		SELECT id, tx_ref, amount, currency, email, full_name, phone_number,
			status, checkout_url, gateway_transaction_id, created_at, updated_at
		FROM payments
		WHERE status = ?
		  AND updated_at <= ?
		ORDER BY updated_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.StatusPending, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item, err := scanPaymentFromRows(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(scan rowScanner, payment *entity.Payment) error {
	var checkoutURL sql.NullString
	var gatewayTxnID sql.NullString

	err := scan.Scan(
		&payment.ID,
		&payment.TxRef,
		&payment.Amount,
		&payment.Currency,
		&payment.Email,
		&payment.FullName,
		&payment.PhoneNumber,
		&payment.Status,
		&checkoutURL,
		&gatewayTxnID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	payment.CheckoutURL = stringPtrFromNull(checkoutURL)
	payment.GatewayTransactionID = stringPtrFromNull(gatewayTxnID)

	return nil
}

func scanPaymentFromRows(rows *sql.Rows) (*entity.Payment, error) {
	item := &entity.Payment{}
	if err := scanPayment(rows, item); err != nil {
		return nil, err
	}
	return item, nil
}
