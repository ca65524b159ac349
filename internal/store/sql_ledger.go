package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"courtdesk/internal/catalog"
	"courtdesk/internal/membership"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const membershipColumns = `id, client_id, plan_id, organization_id, name, benefit_type,
	remaining_sessions, original_sessions, discount_percentage, purchase_price,
	purchased_date, expires_date, status, time_restrictions, version, created_at, updated_at`

const transactionColumns = `id, membership_id, client_id, transaction_type, booking_id, admin_id,
	sessions_before, sessions_after, amount, membership_version, created_at, notes`

func (s *SQLStore) GetMembership(ctx context.Context, id uuid.UUID) (*membership.ClientMembership, error) {
	return s.getMembership(ctx, s.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLStore) getMembership(ctx context.Context, q queryer, id uuid.UUID) (*membership.ClientMembership, error) {
	row := q.QueryRowContext(ctx, s.rebind(`SELECT `+membershipColumns+` FROM client_memberships WHERE id = ?`), id)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: membership %s", membership.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

func (s *SQLStore) ActiveMembership(ctx context.Context, clientID string) (*membership.ClientMembership, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+membershipColumns+` FROM client_memberships
		WHERE client_id = ? AND status = ?
		ORDER BY seq DESC LIMIT 1
	`), clientID, string(membership.StatusActive))
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active membership for client %s", membership.ErrNotFound, clientID)
		}
		return nil, fmt.Errorf("get active membership: %w", err)
	}
	return m, nil
}

// ListMemberships returns the client's memberships, newest first.
func (s *SQLStore) ListMemberships(ctx context.Context, clientID string) ([]*membership.ClientMembership, error) {
	return s.queryMemberships(ctx, s.db, `
		SELECT `+membershipColumns+` FROM client_memberships
		WHERE client_id = ? ORDER BY seq DESC
	`, clientID)
}

// ListAllMemberships returns every membership in creation order.
func (s *SQLStore) ListAllMemberships(ctx context.Context) ([]*membership.ClientMembership, error) {
	return s.queryMemberships(ctx, s.db, `SELECT `+membershipColumns+` FROM client_memberships ORDER BY seq`)
}

func (s *SQLStore) queryMemberships(ctx context.Context, q queryer, query string, args ...any) ([]*membership.ClientMembership, error) {
	rows, err := q.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	var out []*membership.ClientMembership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) ClientTransactions(ctx context.Context, clientID string) ([]*membership.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM membership_transactions
		WHERE client_id = ? ORDER BY seq
	`, clientID)
}

func (s *SQLStore) MembershipTransactions(ctx context.Context, membershipID uuid.UUID) ([]*membership.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM membership_transactions
		WHERE membership_id = ? ORDER BY seq
	`, membershipID)
}

func (s *SQLStore) queryTransactions(ctx context.Context, query string, args ...any) ([]*membership.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []*membership.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateMembership supersedes the client's active memberships and inserts m
// with its purchase transaction in one database transaction.
func (s *SQLStore) CreateMembership(ctx context.Context, m *membership.ClientMembership, tx *membership.Transaction) ([]*membership.ClientMembership, error) {
	ctx, span := s.tracer.Start(ctx, "store.create_membership",
		trace.WithAttributes(
			attribute.String("membership.id", m.ID.String()),
			attribute.String("client.id", m.ClientID),
		),
	)
	defer span.End()

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	active, err := s.queryMemberships(ctx, dbtx, `
		SELECT `+membershipColumns+` FROM client_memberships
		WHERE client_id = ? AND status = ? ORDER BY seq
	`, m.ClientID, string(membership.StatusActive))
	if err != nil {
		return nil, err
	}

	superseded := make([]*membership.ClientMembership, 0, len(active))
	for _, old := range active {
		res, err := dbtx.ExecContext(ctx, s.rebind(`
			UPDATE client_memberships
			SET status = ?, version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?
		`), string(membership.StatusExpired), formatTime(m.CreatedAt), old.ID, old.Version)
		if err != nil {
			return nil, fmt.Errorf("supersede membership %s: %w", old.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			span.SetAttributes(attribute.Bool("conflict.detected", true))
			return nil, fmt.Errorf("%w: membership %s changed during purchase", membership.ErrConcurrencyConflict, old.ID)
		}
		old.Status = membership.StatusExpired
		old.Version++
		old.UpdatedAt = m.CreatedAt
		superseded = append(superseded, old)
	}

	if err := s.insertMembership(ctx, dbtx, m); err != nil {
		if isUniqueViolation(err) {
			span.SetAttributes(attribute.Bool("conflict.detected", true))
			return nil, fmt.Errorf("%w: client %s already has an active membership", membership.ErrConcurrencyConflict, m.ClientID)
		}
		return nil, fmt.Errorf("insert membership: %w", err)
	}
	if err := s.insertTransaction(ctx, dbtx, tx); err != nil {
		return nil, err
	}

	if err := dbtx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", membership.ErrConcurrencyConflict, err)
		}
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	span.SetAttributes(attribute.Int("superseded.count", len(superseded)))
	return superseded, nil
}

// UpdateMembership is a compare-and-set on the membership version; the
// transaction row is appended in the same database transaction.
func (s *SQLStore) UpdateMembership(ctx context.Context, m *membership.ClientMembership, expectedVersion int, tx *membership.Transaction) error {
	ctx, span := s.tracer.Start(ctx, "store.update_membership",
		trace.WithAttributes(
			attribute.String("membership.id", m.ID.String()),
			attribute.Int("expected.version", expectedVersion),
		),
	)
	defer span.End()

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	res, err := dbtx.ExecContext(ctx, s.rebind(`
		UPDATE client_memberships
		SET remaining_sessions = ?, status = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`), nullInt(m.RemainingSessions), string(m.Status), m.Version, formatTime(m.UpdatedAt), m.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	if n == 0 {
		if _, err := s.getMembership(ctx, dbtx, m.ID); err != nil {
			return err
		}
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return fmt.Errorf("%w: membership %s is no longer at version %d",
			membership.ErrConcurrencyConflict, m.ID, expectedVersion)
	}

	if tx != nil {
		if err := s.insertTransaction(ctx, dbtx, tx); err != nil {
			return err
		}
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) insertMembership(ctx context.Context, dbtx *sql.Tx, m *membership.ClientMembership) error {
	restrictions, err := encodeRestrictions(m.TimeRestrictions)
	if err != nil {
		return err
	}
	_, err = dbtx.ExecContext(ctx, s.rebind(`
		INSERT INTO client_memberships (`+membershipColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		m.ID, m.ClientID, m.PlanID, m.OrganizationID, m.Name, string(m.BenefitType),
		nullInt(m.RemainingSessions), nullInt(m.OriginalSessions), nullInt(m.DiscountPercentage), m.PurchasePrice,
		m.PurchasedDate, m.ExpiresDate, string(m.Status), restrictions, m.Version,
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	return err
}

func (s *SQLStore) insertTransaction(ctx context.Context, dbtx *sql.Tx, t *membership.Transaction) error {
	_, err := dbtx.ExecContext(ctx, s.rebind(`
		INSERT INTO membership_transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		t.ID, t.MembershipID, t.ClientID, string(t.Type), nullString(t.BookingID), nullString(t.AdminID),
		nullInt(t.SessionsBefore), nullInt(t.SessionsAfter), t.Amount, t.Version, formatTime(t.Timestamp), t.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: membership %s already has version %d",
				membership.ErrConcurrencyConflict, t.MembershipID, t.Version)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func scanMembership(row rowScanner) (*membership.ClientMembership, error) {
	var (
		m            membership.ClientMembership
		benefitType  string
		status       string
		restrictions sql.NullString
	)
	err := row.Scan(
		&m.ID,
		&m.ClientID,
		&m.PlanID,
		&m.OrganizationID,
		&m.Name,
		&benefitType,
		&m.RemainingSessions,
		&m.OriginalSessions,
		&m.DiscountPercentage,
		&m.PurchasePrice,
		&m.PurchasedDate,
		&m.ExpiresDate,
		&status,
		&restrictions,
		&m.Version,
		dbTime{&m.CreatedAt},
		dbTime{&m.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	m.BenefitType = catalog.BenefitType(benefitType)
	m.Status = membership.Status(status)
	if m.TimeRestrictions, err = decodeRestrictions(restrictions); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanTransaction(row rowScanner) (*membership.Transaction, error) {
	var (
		t         membership.Transaction
		txType    string
		bookingID sql.NullString
		adminID   sql.NullString
		timestamp time.Time
	)
	err := row.Scan(
		&t.ID,
		&t.MembershipID,
		&t.ClientID,
		&txType,
		&bookingID,
		&adminID,
		&t.SessionsBefore,
		&t.SessionsAfter,
		&t.Amount,
		&t.Version,
		dbTime{&timestamp},
		&t.Notes,
	)
	if err != nil {
		return nil, err
	}
	t.Type = membership.TransactionType(txType)
	t.BookingID = bookingID.String
	t.AdminID = adminID.String
	t.Timestamp = timestamp
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
