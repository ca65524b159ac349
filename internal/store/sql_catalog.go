package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"courtdesk/internal/catalog"
	"courtdesk/internal/schedule"
)

const planColumns = `id, organization_id, name, description, benefit_type, benefit_value,
	valid_for_days, price, is_active, time_restrictions, created_at`

func (s *SQLStore) InsertPlan(ctx context.Context, p *catalog.Plan) error {
	restrictions, err := encodeRestrictions(p.TimeRestrictions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO membership_plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		p.ID, p.OrganizationID, p.Name, p.Description, string(p.BenefitType), p.BenefitValue,
		p.ValidForDays, p.Price, p.IsActive, restrictions, formatTime(p.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", catalog.ErrDuplicate, p.ID)
		}
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

func (s *SQLStore) GetPlan(ctx context.Context, id string) (*catalog.Plan, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+planColumns+` FROM membership_plans WHERE id = ?`), id)
	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (s *SQLStore) ListPlans(ctx context.Context, activeOnly bool) ([]*catalog.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans`
	var args []any
	if activeOnly {
		query += ` WHERE is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []*catalog.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *SQLStore) SetPlanActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE membership_plans SET is_active = ? WHERE id = ?`), active, id)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*catalog.Plan, error) {
	var (
		p            catalog.Plan
		benefitType  string
		restrictions sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.Name,
		&p.Description,
		&benefitType,
		&p.BenefitValue,
		&p.ValidForDays,
		&p.Price,
		&p.IsActive,
		&restrictions,
		dbTime{&p.CreatedAt},
	)
	if err != nil {
		return nil, err
	}
	p.BenefitType = catalog.BenefitType(benefitType)
	if p.TimeRestrictions, err = decodeRestrictions(restrictions); err != nil {
		return nil, err
	}
	return &p, nil
}

func encodeRestrictions(r *schedule.TimeRestrictions) (any, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode time restrictions: %w", err)
	}
	return string(b), nil
}

func decodeRestrictions(v sql.NullString) (*schedule.TimeRestrictions, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var r schedule.TimeRestrictions
	if err := json.Unmarshal([]byte(v.String), &r); err != nil {
		return nil, fmt.Errorf("decode time restrictions: %w", err)
	}
	return &r, nil
}
