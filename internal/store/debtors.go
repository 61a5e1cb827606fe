package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var debtorColumns = []string{
	"id", "business_id", "name", "phone", "amount_ars", "days_overdue", "note",
	"last_status", "last_contact_at", "promise_date",
	"priority_score", "priority_reason", "created_at", "updated_at",
}

func scanDebtor(row sq.RowScanner) (Debtor, error) {
	var (
		d              Debtor
		note           sql.NullString
		lastStatus     sql.NullString
		lastContactAt  sql.NullTime
		promiseDate    sql.NullTime
		priorityReason sql.NullString
	)
	err := row.Scan(
		&d.ID, &d.BusinessID, &d.Name, &d.Phone, &d.AmountARS, &d.DaysOverdue, &note,
		&lastStatus, &lastContactAt, &promiseDate,
		&d.PriorityScore, &priorityReason, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return Debtor{}, err
	}
	d.Note = fromNullString(note)
	d.LastStatus = fromNullString(lastStatus)
	d.LastContactAt = fromNullTime(lastContactAt)
	d.PromiseDate = fromNullTime(promiseDate)
	d.PriorityReason = fromNullString(priorityReason)
	return d, nil
}

func (s *Store) GetDebtor(ctx context.Context, businessID, debtorID string) (Debtor, error) {
	query, args, err := psql.Select(debtorColumns...).
		From("debtor").
		Where(sq.Eq{"id": debtorID, "business_id": businessID}).
		ToSql()
	if err != nil {
		return Debtor{}, err
	}

	d, err := scanDebtor(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Debtor{}, ErrNotFound
	}
	return d, err
}

// ListDebtors returns every debtor of the business. sort "priority" orders by
// the denormalized priority snapshot, anything else by creation time.
func (s *Store) ListDebtors(ctx context.Context, businessID, sort string) ([]Debtor, error) {
	builder := psql.Select(debtorColumns...).
		From("debtor").
		Where(sq.Eq{"business_id": businessID})

	if sort == "priority" {
		builder = builder.OrderBy("priority_score DESC NULLS LAST")
	} else {
		builder = builder.OrderBy("created_at DESC")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return s.queryDebtors(ctx, query, args)
}

func (s *Store) FindDebtorsByPhones(ctx context.Context, businessID string, phones []string) ([]Debtor, error) {
	if len(phones) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select(debtorColumns...).
		From("debtor").
		Where(sq.Eq{"business_id": businessID, "phone": phones}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return s.queryDebtors(ctx, query, args)
}

func (s *Store) queryDebtors(ctx context.Context, query string, args []interface{}) ([]Debtor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Debtor
	for rows.Next() {
		d, err := scanDebtor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) InsertDebtor(ctx context.Context, d Debtor) (Debtor, error) {
	now := time.Now().UTC()
	query, args, err := psql.Insert("debtor").
		Columns("id", "business_id", "name", "phone", "amount_ars", "days_overdue", "note",
			"last_status", "priority_score", "priority_reason", "created_at", "updated_at").
		Values(d.ID, d.BusinessID, d.Name, d.Phone, d.AmountARS, d.DaysOverdue, nullString(d.Note),
			nullString(d.LastStatus), d.PriorityScore, nullString(d.PriorityReason), now, now).
		ToSql()
	if err != nil {
		return Debtor{}, err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return Debtor{}, err
	}
	d.CreatedAt = now
	d.UpdatedAt = now
	return d, nil
}

func (s *Store) UpdateDebtor(ctx context.Context, d Debtor) (Debtor, error) {
	now := time.Now().UTC()
	query, args, err := psql.Update("debtor").
		Set("name", d.Name).
		Set("phone", d.Phone).
		Set("amount_ars", d.AmountARS).
		Set("days_overdue", d.DaysOverdue).
		Set("note", nullString(d.Note)).
		Set("last_status", nullString(d.LastStatus)).
		Set("last_contact_at", nullTime(d.LastContactAt)).
		Set("promise_date", nullTime(d.PromiseDate)).
		Set("priority_score", d.PriorityScore).
		Set("priority_reason", nullString(d.PriorityReason)).
		Set("updated_at", now).
		Where(sq.Eq{"id": d.ID, "business_id": d.BusinessID}).
		ToSql()
	if err != nil {
		return Debtor{}, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Debtor{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Debtor{}, ErrNotFound
	}
	d.UpdatedAt = now
	return d, nil
}
