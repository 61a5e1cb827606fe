package store

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

func (s *Store) InsertEvent(ctx context.Context, ev DebtorEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert("debtor_event").
		Columns("id", "debtor_id", "type", "payload", "created_at").
		Values(ev.ID, ev.DebtorID, ev.Type, payload, ev.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) ListEvents(ctx context.Context, debtorID string, limit int) ([]DebtorEvent, error) {
	query, args, err := psql.Select("id", "debtor_id", "type", "payload", "created_at").
		From("debtor_event").
		Where(sq.Eq{"debtor_id": debtorID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return s.queryEvents(ctx, query, args)
}

func (s *Store) ListEventsByDebtorIDs(ctx context.Context, debtorIDs []string) ([]DebtorEvent, error) {
	if len(debtorIDs) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select("id", "debtor_id", "type", "payload", "created_at").
		From("debtor_event").
		Where(sq.Eq{"debtor_id": debtorIDs}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return s.queryEvents(ctx, query, args)
}

func (s *Store) queryEvents(ctx context.Context, query string, args []interface{}) ([]DebtorEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DebtorEvent
	for rows.Next() {
		var (
			ev  DebtorEvent
			raw []byte
		)
		if err := rows.Scan(&ev.ID, &ev.DebtorID, &ev.Type, &raw, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &ev.Payload); err != nil {
				return nil, err
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
