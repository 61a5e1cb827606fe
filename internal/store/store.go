package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
)

// Datastore is the persistence surface the handlers and the message pipeline
// depend on. Store implements it against postgres; Memory implements it for
// tests.
type Datastore interface {
	GetDebtor(ctx context.Context, businessID, debtorID string) (Debtor, error)
	ListDebtors(ctx context.Context, businessID, sort string) ([]Debtor, error)
	FindDebtorsByPhones(ctx context.Context, businessID string, phones []string) ([]Debtor, error)
	InsertDebtor(ctx context.Context, d Debtor) (Debtor, error)
	UpdateDebtor(ctx context.Context, d Debtor) (Debtor, error)

	InsertEvent(ctx context.Context, ev DebtorEvent) error
	ListEvents(ctx context.Context, debtorID string, limit int) ([]DebtorEvent, error)
	ListEventsByDebtorIDs(ctx context.Context, debtorIDs []string) ([]DebtorEvent, error)

	GetMessageCache(ctx context.Context, debtorID, tone string) (MessageCacheEntry, bool, error)
	UpsertMessageCache(ctx context.Context, e MessageCacheEntry) error

	GetBusinessSettings(ctx context.Context, businessID string) (BusinessSettings, error)
	UpsertBusinessSettings(ctx context.Context, businessID string, patch SettingsPatch) (BusinessSettings, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db *sql.DB
}

var _ Datastore = (*Store)(nil)

// Open connects to postgres and verifies connectivity before returning.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func trim(v string) string {
	return strings.TrimSpace(v)
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func fromNullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
