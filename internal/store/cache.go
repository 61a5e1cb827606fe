package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

func (s *Store) GetMessageCache(ctx context.Context, debtorID, tone string) (MessageCacheEntry, bool, error) {
	query, args, err := psql.Select(
		"debtor_id", "tone", "message_text", "message_reason", "model",
		"last_variation_id", "last_prompt_hash", "created_at", "updated_at").
		From("message_cache").
		Where(sq.Eq{"debtor_id": debtorID, "tone": tone}).
		ToSql()
	if err != nil {
		return MessageCacheEntry{}, false, err
	}

	var (
		e           MessageCacheEntry
		variationID sql.NullString
		promptHash  sql.NullString
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&e.DebtorID, &e.Tone, &e.MessageText, &e.MessageReason, &e.Model,
		&variationID, &promptHash, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return MessageCacheEntry{}, false, nil
	}
	if err != nil {
		return MessageCacheEntry{}, false, err
	}
	e.LastVariationID = fromNullString(variationID)
	e.LastPromptHash = fromNullString(promptHash)
	return e, true, nil
}

// UpsertMessageCache writes the single cache row for (debtor, tone). The
// ON CONFLICT merge makes concurrent writers last-writer-wins, which is the
// accepted behavior for racing regenerations.
func (s *Store) UpsertMessageCache(ctx context.Context, e MessageCacheEntry) error {
	now := time.Now().UTC()
	query, args, err := psql.Insert("message_cache").
		Columns("debtor_id", "tone", "message_text", "message_reason", "model",
			"last_variation_id", "last_prompt_hash", "created_at", "updated_at").
		Values(e.DebtorID, e.Tone, e.MessageText, e.MessageReason, e.Model,
			nullString(e.LastVariationID), nullString(e.LastPromptHash), now, now).
		Suffix(`ON CONFLICT (debtor_id, tone) DO UPDATE SET
			message_text = EXCLUDED.message_text,
			message_reason = EXCLUDED.message_reason,
			model = EXCLUDED.model,
			last_variation_id = EXCLUDED.last_variation_id,
			last_prompt_hash = EXCLUDED.last_prompt_hash,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}
