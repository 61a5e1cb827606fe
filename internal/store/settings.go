package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

// GetBusinessSettings reads the single settings row of the business, falling
// back to defaults when no row exists yet. Stored rows are merged over the
// defaults so columns added after the row was written still get a value.
func (s *Store) GetBusinessSettings(ctx context.Context, businessID string) (BusinessSettings, error) {
	query, args, err := psql.Select(
		"business_id", "sender_name", "sender_role", "greeting_style", "pronoun",
		"signature", "payment_method", "payment_details", "payment_callout",
		"entity_greeting_rule", "style_notes", "updated_at").
		From("business_settings").
		Where(sq.Eq{"business_id": businessID}).
		ToSql()
	if err != nil {
		return BusinessSettings{}, err
	}

	var stored BusinessSettings
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&stored.BusinessID, &stored.SenderName, &stored.SenderRole, &stored.GreetingStyle,
		&stored.Pronoun, &stored.Signature, &stored.PaymentMethod, &stored.PaymentDetails,
		&stored.PaymentCallout, &stored.EntityGreetingRule, &stored.StyleNotes, &stored.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultBusinessSettings(businessID), nil
	}
	if err != nil {
		return BusinessSettings{}, err
	}
	return MergeSettings(DefaultBusinessSettings(businessID), patchFrom(stored)), nil
}

func (s *Store) UpsertBusinessSettings(ctx context.Context, businessID string, patch SettingsPatch) (BusinessSettings, error) {
	current, err := s.GetBusinessSettings(ctx, businessID)
	if err != nil {
		return BusinessSettings{}, err
	}
	merged := MergeSettings(current, patch)

	query, args, err := psql.Insert("business_settings").
		Columns("business_id", "sender_name", "sender_role", "greeting_style", "pronoun",
			"signature", "payment_method", "payment_details", "payment_callout",
			"entity_greeting_rule", "style_notes", "updated_at").
		Values(merged.BusinessID, merged.SenderName, merged.SenderRole, merged.GreetingStyle,
			merged.Pronoun, merged.Signature, merged.PaymentMethod, merged.PaymentDetails,
			merged.PaymentCallout, merged.EntityGreetingRule, merged.StyleNotes, merged.UpdatedAt).
		Suffix(`ON CONFLICT (business_id) DO UPDATE SET
			sender_name = EXCLUDED.sender_name,
			sender_role = EXCLUDED.sender_role,
			greeting_style = EXCLUDED.greeting_style,
			pronoun = EXCLUDED.pronoun,
			signature = EXCLUDED.signature,
			payment_method = EXCLUDED.payment_method,
			payment_details = EXCLUDED.payment_details,
			payment_callout = EXCLUDED.payment_callout,
			entity_greeting_rule = EXCLUDED.entity_greeting_rule,
			style_notes = EXCLUDED.style_notes,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return BusinessSettings{}, err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return BusinessSettings{}, err
	}
	return merged, nil
}

func patchFrom(s BusinessSettings) SettingsPatch {
	return SettingsPatch{
		SenderName:         &s.SenderName,
		SenderRole:         &s.SenderRole,
		GreetingStyle:      &s.GreetingStyle,
		Pronoun:            &s.Pronoun,
		Signature:          &s.Signature,
		PaymentMethod:      &s.PaymentMethod,
		PaymentDetails:     &s.PaymentDetails,
		PaymentCallout:     &s.PaymentCallout,
		EntityGreetingRule: &s.EntityGreetingRule,
		StyleNotes:         &s.StyleNotes,
	}
}
