package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// FetchUserSettings returns found=false when the user has not saved any
// settings yet.
func (d *DB) FetchUserSettings(ctx context.Context, userID string) (UserSettings, bool, error) {
	row := d.pool.QueryRow(ctx, `
		select user_id::text, coalesce(base_currency, ''), created_at, updated_at
		from public.user_settings
		where user_id = $1::uuid
	`, userID)
	var settings UserSettings
	err := row.Scan(&settings.UserID, &settings.BaseCurrency, &settings.CreatedAt, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserSettings{}, false, nil
	}
	if err != nil {
		return UserSettings{}, false, err
	}
	return settings, true, nil
}
