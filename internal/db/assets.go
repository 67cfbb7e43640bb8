package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const assetColumns = `
	a.id::text, a.user_id::text, coalesce(a.title, ''), a.category_id::text, coalesce(c.name, ''),
	coalesce(a.brand, ''), coalesce(a.model_name, ''), coalesce(a.serial_number, ''),
	a.purchase_price::float8, coalesce(a.purchase_currency, ''), a.purchase_date,
	a.current_estimated_value::float8, coalesce(a.estimate_currency, ''),
	coalesce(a.purchase_url, ''), coalesce(a.receipt_url, ''), coalesce(a.notes, ''),
	coalesce(a.current_condition, ''), a.asset_type_id::text,
	coalesce(a.address_city, ''), coalesce(a.address_country, ''),
	a.created_at, a.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (Asset, error) {
	var asset Asset
	err := row.Scan(
		&asset.ID, &asset.UserID, &asset.Title, &asset.CategoryID, &asset.CategoryName,
		&asset.Brand, &asset.ModelName, &asset.SerialNumber,
		&asset.PurchasePrice, &asset.PurchaseCurrency, &asset.PurchaseDate,
		&asset.CurrentEstimatedValue, &asset.EstimateCurrency,
		&asset.PurchaseURL, &asset.ReceiptURL, &asset.Notes,
		&asset.CurrentCondition, &asset.AssetTypeID,
		&asset.AddressCity, &asset.AddressCountry,
		&asset.CreatedAt, &asset.UpdatedAt,
	)
	return asset, err
}

func (d *DB) ListAssetsForUser(ctx context.Context, userID string) ([]Asset, error) {
	rows, err := d.pool.Query(ctx, `
		select `+assetColumns+`
		from public.assets a
		left join public.categories c on c.id = a.category_id
		where a.user_id = $1::uuid
		order by a.created_at desc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// GetAssetForUser returns found=false when the asset does not exist or
// belongs to another user.
func (d *DB) GetAssetForUser(ctx context.Context, userID, assetID string) (Asset, bool, error) {
	row := d.pool.QueryRow(ctx, `
		select `+assetColumns+`
		from public.assets a
		left join public.categories c on c.id = a.category_id
		where a.id = $1::uuid and a.user_id = $2::uuid
	`, assetID, userID)

	asset, err := scanAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, false, nil
	}
	if err != nil {
		return Asset{}, false, err
	}
	return asset, true, nil
}

func (d *DB) InsertAsset(ctx context.Context, userID string, in AssetInput) (string, error) {
	row := d.pool.QueryRow(ctx, `
		insert into public.assets (
			user_id, title, category_id, brand, model_name, serial_number,
			purchase_price, purchase_currency, purchase_date,
			current_estimated_value, estimate_currency,
			purchase_url, receipt_url, notes, current_condition, asset_type_id,
			address_city, address_country
		)
		values (
			$1::uuid, nullif($2, ''), $3::uuid, nullif($4, ''), nullif($5, ''), nullif($6, ''),
			$7, nullif($8, ''), $9,
			$10, nullif($11, ''),
			nullif($12, ''), nullif($13, ''), nullif($14, ''), nullif($15, ''), $16::uuid,
			nullif($17, ''), nullif($18, '')
		)
		returning id::text
	`, inputArgs(userID, in)...)

	var id string
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (d *DB) UpdateAssetForUser(ctx context.Context, userID, assetID string, in AssetInput) (bool, error) {
	args := append(inputArgs(userID, in), assetID)
	tag, err := d.pool.Exec(ctx, `
		update public.assets
		set title = nullif($2, ''), category_id = $3::uuid, brand = nullif($4, ''),
			model_name = nullif($5, ''), serial_number = nullif($6, ''),
			purchase_price = $7, purchase_currency = nullif($8, ''), purchase_date = $9,
			current_estimated_value = $10, estimate_currency = nullif($11, ''),
			purchase_url = nullif($12, ''), receipt_url = nullif($13, ''), notes = nullif($14, ''),
			current_condition = nullif($15, ''), asset_type_id = $16::uuid,
			address_city = nullif($17, ''), address_country = nullif($18, ''),
			updated_at = now()
		where id = $19::uuid and user_id = $1::uuid
	`, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetEstimatedValueForUser records a valuation the user accepted.
func (d *DB) SetEstimatedValueForUser(ctx context.Context, userID, assetID string, value float64, currency string) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		update public.assets
		set current_estimated_value = $1, estimate_currency = $2, updated_at = now()
		where id = $3::uuid and user_id = $4::uuid
	`, value, currency, assetID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (d *DB) DeleteAssetForUser(ctx context.Context, userID, assetID string) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
		delete from public.assets
		where id = $1::uuid and user_id = $2::uuid
	`, assetID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func inputArgs(userID string, in AssetInput) []any {
	return []any{
		userID, in.Title, in.CategoryID, in.Brand, in.ModelName, in.SerialNumber,
		in.PurchasePrice, in.PurchaseCurrency, in.PurchaseDate,
		in.CurrentEstimatedValue, in.EstimateCurrency,
		in.PurchaseURL, in.ReceiptURL, in.Notes, in.CurrentCondition, in.AssetTypeID,
		in.AddressCity, in.AddressCountry,
	}
}
