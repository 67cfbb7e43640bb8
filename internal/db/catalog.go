package db

import "context"

func (d *DB) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := d.pool.Query(ctx, `
		select id::text, name
		from public.categories
		order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (d *DB) SearchAssetTypes(ctx context.Context, query string, limit int) ([]AssetType, error) {
	rows, err := d.pool.Query(ctx, `
		select t.id::text, t.name, coalesce(t.brand, ''), coalesce(t.model_name, ''), coalesce(c.name, '')
		from public.asset_types t
		left join public.categories c on c.id = t.category_id
		where (t.name ilike $1 or coalesce(t.brand, '') ilike $1 or coalesce(t.model_name, '') ilike $1)
		order by t.name
		limit $2
	`, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []AssetType
	for rows.Next() {
		var assetType AssetType
		if err := rows.Scan(&assetType.ID, &assetType.Name, &assetType.Brand, &assetType.ModelName, &assetType.CategoryName); err != nil {
			return nil, err
		}
		types = append(types, assetType)
	}
	return types, rows.Err()
}
