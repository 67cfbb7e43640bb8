package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// FetchCurrencyPairs lists every (base, quote) pair needed to total some
// user's dashboard. Users without settings use defaultBase.
func (d *DB) FetchCurrencyPairs(ctx context.Context, defaultBase string) ([]CurrencyPair, error) {
	rows, err := d.pool.Query(ctx, `
		with asset_currencies as (
			select user_id, upper(purchase_currency) as quote
			from public.assets
			where purchase_currency is not null
			union
			select user_id, upper(estimate_currency)
			from public.assets
			where estimate_currency is not null
		), pairs as (
			select distinct upper(coalesce(us.base_currency, $1)) as base, ac.quote
			from asset_currencies ac
			left join public.user_settings us on us.user_id = ac.user_id
		)
		select p.base, p.quote, r.fetched_at
		from pairs p
		left join public.fx_rates r on r.base_currency = p.base and r.quote_currency = p.quote
		where p.base <> p.quote
		order by p.base, p.quote
	`, defaultBase)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []CurrencyPair
	for rows.Next() {
		var pair CurrencyPair
		if err := rows.Scan(&pair.Base, &pair.Quote, &pair.LastFetchedAt); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

func (d *DB) FetchFXRates(ctx context.Context, base string) ([]FXRate, error) {
	rows, err := d.pool.Query(ctx, `
		select base_currency, quote_currency, rate::float8, fetched_at, provider
		from public.fx_rates
		where base_currency = $1
	`, base)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []FXRate
	for rows.Next() {
		var rate FXRate
		if err := rows.Scan(&rate.Base, &rate.Quote, &rate.Rate, &rate.FetchedAt, &rate.Provider); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

func (d *DB) UpsertFXRates(ctx context.Context, rates []FXRate) error {
	if len(rates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rate := range rates {
		batch.Queue(`
			insert into public.fx_rates (base_currency, quote_currency, rate, fetched_at, provider)
			values ($1, $2, $3, $4, $5)
			on conflict (base_currency, quote_currency)
			do update set rate = excluded.rate, fetched_at = excluded.fetched_at, provider = excluded.provider
		`, rate.Base, rate.Quote, rate.Rate, rate.FetchedAt, rate.Provider)
	}
	br := d.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rates {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) InsertFXSnapshots(ctx context.Context, rates []FXRate) error {
	if len(rates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rate := range rates {
		batch.Queue(`
			insert into public.fx_rate_snapshots (base_currency, quote_currency, rate, fetched_at, provider)
			values ($1, $2, $3, $4, $5)
		`, rate.Base, rate.Quote, rate.Rate, rate.FetchedAt, rate.Provider)
	}
	br := d.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rates {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
