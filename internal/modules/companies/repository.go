package companies

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/titguild/guildboard/internal/database"
)

// Repository persists the dataset in sqlite. The dataset is stored and
// replaced as one aggregate: company and good ordering is part of the
// content, so loads and saves are whole-dataset and order-preserving.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a dataset repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "companies").Logger(),
	}
}

// InitSchema creates the dataset tables if needed.
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS companies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			position INTEGER NOT NULL,
			name TEXT NOT NULL UNIQUE,
			industry TEXT NOT NULL DEFAULT '',
			professions TEXT NOT NULL DEFAULT '[]',
			timezone TEXT NOT NULL DEFAULT 'UTC +00:00'
		);

		CREATE TABLE IF NOT EXISTS goods (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			produced_good TEXT NOT NULL,
			planet_produced TEXT NOT NULL DEFAULT '',
			guildees_pay REAL NOT NULL DEFAULT 0,
			live_exc_price INTEGER NOT NULL DEFAULT 0,
			live_avg_price INTEGER NOT NULL DEFAULT 0,
			guild_max INTEGER NOT NULL DEFAULT 0,
			guild_min INTEGER NOT NULL DEFAULT 0,
			discount_percent INTEGER NOT NULL DEFAULT 0,
			discount_fixed INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_goods_company ON goods(company_id, position);
	`)
	if err != nil {
		return fmt.Errorf("failed to create dataset tables: %w", err)
	}
	return nil
}

// Load reads the full dataset in stored order. An empty store loads as an
// empty dataset, not an error.
func (r *Repository) Load() (Dataset, error) {
	rows, err := r.db.Query(`
		SELECT id, name, industry, professions, timezone
		FROM companies ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	defer rows.Close()

	var ds Dataset
	companyIndex := make(map[int64]int)

	for rows.Next() {
		var (
			id          int64
			c           Company
			professions string
		)
		if err := rows.Scan(&id, &c.Name, &c.Industry, &professions, &c.Timezone); err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		if err := json.Unmarshal([]byte(professions), &c.Professions); err != nil {
			r.log.Warn().Err(err).Str("company", c.Name).Msg("Unreadable professions column, falling back to industry")
			c.Professions = nil
		}
		companyIndex[id] = len(ds)
		ds = append(ds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}

	goodRows, err := r.db.Query(`
		SELECT company_id, produced_good, planet_produced, guildees_pay,
		       live_exc_price, live_avg_price, guild_max, guild_min,
		       discount_percent, discount_fixed
		FROM goods ORDER BY company_id, position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load goods: %w", err)
	}
	defer goodRows.Close()

	for goodRows.Next() {
		var (
			companyID int64
			g         Good
		)
		if err := goodRows.Scan(
			&companyID, &g.ProducedGood, &g.PlanetProduced, &g.GuildeesPay,
			&g.LiveExchangePrice, &g.LiveAveragePrice, &g.GuildMax, &g.GuildMin,
			&g.DiscountPercent, &g.DiscountFixed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan good row: %w", err)
		}

		idx, ok := companyIndex[companyID]
		if !ok {
			continue
		}
		ds[idx].Goods = append(ds[idx].Goods, g)
	}
	if err := goodRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goods: %w", err)
	}

	return ds, nil
}

// Save replaces the stored dataset wholesale within one transaction.
// Callers are expected to have validated the dataset first.
func (r *Repository) Save(ds Dataset) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM goods"); err != nil {
			return fmt.Errorf("failed to clear goods: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM companies"); err != nil {
			return fmt.Errorf("failed to clear companies: %w", err)
		}

		for pos, c := range ds {
			professions, err := json.Marshal(c.Professions)
			if err != nil {
				return fmt.Errorf("failed to encode professions for %s: %w", c.Name, err)
			}

			res, err := tx.Exec(`
				INSERT INTO companies (position, name, industry, professions, timezone)
				VALUES (?, ?, ?, ?, ?)
			`, pos, c.Name, c.Industry, string(professions), c.Timezone)
			if err != nil {
				return fmt.Errorf("failed to insert company %s: %w", c.Name, err)
			}

			companyID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get company id for %s: %w", c.Name, err)
			}

			for gpos, g := range c.Goods {
				if _, err := tx.Exec(`
					INSERT INTO goods (
						company_id, position, produced_good, planet_produced,
						guildees_pay, live_exc_price, live_avg_price,
						guild_max, guild_min, discount_percent, discount_fixed
					) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				`, companyID, gpos, g.ProducedGood, g.PlanetProduced,
					g.GuildeesPay, g.LiveExchangePrice, g.LiveAveragePrice,
					g.GuildMax, g.GuildMin, g.DiscountPercent, g.DiscountFixed,
				); err != nil {
					return fmt.Errorf("failed to insert good %s for %s: %w", g.ProducedGood, c.Name, err)
				}
			}
		}

		return nil
	})
}
