package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
)

const (
	dialect       = "postgres"
	colID         = "id"
	colConfig     = "config"
	colUpdatedAt  = "updated_at"
	settingsRowID = "settings"
)

// PostgresSchema returns the DDL of the settings table.
func PostgresSchema(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
	id TEXT PRIMARY KEY,
	config JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, table)
}

// PostgresStore keeps the settings document as one JSONB row.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgresStore uses an already opened pool. The table must exist, see
// PostgresSchema.
func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{db: db, table: table}
}

func (s *PostgresStore) Load(ctx context.Context) (*Config, error) {
	d := goqu.Dialect(dialect)
	sqlStr, args, err := d.From(s.table).
		Select(goqu.C(colConfig)).
		Where(goqu.C(colID).Eq(settingsRowID)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("GW-POLICY-BUILDQUERY: %w", err)
	}

	var payload []byte
	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return NewConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("GW-POLICY-LOAD: %w", err)
	}

	cfg := &Config{}
	if err := common.Unmarshal(payload, cfg); err != nil {
		return nil, fmt.Errorf("GW-POLICY-DECODE: %w", err)
	}
	return cfg.Normalize(), nil
}

func (s *PostgresStore) Save(ctx context.Context, cfg *Config) error {
	payload, err := common.Marshal(cfg.Clone().Normalize())
	if err != nil {
		return fmt.Errorf("GW-POLICY-ENCODE: %w", err)
	}

	d := goqu.Dialect(dialect)
	sqlStr, args, err := d.Insert(s.table).
		Rows(goqu.Record{
			colID:        settingsRowID,
			colConfig:    string(payload),
			colUpdatedAt: goqu.L("NOW()"),
		}).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colConfig:    goqu.L("EXCLUDED.config"),
			colUpdatedAt: goqu.L("NOW()"),
		})).
		ToSQL()
	if err != nil {
		return fmt.Errorf("GW-POLICY-BUILDQUERY: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("GW-POLICY-SAVE: %w", err)
	}
	return nil
}
