package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreLoadDecodesRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"config"}).
		AddRow([]byte(`{"disabledLocales":["ca"],"roleResourceGrants":{"editor":["node--article"]}}`))
	mock.ExpectQuery(`SELECT "config" FROM "gateway_policy"`).WillReturnRows(rows)

	s := NewPostgresStore(db, "gateway_policy")
	cfg, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ca"}, cfg.DisabledLocales)
	assert.True(t, cfg.RoleGrants("editor", "node--article"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLoadWithoutRowIsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT "config" FROM "gateway_policy"`).
		WillReturnRows(sqlmock.NewRows([]string{"config"}))

	cfg, err := NewPostgresStore(db, "gateway_policy").Load(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.IsEmpty())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLoadErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT "config"`).WillReturnError(errors.New("connection reset"))
	_, err = NewPostgresStore(db, "gateway_policy").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GW-POLICY-LOAD")

	mock.ExpectQuery(`SELECT "config"`).
		WillReturnRows(sqlmock.NewRows([]string{"config"}).AddRow([]byte(`{not json`)))
	_, err = NewPostgresStore(db, "gateway_policy").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GW-POLICY-DECODE")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO "gateway_policy" .* ON CONFLICT`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostgresStore(db, "gateway_policy").Save(context.Background(), &Config{
		DisabledResourceTypes: []resource.Key{"node--page"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO "gateway_policy"`).WillReturnError(errors.New("read-only transaction"))

	err = NewPostgresStore(db, "gateway_policy").Save(context.Background(), NewConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GW-POLICY-SAVE")
}

func TestPostgresSchemaQuotesTable(t *testing.T) {
	t.Parallel()
	assert.Contains(t, PostgresSchema("gateway_policy"), `CREATE TABLE IF NOT EXISTS "gateway_policy"`)
}
