package db

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	raw, err := fs.ReadFile(Migrations, "001_journal.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "CREATE TABLE IF NOT EXISTS sync_runs")
	assert.Contains(t, string(raw), "CREATE TABLE IF NOT EXISTS kudos_attempts")
}

func TestApplyMigrationsRunsPendingInOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fsys := fstest.MapFS{
		"002_b.sql": {Data: []byte("CREATE TABLE b (id INT)")},
		"001_a.sql": {Data: []byte("CREATE TABLE a (id INT)")},
		"README.md": {Data: []byte("ignored")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	mock.ExpectQuery("SELECT EXISTS").WithArgs("001_a.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery("SELECT EXISTS").WithArgs("002_b.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE b").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("002_b.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, ApplyMigrations(context.Background(), mock, fsys))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMigrationsRollsBackFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fsys := fstest.MapFS{"001_a.sql": {Data: []byte("CREATE TABLE a (")}}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("001_a.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE a").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = ApplyMigrations(context.Background(), mock, fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 001_a.sql failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMigrationsRejectsEmptyFile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("001_a.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err = ApplyMigrations(context.Background(), mock, fstest.MapFS{"001_a.sql": {Data: []byte("  \n")}})
	assert.EqualError(t, err, "empty migration: 001_a.sql")
}
