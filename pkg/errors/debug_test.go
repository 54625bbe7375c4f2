package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}

func TestDumpWalksTypedChain(t *testing.T) {
	root := stdErrors.New("serpapi 503")
	err := fmt.Errorf("quote: %w", Wrap(CodeDependency, root, "search failed"))

	d := Dump(err)
	assert.Equal(t, CodeDependency, d.Code)
	assert.True(t, d.Retryable)
	require.Len(t, d.Chain, 3)
	assert.Empty(t, d.DBCode)
	assert.False(t, d.UniqueViolation)

	fields := d.LogFields()
	assert.Equal(t, CodeDependency, fields["error_code"])
	assert.NotContains(t, fields, "db_code")
}

func TestDumpPgxUniqueViolation(t *testing.T) {
	err := Wrap(CodeInternal, &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "users_external_id_key",
		TableName:      "users",
	}, "insert user")

	d := Dump(err)
	assert.True(t, d.UniqueViolation)
	assert.Equal(t, "users_external_id_key", d.DBConstraint)
	assert.Equal(t, "users", d.LogFields()["db_table"])
}

func TestDumpPqError(t *testing.T) {
	d := Dump(fmt.Errorf("insert: %w", &pq.Error{Code: "23503", Table: "price_history"}))
	assert.Equal(t, "23503", d.DBCode)
	assert.False(t, d.UniqueViolation)
}

func TestDumpSQLiteUniqueViolation(t *testing.T) {
	d := Dump(fmt.Errorf("insert: %w", sqlite3.Error{
		Code:         sqlite3.ErrConstraint,
		ExtendedCode: sqlite3.ErrConstraintUnique,
	}))
	assert.True(t, d.UniqueViolation)
	assert.Contains(t, d.DBCode, "sqlite:")
}
