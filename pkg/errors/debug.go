package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const pgUniqueViolation = "23505"

// ErrorDump flattens an error chain for structured logs, including the
// database details buried inside driver errors.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	DBCode          string `json:"db_code,omitempty"`
	DBConstraint    string `json:"db_constraint,omitempty"`
	DBTable         string `json:"db_table,omitempty"`
	DBDetail        string `json:"db_detail,omitempty"`
	UniqueViolation bool   `json:"unique_violation,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgxErr):
		d.DBCode = pgxErr.Code
		d.DBConstraint = pgxErr.ConstraintName
		d.DBTable = pgxErr.TableName
		d.DBDetail = pgxErr.Detail
		d.UniqueViolation = pgxErr.Code == pgUniqueViolation
	case errors.As(err, &pqErr):
		d.DBCode = string(pqErr.Code)
		d.DBConstraint = pqErr.Constraint
		d.DBTable = pqErr.Table
		d.DBDetail = pqErr.Detail
		d.UniqueViolation = string(pqErr.Code) == pgUniqueViolation
	case errors.As(err, &liteErr):
		d.DBCode = fmt.Sprintf("sqlite:%d", int(liteErr.ExtendedCode))
		d.DBDetail = liteErr.Error()
		d.UniqueViolation = liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return d
}

// LogFields returns the dump as logger fields, omitting empty database
// details.
func (d ErrorDump) LogFields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.Retryable {
		fields["retryable"] = true
	}
	if d.DBCode != "" {
		fields["db_code"] = d.DBCode
		fields["db_detail"] = d.DBDetail
		fields["db_table"] = d.DBTable
		fields["db_constraint"] = d.DBConstraint
	}
	return fields
}
