/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Sentinel errors of the startup lifecycle, matched by callers with errors.Is.
var (
	// ErrConnectionUnavailable reports that the readiness probe gave up
	// before the database ever answered.
	ErrConnectionUnavailable = errors.New("database connection unavailable")

	// ErrSchemaConflict reports a DDL failure that is not a benign
	// "already exists" outcome.
	ErrSchemaConflict = errors.New("schema conflict")

	// ErrStepOrdering reports that the rows recorded in the migration
	// ledger are not a prefix of the declared step chain.
	ErrStepOrdering = errors.New("migration ledger out of order")

	// ErrIrreversibleStep reports a rollback request across a step that
	// declares no inverse.
	ErrIrreversibleStep = errors.New("migration step is irreversible")

	// ErrSeedConflict reports that seed data already exists. It is benign:
	// the orchestrator logs it and continues.
	ErrSeedConflict = errors.New("seed data already initialized")
)

// SQLError classifies driver errors across MySQL, PostgreSQL and SQLite so
// callers can treat "already exists" as benign or map unique violations to
// conflicts without caring about the dialect.
type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
)

// mysqlErrorKinds maps MySQL server error numbers to their classification.
// Numbers not listed are still SQL errors, just of unknown kind.
var mysqlErrorKinds = map[uint16]SQLError{
	1050: ExistTableErr,
	1054: NoColumnErr,
	1060: ExistColumnErr,
	1061: ExistIndexErr,
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1091: NoIndexErr,
	1146: NoTableErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	1265: DataTruncatedErr,
	3819: CheckConstraintViolationErr,
}

type sqlErrorRule struct {
	kind  SQLError
	match func(s string) bool
}

func anyOf(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

func allOf(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if !strings.Contains(s, sub) {
				return false
			}
		}
		return true
	}
}

func either(fns ...func(string) bool) func(string) bool {
	return func(s string) bool {
		for _, fn := range fns {
			if fn(s) {
				return true
			}
		}
		return false
	}
}

// sqlErrorRules classify PostgreSQL and SQLite errors by message text, the
// drivers expose no stable numeric codes through database/sql. Checked in
// order, first match wins.
var sqlErrorRules = []sqlErrorRule{
	{NoColumnErr, anyOf("sqlstate 42703", "undefined column", "no such column")},
	{NoIndexErr, either(
		anyOf("sqlstate 42704", "no such index"),
		allOf("does not exist", "index"))},
	{NoTableErr, anyOf("sqlstate 42p01", "undefined table", "no such table")},
	{ExistIndexErr, allOf("already exists", "index")},
	{ExistTableErr, either(
		allOf("already exists", "table"),
		allOf("relation", "already exists"))},
	{DuplicateKeyErr, anyOf("duplicate key value", "unique constraint failed", "sqlstate 23505")},
	{NotNullViolationErr, anyOf("not-null constraint", "sqlstate 23502", "not null constraint failed")},
	{ForeignKeyViolationErr, anyOf("foreign key violation", "foreign key constraint failed", "sqlstate 23503")},
	{CheckConstraintViolationErr, anyOf("check constraint", "sqlstate 23514")},
	{DataTruncatedErr, anyOf("string data right truncation", "sqlstate 22001", "data truncated")},
	{InvalidTypeCastErr, anyOf("datatype mismatch", "sqlstate 42804")},
}

// IsSqlError reports whether err came from the database server and, if so,
// its classification.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if kind, ok := mysqlErrorKinds[mysqlErr.Number]; ok {
			return true, kind
		}
		return true, UnknownErr
	}
	s := strings.ToLower(err.Error())
	for _, rule := range sqlErrorRules {
		if rule.match(s) {
			return true, rule.kind
		}
	}
	return false, UnknownErr
}
