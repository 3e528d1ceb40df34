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

package schema

import (
	"fmt"
	"strings"

	"github.com/uptrace/bun/dialect"
)

// CreateSQL renders the statements that materialize a descriptor: one
// CREATE TABLE followed by one CREATE INDEX per declared index.
func CreateSQL(t *Table, d dialect.Name) []string {
	stmts := []string{CreateTableSQL(t, d)}
	for _, ix := range t.Indexes {
		stmts = append(stmts, CreateIndexSQL(t, ix, d))
	}
	return stmts
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for the dialect.
// Foreign keys are emitted as named table constraints so the same statement
// works on sqlite, which cannot add constraints after creation.
func CreateTableSQL(t *Table, d dialect.Name) string {
	defs := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	for _, c := range t.Columns {
		defs = append(defs, columnSQL(c, d))
	}
	pk := make([]string, 0, 2)
	for _, name := range t.PrimaryKey() {
		pk = append(pk, quoteIdent(name, d))
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pk, ", ")))
	for _, fkc := range t.ForeignKeys {
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
			quoteIdent(fkc.ConstraintName(t.Name), d),
			quoteIdent(fkc.Column, d),
			quoteIdent(fkc.RefTable, d),
			quoteIdent(fkc.RefColumn, d),
			fkc.OnDelete))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(t.Name, d), strings.Join(defs, ", "))
}

// CreateIndexSQL renders one CREATE INDEX statement. MySQL has no
// IF NOT EXISTS for indexes, reruns surface a duplicate-index error that
// callers classify as benign.
func CreateIndexSQL(t *Table, ix Index, d dialect.Name) string {
	unique := ""
	if ix.Unique {
		unique = "UNIQUE "
	}
	ifNotExists := "IF NOT EXISTS "
	if d == dialect.MySQL {
		ifNotExists = ""
	}
	cols := make([]string, len(ix.Columns))
	for i, c := range ix.Columns {
		cols[i] = quoteIdent(c, d)
	}
	return fmt.Sprintf("CREATE %sINDEX %s%s ON %s (%s)",
		unique, ifNotExists, quoteIdent(ix.IndexName(t.Name), d), quoteIdent(t.Name, d), strings.Join(cols, ", "))
}

// DropTableSQL renders DROP TABLE IF EXISTS.
func DropTableSQL(name string, d dialect.Name) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name, d))
}

func columnSQL(c Column, d dialect.Name) string {
	var b strings.Builder
	b.WriteString(quoteIdent(c.Name, d))
	b.WriteString(" ")
	b.WriteString(sqlType(c, d))
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	return b.String()
}

func sqlType(c Column, d dialect.Name) string {
	switch c.Type {
	case TypeUUID:
		switch d {
		case dialect.PG:
			return "uuid"
		case dialect.MySQL:
			return "char(36)"
		default:
			return "text"
		}
	case TypeString:
		return fmt.Sprintf("varchar(%d)", c.Size)
	case TypeText:
		return "text"
	case TypeBool:
		if d == dialect.MySQL {
			return "tinyint(1)"
		}
		return "boolean"
	case TypeInt:
		if d == dialect.MySQL {
			return "int"
		}
		return "integer"
	case TypeFloat:
		switch d {
		case dialect.PG:
			return "double precision"
		case dialect.MySQL:
			return "double"
		default:
			return "real"
		}
	case TypeTimestamp:
		switch d {
		case dialect.PG:
			return "timestamptz"
		case dialect.MySQL:
			return "datetime"
		default:
			return "timestamp"
		}
	default:
		return "text"
	}
}

func quoteIdent(s string, d dialect.Name) string {
	if d == dialect.MySQL {
		return "`" + strings.ReplaceAll(s, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
