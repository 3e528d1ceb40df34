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
	"sync"

	"github.com/tomoncle/ideahub/types"
)

// Action is the on-delete policy of a foreign key.
type Action int

const (
	Cascade Action = iota + 1
	SetNull
	Restrict
)

var _ types.BaseEnum = Cascade

func (a Action) IsValid() bool {
	return a >= Cascade && a <= Restrict
}

func (a Action) Number() int {
	if !a.IsValid() {
		return types.IllegalValue
	}
	return int(a)
}

// String returns the SQL form used in constraint clauses.
func (a Action) String() string {
	switch a {
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	case Restrict:
		return "RESTRICT"
	default:
		return strings.ToUpper(types.IllegalName)
	}
}

func (a Action) Name() string {
	switch a {
	case Cascade:
		return "cascade"
	case SetNull:
		return "set_null"
	case Restrict:
		return "restrict"
	default:
		return types.IllegalName
	}
}

func (a Action) Desc() string {
	switch a {
	case Cascade:
		return "delete dependent rows with the parent"
	case SetNull:
		return "null out the referencing column"
	case Restrict:
		return "refuse to delete a referenced parent"
	default:
		return types.IllegalDesc
	}
}

// ColumnType is the logical column type, mapped to a concrete SQL type per
// dialect by the DDL generator.
type ColumnType int

const (
	TypeUUID ColumnType = iota + 1
	TypeString
	TypeText
	TypeBool
	TypeInt
	TypeFloat
	TypeTimestamp
)

func (t ColumnType) IsValid() bool {
	return t >= TypeUUID && t <= TypeTimestamp
}

// Column describes a single table column.
type Column struct {
	Name     string
	Type     ColumnType
	Size     int // character limit, TypeString only
	PK       bool
	Nullable bool
	Default  string // raw SQL default expression
}

// ForeignKey describes a reference from a column to a parent table. The
// referenced table must be registered before the referencing one.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  Action
}

// ConstraintName derives the constraint identifier for the owning table.
func (fk ForeignKey) ConstraintName(table string) string {
	return fmt.Sprintf("fk_%s_%s", table, fk.Column)
}

// Index describes a secondary index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// IndexName returns the explicit name or a derived one.
func (ix Index) IndexName(table string) string {
	if ix.Name != "" {
		return ix.Name
	}
	return fmt.Sprintf("ix_%s_%s", table, strings.Join(ix.Columns, "_"))
}

// Table is a complete descriptor of one table: columns, primary key,
// foreign keys and indexes.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
	Indexes     []Index
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the primary key column names in declaration order.
func (t *Table) PrimaryKey() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.PK {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// Validate checks the descriptor for structural problems.
func (t *Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %s has a column with no name", t.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %s.%s", t.Name, c.Name)
		}
		seen[c.Name] = true
		if !c.Type.IsValid() {
			return fmt.Errorf("invalid type for column %s.%s", t.Name, c.Name)
		}
		if c.Type == TypeString && c.Size <= 0 {
			return fmt.Errorf("string column %s.%s requires a size", t.Name, c.Name)
		}
		if c.PK && c.Nullable {
			return fmt.Errorf("primary key column %s.%s cannot be nullable", t.Name, c.Name)
		}
	}
	if len(t.PrimaryKey()) == 0 {
		return fmt.Errorf("table %s has no primary key", t.Name)
	}
	for _, fk := range t.ForeignKeys {
		if !seen[fk.Column] {
			return fmt.Errorf("foreign key %s references unknown column %s.%s",
				fk.ConstraintName(t.Name), t.Name, fk.Column)
		}
		if fk.RefTable == "" || fk.RefColumn == "" {
			return fmt.Errorf("foreign key %s has an empty reference", fk.ConstraintName(t.Name))
		}
		if !fk.OnDelete.IsValid() {
			return fmt.Errorf("invalid delete policy for %s: %d", fk.ConstraintName(t.Name), int(fk.OnDelete))
		}
	}
	for _, ix := range t.Indexes {
		if len(ix.Columns) == 0 {
			return fmt.Errorf("index %s has no columns", ix.IndexName(t.Name))
		}
		for _, col := range ix.Columns {
			if !seen[col] {
				return fmt.Errorf("index %s references unknown column %s.%s",
					ix.IndexName(t.Name), t.Name, col)
			}
		}
	}
	return nil
}

// Registry stores table descriptors in registration order. Registration
// order is creation order: a foreign key may only point at a table that is
// already registered, or at the table itself.
type Registry struct {
	mutex  sync.RWMutex
	tables []*Table
	byName map[string]*Table
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Table)}
}

// Register validates a descriptor and appends it. It fails when the name is
// taken or a foreign key points at an unregistered table.
func (r *Registry) Register(t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.byName[t.Name]; ok {
		return fmt.Errorf("table %s is already registered", t.Name)
	}
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == t.Name {
			continue
		}
		if _, ok := r.byName[fk.RefTable]; !ok {
			return fmt.Errorf("foreign key %s references unregistered table %s",
				fk.ConstraintName(t.Name), fk.RefTable)
		}
	}
	r.tables = append(r.tables, t)
	r.byName[t.Name] = t
	return nil
}

// Tables returns the descriptors in registration order.
func (r *Registry) Tables() []*Table {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	result := make([]*Table, len(r.tables))
	copy(result, r.tables)
	return result
}

// Lookup finds a descriptor by table name.
func (r *Registry) Lookup(name string) (*Table, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Names returns all table names in registration order.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	names := make([]string, len(r.tables))
	for i, t := range r.tables {
		names[i] = t.Name
	}
	return names
}
