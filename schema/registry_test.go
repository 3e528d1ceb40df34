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
	"strings"
	"testing"
)

func validTable(name string) *Table {
	return &Table{
		Name: name,
		Columns: []Column{
			{Name: "id", Type: TypeUUID, PK: true},
			{Name: "label", Type: TypeString, Size: 255},
		},
	}
}

func TestActionValues(t *testing.T) {
	cases := []struct {
		action Action
		sql    string
		name   string
		number int
	}{
		{Cascade, "CASCADE", "cascade", 1},
		{SetNull, "SET NULL", "set_null", 2},
		{Restrict, "RESTRICT", "restrict", 3},
		{Action(0), "UNKNOWN", "unknown", -1},
		{Action(99), "UNKNOWN", "unknown", -1},
	}
	for _, c := range cases {
		if got := c.action.String(); got != c.sql {
			t.Errorf("Action(%d).String() = %q, want %q", int(c.action), got, c.sql)
		}
		if got := c.action.Name(); got != c.name {
			t.Errorf("Action(%d).Name() = %q, want %q", int(c.action), got, c.name)
		}
		if got := c.action.Number(); got != c.number {
			t.Errorf("Action(%d).Number() = %d, want %d", int(c.action), got, c.number)
		}
	}
}

func TestTableValidate(t *testing.T) {
	cases := []struct {
		name    string
		table   *Table
		wantErr string
	}{
		{
			name:    "empty name",
			table:   &Table{Columns: []Column{{Name: "id", Type: TypeUUID, PK: true}}},
			wantErr: "table name cannot be empty",
		},
		{
			name:    "no columns",
			table:   &Table{Name: "empty"},
			wantErr: "has no columns",
		},
		{
			name: "unnamed column",
			table: &Table{Name: "bad", Columns: []Column{
				{Name: "id", Type: TypeUUID, PK: true},
				{Type: TypeText},
			}},
			wantErr: "column with no name",
		},
		{
			name: "duplicate column",
			table: &Table{Name: "bad", Columns: []Column{
				{Name: "id", Type: TypeUUID, PK: true},
				{Name: "id", Type: TypeText},
			}},
			wantErr: "duplicate column",
		},
		{
			name: "invalid type",
			table: &Table{Name: "bad", Columns: []Column{
				{Name: "id", Type: TypeUUID, PK: true},
				{Name: "junk", Type: ColumnType(0)},
			}},
			wantErr: "invalid type",
		},
		{
			name: "string without size",
			table: &Table{Name: "bad", Columns: []Column{
				{Name: "id", Type: TypeUUID, PK: true},
				{Name: "label", Type: TypeString},
			}},
			wantErr: "requires a size",
		},
		{
			name: "nullable primary key",
			table: &Table{Name: "bad", Columns: []Column{
				{Name: "id", Type: TypeUUID, PK: true, Nullable: true},
			}},
			wantErr: "cannot be nullable",
		},
		{
			name: "no primary key",
			table: &Table{Name: "bad", Columns: []Column{
				{Name: "label", Type: TypeText},
			}},
			wantErr: "has no primary key",
		},
		{
			name: "foreign key on unknown column",
			table: &Table{
				Name:        "bad",
				Columns:     []Column{{Name: "id", Type: TypeUUID, PK: true}},
				ForeignKeys: []ForeignKey{{Column: "owner_id", RefTable: "users", RefColumn: "id", OnDelete: Cascade}},
			},
			wantErr: "references unknown column",
		},
		{
			name: "foreign key with empty reference",
			table: &Table{
				Name:        "bad",
				Columns:     []Column{{Name: "id", Type: TypeUUID, PK: true}},
				ForeignKeys: []ForeignKey{{Column: "id", OnDelete: Cascade}},
			},
			wantErr: "empty reference",
		},
		{
			name: "foreign key with bad delete policy",
			table: &Table{
				Name:        "bad",
				Columns:     []Column{{Name: "id", Type: TypeUUID, PK: true}},
				ForeignKeys: []ForeignKey{{Column: "id", RefTable: "users", RefColumn: "id"}},
			},
			wantErr: "invalid delete policy",
		},
		{
			name: "index without columns",
			table: &Table{
				Name:    "bad",
				Columns: []Column{{Name: "id", Type: TypeUUID, PK: true}},
				Indexes: []Index{{Name: "ix_bad_nothing"}},
			},
			wantErr: "has no columns",
		},
		{
			name: "index on unknown column",
			table: &Table{
				Name:    "bad",
				Columns: []Column{{Name: "id", Type: TypeUUID, PK: true}},
				Indexes: []Index{{Columns: []string{"nope"}}},
			},
			wantErr: "references unknown column",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.table.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", c.wantErr)
			}
			if !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("Validate() = %q, want error containing %q", err, c.wantErr)
			}
		})
	}

	if err := validTable("good").Validate(); err != nil {
		t.Fatalf("valid table rejected: %v", err)
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(validTable("users")); err != nil {
		t.Fatalf("register users error: %v", err)
	}
	if err := r.Register(validTable("users")); err == nil {
		t.Fatal("duplicate registration should fail")
	}

	orphan := validTable("orders")
	orphan.Columns = append(orphan.Columns, Column{Name: "account_id", Type: TypeUUID})
	orphan.ForeignKeys = []ForeignKey{{Column: "account_id", RefTable: "accounts", RefColumn: "id", OnDelete: Cascade}}
	if err := r.Register(orphan); err == nil {
		t.Fatal("foreign key to an unregistered table should fail")
	} else if !strings.Contains(err.Error(), "unregistered table") {
		t.Fatalf("unexpected error: %v", err)
	}

	child := validTable("posts")
	child.Columns = append(child.Columns, Column{Name: "user_id", Type: TypeUUID})
	child.ForeignKeys = []ForeignKey{{Column: "user_id", RefTable: "users", RefColumn: "id", OnDelete: Cascade}}
	if err := r.Register(child); err != nil {
		t.Fatalf("register posts error: %v", err)
	}

	tree := validTable("folders")
	tree.Columns = append(tree.Columns, Column{Name: "parent_id", Type: TypeUUID, Nullable: true})
	tree.ForeignKeys = []ForeignKey{{Column: "parent_id", RefTable: "folders", RefColumn: "id", OnDelete: Cascade}}
	if err := r.Register(tree); err != nil {
		t.Fatalf("self reference should be allowed: %v", err)
	}

	names := r.Names()
	want := []string{"users", "posts", "folders"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}

	if _, ok := r.Lookup("posts"); !ok {
		t.Fatal("Lookup(posts) missed a registered table")
	}
	if _, ok := r.Lookup("orders"); ok {
		t.Fatal("Lookup(orders) found a rejected table")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	if r != Default() {
		t.Fatal("Default() should return the same registry")
	}

	tables := r.Tables()
	if len(tables) != 30 {
		t.Fatalf("platform registry has %d tables, want 30", len(tables))
	}

	// Registration order doubles as creation order, every foreign key
	// target must appear at or before its referencing table.
	pos := make(map[string]int, len(tables))
	for i, tab := range tables {
		pos[tab.Name] = i
	}
	for i, tab := range tables {
		for _, fkc := range tab.ForeignKeys {
			ref, ok := pos[fkc.RefTable]
			if !ok {
				t.Errorf("%s: foreign key target %s is not registered", tab.Name, fkc.RefTable)
				continue
			}
			if ref > i {
				t.Errorf("%s: foreign key target %s is registered later", tab.Name, fkc.RefTable)
			}
		}
	}

	users, ok := r.Lookup("users")
	if !ok {
		t.Fatal("users table not registered")
	}
	if pk := users.PrimaryKey(); len(pk) != 1 || pk[0] != "id" {
		t.Fatalf("users primary key is %v, want [id]", pk)
	}
	if _, ok := users.Column("hashed_password"); !ok {
		t.Fatal("users table is missing hashed_password")
	}

	members, ok := r.Lookup("team_members")
	if !ok {
		t.Fatal("team_members table not registered")
	}
	if pk := members.PrimaryKey(); len(pk) != 2 {
		t.Fatalf("team_members primary key is %v, want a composite key", pk)
	}
}
