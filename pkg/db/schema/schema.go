// Package schema discovers which tables and columns the connected database
// actually has. Deployments migrate at different paces, so every adaptive
// statement in the repository decides what to read and write based on these
// probes instead of assuming the full schema.
package schema

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// Introspector answers existence questions against the live store.
type Introspector interface {
	HasTable(name string) bool
	HasColumn(table, column string) bool
}

// Capabilities memoizes introspection results for the process lifetime.
// Entries are written at most once per key; concurrent first probes may race
// but compute the same value, so no lock guards the fast path.
type Capabilities struct {
	probe   Introspector
	tables  sync.Map // table name -> bool
	columns sync.Map // "table.column" -> bool
}

// New builds a capability cache over the provided introspector.
func New(probe Introspector) *Capabilities {
	return &Capabilities{probe: probe}
}

// NewFromGorm builds a capability cache over GORM's migrator.
func NewFromGorm(db *gorm.DB) *Capabilities {
	return New(gormIntrospector{db: db})
}

// HasTable reports whether the table exists. Introspection failures degrade
// to false.
func (c *Capabilities) HasTable(name string) bool {
	if cached, ok := c.tables.Load(name); ok {
		return cached.(bool)
	}
	exists := c.safeHasTable(name)
	c.tables.Store(name, exists)
	return exists
}

// HasColumn reports whether the column exists on the table. A missing table
// reports false for every column. Introspection failures degrade to false.
func (c *Capabilities) HasColumn(table, column string) bool {
	key := table + "." + column
	if cached, ok := c.columns.Load(key); ok {
		return cached.(bool)
	}
	exists := c.HasTable(table) && c.safeHasColumn(table, column)
	c.columns.Store(key, exists)
	return exists
}

func (c *Capabilities) safeHasTable(name string) (exists bool) {
	defer func() {
		if recover() != nil {
			exists = false
		}
	}()
	if c.probe == nil {
		return false
	}
	return c.probe.HasTable(name)
}

func (c *Capabilities) safeHasColumn(table, column string) (exists bool) {
	defer func() {
		if recover() != nil {
			exists = false
		}
	}()
	if c.probe == nil {
		return false
	}
	return c.probe.HasColumn(table, column)
}

type gormIntrospector struct {
	db *gorm.DB
}

func (g gormIntrospector) HasTable(name string) bool {
	return g.db.Migrator().HasTable(name)
}

func (g gormIntrospector) HasColumn(table, column string) bool {
	return g.db.Migrator().HasColumn(table, column)
}

var _ Introspector = gormIntrospector{}

// String summarizes the cached capability set, useful in startup logs.
func (c *Capabilities) String() string {
	tables := 0
	c.tables.Range(func(_, _ any) bool { tables++; return true })
	columns := 0
	c.columns.Range(func(_, _ any) bool { columns++; return true })
	return fmt.Sprintf("schema capabilities: %d tables, %d columns probed", tables, columns)
}
