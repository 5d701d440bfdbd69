package db

import (
	"fmt"
	"sort"

	types "github.com/yungbote/catalog-backend/internal/domain"
	"gorm.io/gorm"
)

type ColumnInfo struct {
	Name     string
	Type     string
	Nullable bool
}

type TableReport struct {
	Table   string
	Exists  bool
	Rows    int64
	Columns []ColumnInfo
}

// InspectTables reports columns and row counts for the named tables, or for
// every table in the database when none are given.
func InspectTables(db *gorm.DB, tables ...string) ([]TableReport, error) {
	m := db.Migrator()
	if len(tables) == 0 {
		all, err := m.GetTables()
		if err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		tables = all
		sort.Strings(tables)
	}
	out := make([]TableReport, 0, len(tables))
	for _, table := range tables {
		rep := TableReport{Table: table, Exists: m.HasTable(table)}
		if !rep.Exists {
			out = append(out, rep)
			continue
		}
		cols, err := m.ColumnTypes(table)
		if err != nil {
			return nil, fmt.Errorf("columns of %s: %w", table, err)
		}
		for _, c := range cols {
			nullable, _ := c.Nullable()
			rep.Columns = append(rep.Columns, ColumnInfo{Name: c.Name(), Type: c.DatabaseTypeName(), Nullable: nullable})
		}
		if err := db.Table(table).Count(&rep.Rows).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out = append(out, rep)
	}
	return out, nil
}

// FixAction describes one additive change applied by FixSchema.
type FixAction struct {
	Table  string
	Change string
}

// FixSchema brings an older database up to the current model without
// dropping anything: it adds assets.notes when missing, creates the note
// history table, then runs the regular additive migration.
func FixSchema(db *gorm.DB) ([]FixAction, error) {
	m := db.Migrator()
	var actions []FixAction

	if m.HasTable(&types.Asset{}) && !m.HasColumn(&types.Asset{}, "Notes") {
		if err := m.AddColumn(&types.Asset{}, "Notes"); err != nil {
			return actions, fmt.Errorf("add assets.notes: %w", err)
		}
		actions = append(actions, FixAction{Table: "assets", Change: "add column notes"})
	}
	if !m.HasTable(&types.AssetNoteHistory{}) {
		actions = append(actions, FixAction{Table: "asset_note_history", Change: "create table"})
	}
	if !m.HasTable(&types.StorageOrphan{}) {
		actions = append(actions, FixAction{Table: "storage_orphans", Change: "create table"})
	} else {
		for _, col := range []struct{ field, name string }{{"RequestID", "request_id"}, {"Route", "route"}} {
			if !m.HasColumn(&types.StorageOrphan{}, col.field) {
				actions = append(actions, FixAction{Table: "storage_orphans", Change: "add column " + col.name})
			}
		}
	}
	if err := AutoMigrateAll(db); err != nil {
		return actions, err
	}
	return actions, nil
}
