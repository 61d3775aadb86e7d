package models

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
)

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Article{},
		&Event{},
		&Page{},
		&Media{},
		&AuditLog{},
	}
}

// Migrate creates or alters the tables for every model.
func Migrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{SkipDefaultTransaction: true, PrepareStmt: false})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info().Int("models", len(All())).Msg("database migration completed")
	return nil
}

// GenerateQueries writes gorm/gen typed query helpers for the models.
func GenerateQueries(db *gorm.DB, outPath string) {
	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()
	log.Info().Str("outPath", outPath).Msg("query generation complete")
}

// ColumnDrift returns, per table, the database columns no model field maps
// to. Tables that do not exist yet are skipped.
func ColumnDrift(db *gorm.DB) (map[string][]string, error) {
	drift := make(map[string][]string)
	migrator := db.Migrator()

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table
		if !migrator.HasTable(table) {
			continue
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("columns of %s: %w", table, err)
		}

		known := make(map[string]bool, len(stmt.Schema.DBNames))
		for _, name := range stmt.Schema.DBNames {
			known[name] = true
		}

		var unknown []string
		for _, ct := range columnTypes {
			if !known[ct.Name()] {
				unknown = append(unknown, ct.Name())
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			drift[table] = unknown
		}
	}

	return drift, nil
}
