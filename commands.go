package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/epitaphe360/cms-backend/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		if err := models.Migrate(db); err != nil {
			return err
		}

		report, _ := cmd.Flags().GetBool("report")
		if !report {
			return nil
		}
		drift, err := models.ColumnDrift(db)
		if err != nil {
			return err
		}
		for table, columns := range drift {
			log.Warn().Str("table", table).Strs("columns", columns).Msg("Columns without a model field")
		}
		if len(drift) == 0 {
			log.Info().Msg("No column drift")
		}
		return nil
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")

		db, err := openDatabase()
		if err != nil {
			return err
		}

		body, err := json.Marshal(map[string]string{
			"email":    email,
			"name":     name,
			"password": password,
			"role":     string(models.RoleAdmin),
		})
		if err != nil {
			return err
		}

		audit := services.NewAuditRecorder(database.NewAuditLogRepo(db))
		users := services.NewUsers(database.NewUserRepo(db), audit)

		// The command line is attributed to the nil actor in the audit log.
		system := auth.Actor{UserID: uuid.Nil, Role: models.RoleAdmin}
		user, err := users.Create(context.Background(), body, system)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}

		log.Info().Str("userId", user.ID.String()).Str("email", user.Email).Msg("Administrator created")
		return nil
	},
}

var genQueriesCmd = &cobra.Command{
	Use:   "gen-queries",
	Short: "Generate typed gorm query helpers",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		db, err := openDatabase()
		if err != nil {
			return err
		}
		models.GenerateQueries(db, out)
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("report", false, "Report columns that no model field maps to")

	createAdminCmd.Flags().String("email", "", "Administrator email")
	createAdminCmd.Flags().String("name", "", "Display name")
	createAdminCmd.Flags().String("password", "", "Initial password (8 characters or more)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("password")

	genQueriesCmd.Flags().String("out", "./query", "Output directory")
}
