package database

import (
	"fmt"
	"time"

	"github.com/epitaphe360/cms-backend/config"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type (
	ArticleRepo  = Repo[models.Article, *models.Article]
	EventRepo    = Repo[models.Event, *models.Event]
	PageRepo     = Repo[models.Page, *models.Page]
	CategoryRepo = Repo[models.Category, *models.Category]
	MediaRepo    = Repo[models.Media, *models.Media]
)

type Database struct {
	db           *gorm.DB
	articleRepo  *ArticleRepo
	eventRepo    *EventRepo
	pageRepo     *PageRepo
	categoryRepo *CategoryRepo
	mediaRepo    *MediaRepo
	userRepo     *UserRepo
	auditLogRepo *AuditLogRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		articleRepo:  NewRepo[models.Article](db),
		eventRepo:    NewRepo[models.Event](db),
		pageRepo:     NewRepo[models.Page](db),
		categoryRepo: NewRepo[models.Category](db),
		mediaRepo:    NewRepo[models.Media](db),
		userRepo:     NewUserRepo(db),
		auditLogRepo: NewAuditLogRepo(db),
	}
}

// Open connects to postgres with gorm's logger routed through zerolog.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := log.With().Str("component", "gorm").Logger()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.URL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger: logger.New(&gormLogger, logger.Config{
			SlowThreshold:             time.Duration(cfg.SlowQueryMS) * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	return db, nil
}

// Accessor methods for each repository

func (d Database) DB() *gorm.DB {
	return d.db
}

func (d Database) ArticleRepo() *ArticleRepo {
	return d.articleRepo
}

func (d Database) EventRepo() *EventRepo {
	return d.eventRepo
}

func (d Database) PageRepo() *PageRepo {
	return d.pageRepo
}

func (d Database) CategoryRepo() *CategoryRepo {
	return d.categoryRepo
}

func (d Database) MediaRepo() *MediaRepo {
	return d.mediaRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) AuditLogRepo() *AuditLogRepo {
	return d.auditLogRepo
}
