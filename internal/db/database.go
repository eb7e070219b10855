package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dustinober1/pmp-application-sub002/internal/logger"
	"github.com/dustinober1/pmp-application-sub002/internal/types"
	"github.com/dustinober1/pmp-application-sub002/internal/utils"
)

type DatabaseService struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// NewDatabaseService connects to the configured store. Postgres is the
// production driver; DB_DRIVER=sqlite gives a file-backed store for local
// development without a postgres instance.
func NewDatabaseService(log *logger.Logger) (*DatabaseService, error) {
	serviceLog := log.With("service", "DatabaseService")

	driver := strings.ToLower(utils.GetEnv("DB_DRIVER", "postgres", log))

	var (
		gormDB *gorm.DB
		err    error
	)
	switch driver {
	case "sqlite", "sqlite3":
		path := utils.GetEnv("SQLITE_PATH", "pmp.db", log)
		serviceLog.Info("Connecting to sqlite...", "path", path)
		gormDB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			serviceLog.Error("Failed to open sqlite database", "error", err)
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
	case "postgres":
		host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "pmp", log)

		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

		serviceLog.Info("Connecting to Postgres...")
		gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
		if err != nil {
			serviceLog.Error("Failed to connect to Postgres", "error", err)
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
			return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	return &DatabaseService{db: gormDB, driver: driver, log: serviceLog}, nil
}

func (s *DatabaseService) DB() *gorm.DB { return s.db }

func (s *DatabaseService) Driver() string { return s.driver }

func (s *DatabaseService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.ExamDomain{},
		&types.Question{},
		&types.QuestionAttempt{},
		&types.DomainMastery{},
		&types.Flashcard{},
		&types.FlashcardReview{},
		&types.Insight{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
