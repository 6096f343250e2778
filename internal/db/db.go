package db

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/types"
	"github.com/pathwise/engage-backend/internal/utils"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New connects to Postgres when POSTGRES_HOST is set and falls back to a
// local sqlite file otherwise, so development and tests need no database
// server.
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	host := utils.GetEnv("POSTGRES_HOST", "", log)
	if host == "" {
		path := utils.GetEnv("SQLITE_PATH", "engage.db", log)
		serviceLog.Info("POSTGRES_HOST not set, using sqlite", "path", path)
		gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &Service{db: gdb, log: serviceLog}, nil
	}

	port := utils.GetEnv("POSTGRES_PORT", "5432", log)
	user := utils.GetEnv("POSTGRES_USER", "postgres", log)
	password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	name := utils.GetEnv("POSTGRES_NAME", "engage", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to Postgres: %w", err)
	}
	return &Service{db: gdb, log: serviceLog}, nil
}

// NewInMemory opens an isolated in-memory sqlite database. Test helper; the
// named shared cache keeps gorm's pooled connections on one database while
// separate calls stay independent.
func NewInMemory(log *logger.Logger) (*Service, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open in-memory sqlite: %w", err)
	}
	return &Service{db: gdb, log: log.With("service", "DBService")}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.UserProgression{},
		&types.UserStreak{},
		&types.ConceptMastery{},
		&types.UserMomentum{},
		&types.NudgeState{},
		&types.LearningSession{},
		&types.RewardEvent{},
		&types.QuickChallenge{},
		&types.ChallengeAttempt{},
		&types.EngagementEvent{},
		&types.UserFocus{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
