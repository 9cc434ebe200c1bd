package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/partyquiz/partyquiz/internal/dependencies/clock"
	"github.com/partyquiz/partyquiz/internal/dependencies/random"
	"github.com/partyquiz/partyquiz/internal/services/auth"
	"github.com/partyquiz/partyquiz/internal/services/game"
	"github.com/partyquiz/partyquiz/internal/services/membership"
	"github.com/partyquiz/partyquiz/internal/services/questions"
	"github.com/partyquiz/partyquiz/internal/services/scoring"
	"github.com/partyquiz/partyquiz/internal/storage"
	"github.com/partyquiz/partyquiz/internal/storage/memory"
	redisstorage "github.com/partyquiz/partyquiz/internal/storage/redis"
	sqlitestorage "github.com/partyquiz/partyquiz/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	QuestionService      *questions.Service
	ScoringService       *scoring.Service
	GameController       *game.Controller
	MembershipController *membership.Controller
	AuthService          *auth.Service
}

// Config holds configuration for the application factory
type Config struct {
	// QuestionsPath is the path to the prompt corpus JSON file (optional)
	// If empty, prompts must be loaded manually
	QuestionsPath string
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file path (required if StorageType is "sqlite")
	SQLitePath string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.TokenDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	app := newWithDependencies(store, clk, rnd, authCfg, logger)

	if cfg.QuestionsPath != "" {
		if err := app.QuestionService.LoadFromFile(context.Background(), cfg.QuestionsPath); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	// Create services
	questionService := questions.New(store, rnd)
	scoringService := scoring.New(store)
	gameController := game.NewController(store, questionService, scoringService, clk, rnd, logger)
	membershipController := membership.NewController(store, clk, rnd, logger)
	authService := auth.New(store, clk, authCfg)

	return &App{
		Storage:              store,
		Clock:                clk,
		Random:               rnd,
		QuestionService:      questionService,
		ScoringService:       scoringService,
		GameController:       gameController,
		MembershipController: membershipController,
		AuthService:          authService,
	}
}
