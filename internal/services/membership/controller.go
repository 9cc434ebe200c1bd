package membership

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/partyquiz/partyquiz/internal/dependencies/clock"
	"github.com/partyquiz/partyquiz/internal/dependencies/random"
	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/storage"
)

const (
	// GameCodeLength is the length of generated join codes
	GameCodeLength = 6
	// GameCodeAlphabet is the characters used in join codes (avoid confusing chars)
	GameCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller manages game membership: creating games, joining by code,
// and the start transition that freezes the player ordering
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new membership Controller
func NewController(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// CreateGame creates a new game with the given user as host
func (c *Controller) CreateGame(ctx context.Context, host *model.User, displayName string, cfg model.GameConfig) (*model.Game, *model.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, nil, model.ErrEmptyName
	}

	defaults := model.DefaultGameConfig()
	if cfg.QuestionsPerRound <= 0 {
		cfg.QuestionsPerRound = defaults.QuestionsPerRound
	}
	if cfg.TimerSeconds <= 0 {
		cfg.TimerSeconds = defaults.TimerSeconds
	}

	// Generate unique join code
	var code string
	for {
		code = c.random.String(GameCodeLength, GameCodeAlphabet)
		exists, err := c.storage.GameCodeExists(ctx, code)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			break
		}
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:                model.GameID(uuid.NewString()),
		Code:              code,
		HostID:            host.ID,
		QuestionsPerRound: cfg.QuestionsPerRound,
		TimerSeconds:      cfg.TimerSeconds,
		Status:            model.StatusLobby,
		CurrentRound:      0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, nil, err
	}

	player := &model.Player{
		ID:       model.PlayerID(uuid.NewString()),
		GameID:   game.ID,
		UserID:   host.ID,
		Name:     displayName,
		IsHost:   true,
		Order:    0,
		JoinedAt: now,
	}

	if err := c.storage.CreatePlayer(ctx, player); err != nil {
		return nil, nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("code", game.Code),
		slog.Int("questions_per_round", game.QuestionsPerRound),
	)

	return game, player, nil
}

// JoinGame adds a user to a lobby-phase game by its join code. The
// code match is case-insensitive and ignores surrounding whitespace.
func (c *Controller) JoinGame(ctx context.Context, code string, user *model.User, displayName string) (*model.Game, *model.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, nil, model.ErrEmptyName
	}

	code = strings.TrimSpace(code)
	game, err := c.storage.GetGameByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	if game.Started() {
		return nil, nil, model.ErrGameAlreadyStarted
	}

	// Order is the join position; re-shuffled once at start
	players, err := c.storage.GetPlayersForGame(ctx, game.ID)
	if err != nil {
		return nil, nil, err
	}

	player := &model.Player{
		ID:       model.PlayerID(uuid.NewString()),
		GameID:   game.ID,
		UserID:   user.ID,
		Name:     displayName,
		Order:    len(players),
		JoinedAt: c.clock.Now(),
	}

	if err := c.storage.CreatePlayer(ctx, player); err != nil {
		return nil, nil, err
	}

	return game, player, nil
}

// StartGame moves a lobby game into round 1, shuffling the player order
func (c *Controller) StartGame(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	member, err := c.Member(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsHost {
		return nil, model.ErrNotHost
	}

	if game.Started() {
		return nil, model.ErrGameAlreadyStarted
	}

	players, err := c.storage.GetPlayersForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if len(players) < 2 {
		return nil, model.ErrInsufficientPlayers
	}

	// Win the start race before touching the ordering, so the shuffle
	// happens exactly once
	ok, err := c.storage.TransitionRound(ctx, gameID, model.StatusLobby, model.StatusAnswering, 1)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrGameAlreadyStarted
	}

	c.random.Shuffle(len(players), func(i, j int) {
		players[i], players[j] = players[j], players[i]
	})
	for i, p := range players {
		p.Order = i
		if err := c.storage.SavePlayer(ctx, p); err != nil {
			return nil, err
		}
	}

	c.logger.Info("game started",
		slog.String("game_id", string(gameID)),
		slog.Int("player_count", len(players)),
	)

	return c.storage.GetGame(ctx, gameID)
}

// Member resolves the caller's player record within a game
func (c *Controller) Member(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Player, error) {
	player, err := c.storage.GetPlayerByUser(ctx, gameID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, model.ErrNotInGame
		}
		return nil, err
	}
	return player, nil
}

// GetGame retrieves a game by id
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// Players returns the game's players in order
func (c *Controller) Players(ctx context.Context, gameID model.GameID) ([]*model.Player, error) {
	return c.storage.GetPlayersForGame(ctx, gameID)
}
