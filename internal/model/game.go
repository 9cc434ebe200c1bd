package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameStatus represents the current phase of a game
type GameStatus string

const (
	StatusLobby     GameStatus = "lobby"     // Waiting for players to join
	StatusAnswering GameStatus = "answering" // Players writing answers to the round's prompt
	StatusReveal    GameStatus = "reveal"    // All answers shown anonymously
	StatusVoting    GameStatus = "voting"    // Players voting for the best answer
	StatusResults   GameStatus = "results"   // Round tallies and standings shown
	StatusFinished  GameStatus = "finished"  // Terminal
)

// GameConfig holds configurable settings chosen at game creation
type GameConfig struct {
	QuestionsPerRound int // Number of rounds played before the game finishes
	TimerSeconds      int // Client-visible countdown; never enforced server-side
}

// DefaultGameConfig returns the default game configuration
func DefaultGameConfig() GameConfig {
	return GameConfig{
		QuestionsPerRound: 3,
		TimerSeconds:      30,
	}
}

// Game represents a single party-game room
type Game struct {
	ID     GameID
	Code   string // 6-char join code, stored uppercase
	HostID UserID

	QuestionsPerRound int
	TimerSeconds      int

	Status       GameStatus
	CurrentRound int // 0 in lobby, 1..QuestionsPerRound while playing

	// ScoredRound is the highest round whose vote tallies have been applied
	// to cumulative player scores. Guards against double-applying points
	// when results are read repeatedly.
	ScoredRound int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Started reports whether the game has left the lobby.
func (g *Game) Started() bool {
	return g.Status != StatusLobby
}

// RoundsExhausted reports whether play has moved past the final round.
func (g *Game) RoundsExhausted() bool {
	return g.CurrentRound > g.QuestionsPerRound
}
