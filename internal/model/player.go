package model

import "time"

// PlayerID uniquely identifies a player within a game
type PlayerID string

// Player represents a user's membership in one game.
// A user may have at most one Player per game.
type Player struct {
	ID     PlayerID
	GameID GameID
	UserID UserID
	Name   string
	IsHost bool

	// Order is the player's position in the turn ordering. It is the join
	// order while the game is in the lobby and is re-shuffled exactly once
	// at game start.
	Order int

	CumulativeScore int
	AnsweredCount   int

	JoinedAt time.Time
}
