package model

import "time"

// Prompt is an entry in the static question corpus
type Prompt struct {
	ID       int    `json:"id"`
	Text     string `json:"question"`
	Category string `json:"category"`
}

// QuestionID uniquely identifies a round question
type QuestionID string

// RoundQuestion is the single shared prompt for one round of a game.
// Unique per (GameID, RoundNumber); created lazily on first access.
type RoundQuestion struct {
	ID          QuestionID
	GameID      GameID
	RoundNumber int
	PromptID    int
	PromptText  string
	Category    string
	CreatedAt   time.Time
}
