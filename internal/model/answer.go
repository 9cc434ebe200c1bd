package model

import "time"

// AnswerID uniquely identifies an answer
type AnswerID string

// Answer is one player's answer to a round's question.
// Unique per (QuestionID, PlayerID); resubmission overwrites Text.
type Answer struct {
	ID          AnswerID
	GameID      GameID
	QuestionID  QuestionID
	PlayerID    PlayerID
	RoundNumber int
	Text        string
	CreatedAt   time.Time
}

// VoteID uniquely identifies a vote
type VoteID string

// VoteKindBest is the only vote kind currently played.
const VoteKindBest = "best"

// Vote is one player's vote for an answer in a round.
// Unique per (RoundNumber, QuestionID, VoterID); resubmission overwrites
// the chosen answer.
type Vote struct {
	ID          VoteID
	GameID      GameID
	RoundNumber int
	QuestionID  QuestionID
	AnswerID    AnswerID
	VoterID     PlayerID
	Kind        string
	CreatedAt   time.Time
}
