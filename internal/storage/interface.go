package storage

import (
	"context"

	"github.com/partyquiz/partyquiz/internal/model"
)

// Storage defines the interface for data persistence.
//
// No in-process lock serializes operations on a game: concurrent requests
// are reconciled by the store itself. Status changes go through the
// conditional Transition* methods, and the unique-key constraints behind
// CreatePlayer, CreateRoundQuestion, UpsertAnswer and UpsertVote are the
// tie-break for racing writers.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	GetGameByCode(ctx context.Context, code string) (*model.Game, error)
	GameCodeExists(ctx context.Context, code string) (bool, error)
	DeleteGame(ctx context.Context, id model.GameID) error

	// TransitionStatus sets the game's status to next only if it currently
	// equals expect. Returns whether the swap happened.
	TransitionStatus(ctx context.Context, id model.GameID, expect, next model.GameStatus) (bool, error)
	// TransitionRound sets status and current round together, guarded on
	// the expected status.
	TransitionRound(ctx context.Context, id model.GameID, expect, next model.GameStatus, round int) (bool, error)
	// MarkRoundScored advances the game's scored-round marker from round-1
	// to round. Returns false if another caller already advanced it.
	MarkRoundScored(ctx context.Context, id model.GameID, round int) (bool, error)

	// Player operations
	// CreatePlayer fails with ErrAlreadyJoined if the user already has a
	// player in the game.
	CreatePlayer(ctx context.Context, player *model.Player) error
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByUser(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Player, error)
	// GetPlayersForGame returns players sorted by Order.
	GetPlayersForGame(ctx context.Context, gameID model.GameID) ([]*model.Player, error)

	// Round question operations
	// CreateRoundQuestion fails with ErrQuestionExists if a question already
	// exists for (GameID, RoundNumber); the loser of a creation race must
	// re-read with GetRoundQuestion.
	CreateRoundQuestion(ctx context.Context, question *model.RoundQuestion) error
	GetRoundQuestion(ctx context.Context, gameID model.GameID, round int) (*model.RoundQuestion, error)
	GetRoundQuestionByID(ctx context.Context, id model.QuestionID) (*model.RoundQuestion, error)

	// Answer operations
	// UpsertAnswer inserts or overwrites the answer for
	// (QuestionID, PlayerID), preserving the original row identity.
	UpsertAnswer(ctx context.Context, answer *model.Answer) error
	GetAnswer(ctx context.Context, questionID model.QuestionID, playerID model.PlayerID) (*model.Answer, error)
	GetAnswerByID(ctx context.Context, id model.AnswerID) (*model.Answer, error)
	GetAnswersForQuestion(ctx context.Context, questionID model.QuestionID) ([]*model.Answer, error)

	// Vote operations
	// UpsertVote inserts or overwrites the vote for
	// (RoundNumber, QuestionID, VoterID), preserving the row identity.
	UpsertVote(ctx context.Context, vote *model.Vote) error
	GetVotesForQuestion(ctx context.Context, questionID model.QuestionID) ([]*model.Vote, error)
	GetVotesForGame(ctx context.Context, gameID model.GameID) ([]*model.Vote, error)

	// Question corpus operations
	GetPrompts(ctx context.Context) ([]model.Prompt, error)
	SavePrompts(ctx context.Context, prompts []model.Prompt) error
}
