package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Game errors
	ErrGameNotFound        = errors.New("game not found")
	ErrGameAlreadyStarted  = errors.New("game has already started")
	ErrGameNotStarted      = errors.New("game has not started")
	ErrGameFinished        = errors.New("game is finished")
	ErrWrongPhase          = errors.New("action not valid in current game phase")
	ErrInsufficientPlayers = errors.New("need at least 2 players to start")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrAlreadyJoined  = errors.New("already joined this game")
	ErrNotInGame      = errors.New("not a player in this game")
	ErrNotHost        = errors.New("only the host can perform this action")
	ErrEmptyName      = errors.New("display name must not be empty")

	// Question errors
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionExists marks the losing side of a concurrent round-question
	// creation; callers re-read rather than surface it.
	ErrQuestionExists = errors.New("round question already exists")

	// Answer and vote errors
	ErrAnswerNotFound = errors.New("answer not found")
	ErrEmptyAnswer    = errors.New("answer text must not be empty")

	// Question corpus errors
	ErrEmptyQuestionCorpus = errors.New("question corpus is empty")
)
