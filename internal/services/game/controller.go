package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/partyquiz/partyquiz/internal/dependencies/clock"
	"github.com/partyquiz/partyquiz/internal/dependencies/random"
	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/services/questions"
	"github.com/partyquiz/partyquiz/internal/services/scoring"
	"github.com/partyquiz/partyquiz/internal/storage"
)

// CurrentQuestion is the round question together with the caller's own
// answer, when they have already submitted one this round
type CurrentQuestion struct {
	Question  *model.RoundQuestion
	OwnAnswer *model.Answer
}

// RoundResults is everything shown on the results screen for one round
type RoundResults struct {
	Round     int
	Question  string
	Ranked    []model.RankedAnswer
	Standings []model.Standing
}

// Controller runs the round state machine:
// answering -> reveal -> voting -> results -> (next round | finished).
// There is no per-game lock; every transition is a conditional storage
// write, so concurrent triggers collapse to one effective change.
type Controller struct {
	storage   storage.Storage
	questions *questions.Service
	scoring   *scoring.Service
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	questions *questions.Service,
	scoring *scoring.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		questions: questions,
		scoring:   scoring,
		clock:     clock,
		random:    random,
		logger:    logger,
	}
}

// CurrentQuestion returns the shared question for the game's current
// round, creating it on first access, plus the caller's prior answer so
// a rejoining player can see what they already submitted. Concurrent
// first readers race on the insert; the loser re-reads the winner's
// question.
func (c *Controller) CurrentQuestion(ctx context.Context, gameID model.GameID, userID model.UserID) (*CurrentQuestion, error) {
	game, member, err := c.memberGame(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	if !game.Started() {
		return nil, model.ErrGameNotStarted
	}
	if game.Status == model.StatusFinished || game.RoundsExhausted() {
		return nil, model.ErrGameFinished
	}

	question, err := c.readOrCreateQuestion(ctx, game)
	if err != nil {
		return nil, err
	}

	own, err := c.storage.GetAnswer(ctx, question.ID, member.ID)
	if err != nil && !errors.Is(err, model.ErrAnswerNotFound) {
		return nil, err
	}

	return &CurrentQuestion{Question: question, OwnAnswer: own}, nil
}

// SubmitAnswer records (or overwrites) the caller's answer for the
// current round, auto-advancing to reveal once everyone has answered
func (c *Controller) SubmitAnswer(ctx context.Context, gameID model.GameID, userID model.UserID, text string) (*model.Answer, error) {
	game, member, err := c.memberGame(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	if game.Status != model.StatusAnswering {
		return nil, model.ErrWrongPhase
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrEmptyAnswer
	}

	question, err := c.readOrCreateQuestion(ctx, game)
	if err != nil {
		return nil, err
	}

	answer := &model.Answer{
		ID:          model.AnswerID(uuid.NewString()),
		GameID:      game.ID,
		QuestionID:  question.ID,
		PlayerID:    member.ID,
		RoundNumber: game.CurrentRound,
		Text:        text,
		CreatedAt:   c.clock.Now(),
	}
	if err := c.storage.UpsertAnswer(ctx, answer); err != nil {
		return nil, err
	}

	// Auto-advance when every player has an answer in. Racing submitters
	// may both observe the full count; the conditional write lets only
	// one of them move the game.
	answers, err := c.storage.GetAnswersForQuestion(ctx, question.ID)
	if err != nil {
		return nil, err
	}
	players, err := c.storage.GetPlayersForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if len(answers) >= len(players) {
		moved, err := c.storage.TransitionStatus(ctx, gameID, model.StatusAnswering, model.StatusReveal)
		if err != nil {
			return nil, err
		}
		if moved {
			c.logger.Info("all answers in, revealing",
				slog.String("game_id", string(gameID)),
				slog.Int("round", game.CurrentRound),
			)
		}
	}

	return answer, nil
}

// Reveal returns the round's answers without attribution, in an order
// freshly shuffled per call
func (c *Controller) Reveal(ctx context.Context, gameID model.GameID, userID model.UserID) ([]model.RevealedAnswer, error) {
	game, _, err := c.memberGame(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	if game.Status != model.StatusReveal && game.Status != model.StatusVoting {
		return nil, model.ErrWrongPhase
	}

	question, err := c.storage.GetRoundQuestion(ctx, gameID, game.CurrentRound)
	if err != nil {
		return nil, err
	}

	answers, err := c.storage.GetAnswersForQuestion(ctx, question.ID)
	if err != nil {
		return nil, err
	}

	revealed := make([]model.RevealedAnswer, 0, len(answers))
	for _, a := range answers {
		revealed = append(revealed, model.RevealedAnswer{
			AnswerID: a.ID,
			Text:     a.Text,
		})
	}

	c.random.Shuffle(len(revealed), func(i, j int) {
		revealed[i], revealed[j] = revealed[j], revealed[i]
	})

	return revealed, nil
}

// AdvanceToVoting opens the voting phase. Idempotent: calling it again
// once voting is open succeeds without effect.
func (c *Controller) AdvanceToVoting(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Game, error) {
	game, _, err := c.memberGame(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	if game.Status != model.StatusReveal && game.Status != model.StatusVoting {
		return nil, model.ErrWrongPhase
	}

	if _, err := c.storage.TransitionStatus(ctx, gameID, model.StatusReveal, model.StatusVoting); err != nil {
		return nil, err
	}

	return c.storage.GetGame(ctx, gameID)
}

// SubmitVote records (or changes) the caller's vote, auto-advancing to
// results once every player has voted. Voting for your own answer is
// allowed.
func (c *Controller) SubmitVote(ctx context.Context, gameID model.GameID, userID model.UserID, answerID model.AnswerID) (*model.Vote, error) {
	game, member, err := c.memberGame(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	if game.Status != model.StatusVoting {
		return nil, model.ErrWrongPhase
	}

	question, err := c.storage.GetRoundQuestion(ctx, gameID, game.CurrentRound)
	if err != nil {
		return nil, err
	}

	answer, err := c.storage.GetAnswerByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if answer.QuestionID != question.ID {
		return nil, model.ErrAnswerNotFound
	}

	vote := &model.Vote{
		ID:          model.VoteID(uuid.NewString()),
		GameID:      game.ID,
		RoundNumber: game.CurrentRound,
		QuestionID:  question.ID,
		AnswerID:    answerID,
		VoterID:     member.ID,
		Kind:        model.VoteKindBest,
		CreatedAt:   c.clock.Now(),
	}
	if err := c.storage.UpsertVote(ctx, vote); err != nil {
		return nil, err
	}

	votes, err := c.storage.GetVotesForQuestion(ctx, question.ID)
	if err != nil {
		return nil, err
	}
	players, err := c.storage.GetPlayersForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if len(votes) >= len(players) {
		moved, err := c.storage.TransitionStatus(ctx, gameID, model.StatusVoting, model.StatusResults)
		if err != nil {
			return nil, err
		}
		if moved {
			c.logger.Info("all votes in, showing results",
				slog.String("game_id", string(gameID)),
				slog.Int("round", game.CurrentRound),
			)
		}
	}

	return vote, nil
}

// Results returns the round tallies and standings. The first read after
// voting closes folds the tallies into cumulative scores; repeat reads
// re-derive tallies without re-applying points.
func (c *Controller) Results(ctx context.Context, gameID model.GameID, userID model.UserID) (*RoundResults, error) {
	game, _, err := c.memberGame(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	if game.Status != model.StatusResults {
		return nil, model.ErrWrongPhase
	}

	if err := c.scoring.ApplyRoundScores(ctx, gameID, game.CurrentRound); err != nil {
		return nil, err
	}

	ranked, err := c.scoring.TallyRound(ctx, gameID, game.CurrentRound)
	if err != nil {
		return nil, err
	}

	standings, err := c.scoring.Standings(ctx, gameID)
	if err != nil {
		return nil, err
	}

	question, err := c.storage.GetRoundQuestion(ctx, gameID, game.CurrentRound)
	if err != nil {
		return nil, err
	}

	return &RoundResults{
		Round:     game.CurrentRound,
		Question:  question.PromptText,
		Ranked:    ranked,
		Standings: standings,
	}, nil
}

// NextRound moves the game from results into the next round, or into
// the terminal finished state after the final round. Host only.
func (c *Controller) NextRound(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Game, error) {
	game, member, err := c.memberGame(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsHost {
		return nil, model.ErrNotHost
	}

	if game.Status == model.StatusFinished {
		return nil, model.ErrGameFinished
	}
	if game.Status != model.StatusResults {
		return nil, model.ErrWrongPhase
	}

	next := game.CurrentRound + 1
	target := model.StatusAnswering
	if next > game.QuestionsPerRound {
		target = model.StatusFinished
	}

	ok, err := c.storage.TransitionRound(ctx, gameID, model.StatusResults, target, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrWrongPhase
	}

	if target == model.StatusFinished {
		c.logger.Info("game finished",
			slog.String("game_id", string(gameID)),
			slog.Int("rounds_played", game.QuestionsPerRound),
		)
	}

	return c.storage.GetGame(ctx, gameID)
}

// memberGame loads the game and verifies the caller is a player in it
func (c *Controller) memberGame(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Game, *model.Player, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	member, err := c.storage.GetPlayerByUser(ctx, gameID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, nil, model.ErrNotInGame
		}
		return nil, nil, err
	}

	return game, member, nil
}

// readOrCreateQuestion is the lazy question initializer for the current
// round. Insert-if-absent keeps it single per (game, round).
func (c *Controller) readOrCreateQuestion(ctx context.Context, game *model.Game) (*model.RoundQuestion, error) {
	question, err := c.storage.GetRoundQuestion(ctx, game.ID, game.CurrentRound)
	if err == nil {
		return question, nil
	}
	if !errors.Is(err, model.ErrQuestionNotFound) {
		return nil, err
	}

	prompt, err := c.questions.RandomPrompt(ctx)
	if err != nil {
		return nil, err
	}

	question = &model.RoundQuestion{
		ID:          model.QuestionID(uuid.NewString()),
		GameID:      game.ID,
		RoundNumber: game.CurrentRound,
		PromptID:    prompt.ID,
		PromptText:  prompt.Text,
		Category:    prompt.Category,
		CreatedAt:   c.clock.Now(),
	}

	err = c.storage.CreateRoundQuestion(ctx, question)
	if errors.Is(err, model.ErrQuestionExists) {
		// Lost the creation race; the winner's question is authoritative
		return c.storage.GetRoundQuestion(ctx, game.ID, game.CurrentRound)
	}
	if err != nil {
		return nil, err
	}
	return question, nil
}
