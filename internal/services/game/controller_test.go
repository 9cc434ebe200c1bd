package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/partyquiz/partyquiz/internal/dependencies/mocks"
	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/services/membership"
	"github.com/partyquiz/partyquiz/internal/services/questions"
	"github.com/partyquiz/partyquiz/internal/services/scoring"
	"github.com/partyquiz/partyquiz/internal/storage/memory"
	"github.com/partyquiz/partyquiz/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	membership *membership.Controller
	controller *Controller
	ctx        context.Context

	host  *model.User
	guest *model.User
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	logger := testutil.NopLogger()

	questionService := questions.New(s.storage, s.random)
	s.Require().NoError(questionService.LoadPrompts([]model.Prompt{
		{ID: 1, Text: "What is the worst superpower?", Category: "silly"},
		{ID: 2, Text: "Name a terrible ice cream flavor", Category: "food"},
		{ID: 3, Text: "The best excuse for being late", Category: "life"},
	}))

	scoringService := scoring.New(s.storage)
	s.membership = membership.NewController(s.storage, s.clock, s.random, logger)
	s.controller = NewController(s.storage, questionService, scoringService, s.clock, s.random, logger)
	s.ctx = context.Background()

	s.host = s.createUser("host-u", "Alice")
	s.guest = s.createUser("guest-u", "Bob")
}

func (s *ControllerSuite) createUser(id, name string) *model.User {
	user := &model.User{ID: model.UserID(id), Name: name, CreatedAt: s.clock.Now()}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))
	return user
}

// lobbyGame creates a two player game still waiting in the lobby
func (s *ControllerSuite) lobbyGame(rounds int) *model.Game {
	s.random.QueueString("AB12CD")
	game, _, err := s.membership.CreateGame(s.ctx, s.host, "Alice", model.GameConfig{QuestionsPerRound: rounds})
	s.Require().NoError(err)
	_, _, err = s.membership.JoinGame(s.ctx, game.Code, s.guest, "Bob")
	s.Require().NoError(err)
	return game
}

// startedGame creates a two player game in round 1, status answering
func (s *ControllerSuite) startedGame(rounds int) *model.Game {
	game := s.lobbyGame(rounds)
	started, err := s.membership.StartGame(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)
	return started
}

// answeredGame drives a started game to the reveal phase
func (s *ControllerSuite) answeredGame(rounds int) *model.Game {
	game := s.startedGame(rounds)
	_, err := s.controller.SubmitAnswer(s.ctx, game.ID, s.host.ID, "answer from alice")
	s.Require().NoError(err)
	s.clock.Advance(time.Second)
	_, err = s.controller.SubmitAnswer(s.ctx, game.ID, s.guest.ID, "answer from bob")
	s.Require().NoError(err)
	return s.mustGame(game.ID)
}

// votingGame drives a started game to the voting phase
func (s *ControllerSuite) votingGame(rounds int) *model.Game {
	game := s.answeredGame(rounds)
	_, err := s.controller.AdvanceToVoting(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)
	return s.mustGame(game.ID)
}

func (s *ControllerSuite) mustGame(id model.GameID) *model.Game {
	game, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	return game
}

func (s *ControllerSuite) answerOf(gameID model.GameID, user *model.User) *model.Answer {
	game := s.mustGame(gameID)
	question, err := s.storage.GetRoundQuestion(s.ctx, gameID, game.CurrentRound)
	s.Require().NoError(err)
	member, err := s.storage.GetPlayerByUser(s.ctx, gameID, user.ID)
	s.Require().NoError(err)
	answer, err := s.storage.GetAnswer(s.ctx, question.ID, member.ID)
	s.Require().NoError(err)
	return answer
}

// CurrentQuestion tests

func (s *ControllerSuite) TestCurrentQuestionCreatedOnce() {
	game := s.startedGame(3)

	s.random.QueueIntn(1)
	q1, err := s.controller.CurrentQuestion(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)
	s.Equal("Name a terrible ice cream flavor", q1.Question.PromptText)
	s.Equal(1, q1.Question.RoundNumber)
	s.Nil(q1.OwnAnswer)

	// Second reader gets the same question, no new draw
	q2, err := s.controller.CurrentQuestion(s.ctx, game.ID, s.guest.ID)
	s.Require().NoError(err)
	s.Equal(q1.Question.ID, q2.Question.ID)
}

func (s *ControllerSuite) TestCurrentQuestionIncludesOwnAnswer() {
	game := s.startedGame(3)

	s.random.QueueIntn(1)
	submitted, err := s.controller.SubmitAnswer(s.ctx, game.ID, s.host.ID, "rocky road to nowhere")
	s.Require().NoError(err)

	// The submitter sees their answer on re-read; the other player does not
	q, err := s.controller.CurrentQuestion(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)
	s.Require().NotNil(q.OwnAnswer)
	s.Equal(submitted.ID, q.OwnAnswer.ID)
	s.Equal("rocky road to nowhere", q.OwnAnswer.Text)

	other, err := s.controller.CurrentQuestion(s.ctx, game.ID, s.guest.ID)
	s.Require().NoError(err)
	s.Nil(other.OwnAnswer)
}

func (s *ControllerSuite) TestCurrentQuestionNotStarted() {
	game := s.lobbyGame(3)

	_, err := s.controller.CurrentQuestion(s.ctx, game.ID, s.host.ID)
	s.ErrorIs(err, model.ErrGameNotStarted)
}

func (s *ControllerSuite) TestCurrentQuestionOutsider() {
	game := s.startedGame(3)
	outsider := s.createUser("outsider-u", "Mallory")

	_, err := s.controller.CurrentQuestion(s.ctx, game.ID, outsider.ID)
	s.ErrorIs(err, model.ErrNotInGame)
}

func (s *ControllerSuite) TestCurrentQuestionUnknownGame() {
	_, err := s.controller.CurrentQuestion(s.ctx, "nonexistent", s.host.ID)
	s.ErrorIs(err, model.ErrGameNotFound)
}

// SubmitAnswer tests

func (s *ControllerSuite) TestSubmitAnswer() {
	game := s.startedGame(3)

	answer, err := s.controller.SubmitAnswer(s.ctx, game.ID, s.host.ID, "  my answer  ")
	s.Require().NoError(err)
	s.Equal("my answer", answer.Text)
	s.Equal(1, answer.RoundNumber)

	// One answer in, one pending: still answering
	s.Equal(model.StatusAnswering, s.mustGame(game.ID).Status)
}

func (s *ControllerSuite) TestSubmitAnswerEmpty() {
	game := s.startedGame(3)

	_, err := s.controller.SubmitAnswer(s.ctx, game.ID, s.host.ID, "   ")
	s.ErrorIs(err, model.ErrEmptyAnswer)
}

func (s *ControllerSuite) TestSubmitAnswerWrongPhase() {
	game := s.lobbyGame(3)

	_, err := s.controller.SubmitAnswer(s.ctx, game.ID, s.host.ID, "too early")
	s.ErrorIs(err, model.ErrWrongPhase)
}

func (s *ControllerSuite) TestSubmitAnswerResubmissionOverwrites() {
	game := s.startedGame(3)

	first, err := s.controller.SubmitAnswer(s.ctx, game.ID, s.host.ID, "first")
	s.Require().NoError(err)
	second, err := s.controller.SubmitAnswer(s.ctx, game.ID, s.host.ID, "second")
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	stored := s.answerOf(game.ID, s.host)
	s.Equal("second", stored.Text)

	// Resubmission doesn't count as a second answerer
	s.Equal(model.StatusAnswering, s.mustGame(game.ID).Status)
}

func (s *ControllerSuite) TestSubmitAnswerAutoAdvancesToReveal() {
	game := s.startedGame(3)

	_, err := s.controller.SubmitAnswer(s.ctx, game.ID, s.host.ID, "from alice")
	s.Require().NoError(err)
	_, err = s.controller.SubmitAnswer(s.ctx, game.ID, s.guest.ID, "from bob")
	s.Require().NoError(err)

	s.Equal(model.StatusReveal, s.mustGame(game.ID).Status)
}

// Reveal tests

func (s *ControllerSuite) TestRevealAnonymousAndShuffled() {
	game := s.answeredGame(3)

	// Answers arrive sorted by submission time; force the swap
	s.random.QueueIntn(0)
	revealed, err := s.controller.Reveal(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)
	s.Require().Len(revealed, 2)
	s.Equal("answer from bob", revealed[0].Text)
	s.Equal("answer from alice", revealed[1].Text)
}

func (s *ControllerSuite) TestRevealWrongPhase() {
	game := s.startedGame(3)

	_, err := s.controller.Reveal(s.ctx, game.ID, s.host.ID)
	s.ErrorIs(err, model.ErrWrongPhase)
}

func (s *ControllerSuite) TestRevealStillReadableDuringVoting() {
	game := s.votingGame(3)

	revealed, err := s.controller.Reveal(s.ctx, game.ID, s.guest.ID)
	s.Require().NoError(err)
	s.Len(revealed, 2)
}

// AdvanceToVoting tests

func (s *ControllerSuite) TestAdvanceToVoting() {
	game := s.answeredGame(3)

	advanced, err := s.controller.AdvanceToVoting(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusVoting, advanced.Status)
}

func (s *ControllerSuite) TestAdvanceToVotingIdempotent() {
	game := s.answeredGame(3)

	_, err := s.controller.AdvanceToVoting(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)

	// A second trigger is harmless
	advanced, err := s.controller.AdvanceToVoting(s.ctx, game.ID, s.guest.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusVoting, advanced.Status)
}

func (s *ControllerSuite) TestAdvanceToVotingWrongPhase() {
	game := s.startedGame(3)

	_, err := s.controller.AdvanceToVoting(s.ctx, game.ID, s.host.ID)
	s.ErrorIs(err, model.ErrWrongPhase)
}

// SubmitVote tests

func (s *ControllerSuite) TestSubmitVoteAutoAdvancesToResults() {
	game := s.votingGame(3)
	bobAnswer := s.answerOf(game.ID, s.guest)
	aliceAnswer := s.answerOf(game.ID, s.host)

	_, err := s.controller.SubmitVote(s.ctx, game.ID, s.host.ID, bobAnswer.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusVoting, s.mustGame(game.ID).Status)

	_, err = s.controller.SubmitVote(s.ctx, game.ID, s.guest.ID, aliceAnswer.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusResults, s.mustGame(game.ID).Status)
}

func (s *ControllerSuite) TestSubmitVoteSelfVoteAllowed() {
	game := s.votingGame(3)
	own := s.answerOf(game.ID, s.host)

	vote, err := s.controller.SubmitVote(s.ctx, game.ID, s.host.ID, own.ID)
	s.Require().NoError(err)
	s.Equal(own.ID, vote.AnswerID)
}

func (s *ControllerSuite) TestSubmitVoteChangeBeforeClose() {
	game := s.votingGame(3)
	bobAnswer := s.answerOf(game.ID, s.guest)
	aliceAnswer := s.answerOf(game.ID, s.host)

	first, err := s.controller.SubmitVote(s.ctx, game.ID, s.host.ID, bobAnswer.ID)
	s.Require().NoError(err)
	changed, err := s.controller.SubmitVote(s.ctx, game.ID, s.host.ID, aliceAnswer.ID)
	s.Require().NoError(err)
	s.Equal(first.ID, changed.ID)
	s.Equal(aliceAnswer.ID, changed.AnswerID)
}

func (s *ControllerSuite) TestSubmitVoteWrongPhase() {
	game := s.answeredGame(3)
	bobAnswer := s.answerOf(game.ID, s.guest)

	_, err := s.controller.SubmitVote(s.ctx, game.ID, s.host.ID, bobAnswer.ID)
	s.ErrorIs(err, model.ErrWrongPhase)
}

func (s *ControllerSuite) TestSubmitVoteAnswerFromAnotherRound() {
	game := s.votingGame(3)

	_, err := s.controller.SubmitVote(s.ctx, game.ID, s.host.ID, "no-such-answer")
	s.ErrorIs(err, model.ErrAnswerNotFound)
}

// Results tests

func (s *ControllerSuite) resultsGame(rounds int) *model.Game {
	game := s.votingGame(rounds)
	bobAnswer := s.answerOf(game.ID, s.guest)
	_, err := s.controller.SubmitVote(s.ctx, game.ID, s.host.ID, bobAnswer.ID)
	s.Require().NoError(err)
	_, err = s.controller.SubmitVote(s.ctx, game.ID, s.guest.ID, bobAnswer.ID)
	s.Require().NoError(err)
	return s.mustGame(game.ID)
}

func (s *ControllerSuite) TestResults() {
	game := s.resultsGame(3)

	results, err := s.controller.Results(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)
	s.Equal(1, results.Round)
	s.Require().Len(results.Ranked, 2)

	// Bob's answer swept the votes
	s.Equal("Bob", results.Ranked[0].PlayerName)
	s.Equal(2, results.Ranked[0].Votes)
	s.Equal("Alice", results.Ranked[1].PlayerName)
	s.Equal(0, results.Ranked[1].Votes)

	s.Require().Len(results.Standings, 2)
	s.Equal("Bob", results.Standings[0].Name)
	s.Equal(2, results.Standings[0].CumulativeScore)
}

func (s *ControllerSuite) TestResultsRepeatedReadsScoreOnce() {
	game := s.resultsGame(3)

	for i := 0; i < 3; i++ {
		results, err := s.controller.Results(s.ctx, game.ID, s.guest.ID)
		s.Require().NoError(err)
		s.Equal(2, results.Standings[0].CumulativeScore)
	}
}

func (s *ControllerSuite) TestResultsWrongPhase() {
	game := s.votingGame(3)

	_, err := s.controller.Results(s.ctx, game.ID, s.host.ID)
	s.ErrorIs(err, model.ErrWrongPhase)
}

// NextRound tests

func (s *ControllerSuite) TestNextRound() {
	game := s.resultsGame(3)

	advanced, err := s.controller.NextRound(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusAnswering, advanced.Status)
	s.Equal(2, advanced.CurrentRound)
}

func (s *ControllerSuite) TestNextRoundNotHost() {
	game := s.resultsGame(3)

	_, err := s.controller.NextRound(s.ctx, game.ID, s.guest.ID)
	s.ErrorIs(err, model.ErrNotHost)
}

func (s *ControllerSuite) TestNextRoundWrongPhase() {
	game := s.votingGame(3)

	_, err := s.controller.NextRound(s.ctx, game.ID, s.host.ID)
	s.ErrorIs(err, model.ErrWrongPhase)
}

func (s *ControllerSuite) TestNextRoundBeyondFinalFinishes() {
	game := s.resultsGame(1)

	finished, err := s.controller.NextRound(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusFinished, finished.Status)
	s.Equal(2, finished.CurrentRound)
	s.True(finished.RoundsExhausted())
}

func (s *ControllerSuite) TestFinishedIsTerminal() {
	game := s.resultsGame(1)

	_, err := s.controller.NextRound(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)

	_, err = s.controller.NextRound(s.ctx, game.ID, s.host.ID)
	s.ErrorIs(err, model.ErrGameFinished)

	_, err = s.controller.CurrentQuestion(s.ctx, game.ID, s.host.ID)
	s.ErrorIs(err, model.ErrGameFinished)

	_, err = s.controller.SubmitAnswer(s.ctx, game.ID, s.host.ID, "too late")
	s.ErrorIs(err, model.ErrWrongPhase)
}

// New round starts clean

func (s *ControllerSuite) TestNextRoundGetsFreshQuestion() {
	game := s.resultsGame(3)
	firstQuestion, err := s.storage.GetRoundQuestion(s.ctx, game.ID, 1)
	s.Require().NoError(err)

	_, err = s.controller.NextRound(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)

	s.random.QueueIntn(2)
	current, err := s.controller.CurrentQuestion(s.ctx, game.ID, s.host.ID)
	s.Require().NoError(err)
	s.Equal(2, current.Question.RoundNumber)
	s.NotEqual(firstQuestion.ID, current.Question.ID)
	s.Nil(current.OwnAnswer)

	// Round 2 opens with no answers
	answers, err := s.storage.GetAnswersForQuestion(s.ctx, current.Question.ID)
	s.Require().NoError(err)
	s.Empty(answers)
}
