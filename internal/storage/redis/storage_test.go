package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/partyquiz/partyquiz/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GuestUserTTL = time.Hour
	cfg.GameTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		PasswordHash: "hash123",
		Name:         "Alice",
		CreatedAt:    time.Now(),
	}

	err := s.storage.SaveUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(user.ID, retrieved.ID)
	s.Equal(user.Name, retrieved.Name)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestGetUserByEmail() {
	user := &model.User{
		ID:    "user-1",
		Email: "alice@example.com",
		Name:  "Alice",
	}
	_ = s.storage.SaveUser(s.ctx, user)

	retrieved, err := s.storage.GetUserByEmail(s.ctx, "Alice@Example.com")
	s.Require().NoError(err)
	s.Equal("user-1", string(retrieved.ID))
}

func (s *StorageSuite) TestGetUserByEmailNotFound() {
	_, err := s.storage.GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestGuestUserTTL() {
	guest := &model.User{ID: "guest-1", Name: "Guesty"}
	registered := &model.User{ID: "registered-1", Email: "bob@example.com", Name: "Bob"}

	_ = s.storage.SaveUser(s.ctx, guest)
	_ = s.storage.SaveUser(s.ctx, registered)

	// Check that guest has TTL and registered doesn't
	guestTTL := s.mini.TTL(userKey(guest.ID))
	registeredTTL := s.mini.TTL(userKey(registered.ID))

	s.True(guestTTL > 0, "Guest user should have TTL")
	s.Equal(time.Duration(0), registeredTTL, "Registered user should not have TTL")
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := &model.Game{
		ID:                "game-1",
		Code:              "AB12CD",
		HostID:            "user-1",
		QuestionsPerRound: 3,
		Status:            model.StatusLobby,
	}

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
	s.Equal(game.Status, retrieved.Status)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGetGameByCode() {
	game := &model.Game{ID: "game-1", Code: "AB12CD", Status: model.StatusLobby}
	_ = s.storage.SaveGame(s.ctx, game)

	retrieved, err := s.storage.GetGameByCode(s.ctx, "ab12cd")
	s.Require().NoError(err)
	s.Equal("game-1", string(retrieved.ID))
}

func (s *StorageSuite) TestGameCodeExists() {
	game := &model.Game{ID: "game-1", Code: "AB12CD", Status: model.StatusLobby}
	_ = s.storage.SaveGame(s.ctx, game)

	exists, err := s.storage.GameCodeExists(s.ctx, "AB12CD")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.GameCodeExists(s.ctx, "ZZZZZZ")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestGameTTL() {
	game := &model.Game{ID: "game-1", Code: "AB12CD", Status: model.StatusLobby}
	_ = s.storage.SaveGame(s.ctx, game)

	ttl := s.mini.TTL(gameKey(game.ID))
	s.True(ttl > 0, "Game should have TTL")
}

func (s *StorageSuite) TestDeleteGameCascades() {
	game := &model.Game{ID: "game-1", Code: "AB12CD", Status: model.StatusAnswering}
	_ = s.storage.SaveGame(s.ctx, game)

	player := &model.Player{ID: "player-1", GameID: "game-1", UserID: "user-1", Name: "Alice"}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, player))

	question := &model.RoundQuestion{ID: "question-1", GameID: "game-1", RoundNumber: 1}
	s.Require().NoError(s.storage.CreateRoundQuestion(s.ctx, question))

	answer := &model.Answer{ID: "answer-1", GameID: "game-1", QuestionID: "question-1", PlayerID: "player-1", Text: "hi"}
	s.Require().NoError(s.storage.UpsertAnswer(s.ctx, answer))

	err := s.storage.DeleteGame(s.ctx, "game-1")
	s.Require().NoError(err)

	_, err = s.storage.GetGame(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.storage.GetGameByCode(s.ctx, "AB12CD")
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.storage.GetPlayer(s.ctx, "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.storage.GetRoundQuestion(s.ctx, "game-1", 1)
	s.ErrorIs(err, model.ErrQuestionNotFound)
	_, err = s.storage.GetAnswer(s.ctx, "question-1", "player-1")
	s.ErrorIs(err, model.ErrAnswerNotFound)
}

// Transition tests

func (s *StorageSuite) TestTransitionStatus() {
	game := &model.Game{ID: "game-1", Code: "AB12CD", Status: model.StatusAnswering}
	_ = s.storage.SaveGame(s.ctx, game)

	ok, err := s.storage.TransitionStatus(s.ctx, "game-1", model.StatusAnswering, model.StatusReveal)
	s.Require().NoError(err)
	s.True(ok)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.StatusReveal, retrieved.Status)
}

func (s *StorageSuite) TestTransitionStatusWrongExpectation() {
	game := &model.Game{ID: "game-1", Code: "AB12CD", Status: model.StatusVoting}
	_ = s.storage.SaveGame(s.ctx, game)

	ok, err := s.storage.TransitionStatus(s.ctx, "game-1", model.StatusAnswering, model.StatusReveal)
	s.Require().NoError(err)
	s.False(ok)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.StatusVoting, retrieved.Status)
}

func (s *StorageSuite) TestTransitionStatusOnlyOneWinner() {
	game := &model.Game{ID: "game-1", Code: "AB12CD", Status: model.StatusAnswering}
	_ = s.storage.SaveGame(s.ctx, game)

	ok1, err := s.storage.TransitionStatus(s.ctx, "game-1", model.StatusAnswering, model.StatusReveal)
	s.Require().NoError(err)
	ok2, err := s.storage.TransitionStatus(s.ctx, "game-1", model.StatusAnswering, model.StatusReveal)
	s.Require().NoError(err)

	s.True(ok1)
	s.False(ok2)
}

func (s *StorageSuite) TestTransitionStatusConcurrent() {
	game := &model.Game{ID: "game-1", Code: "AB12CD", Status: model.StatusAnswering}
	_ = s.storage.SaveGame(s.ctx, game)

	const attempts = 8
	results := make(chan bool, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.storage.TransitionStatus(s.ctx, "game-1", model.StatusAnswering, model.StatusReveal)
			s.NoError(err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	moved := 0
	for ok := range results {
		if ok {
			moved++
		}
	}
	s.Equal(1, moved)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.StatusReveal, retrieved.Status)
}

func (s *StorageSuite) TestTransitionStatusGameNotFound() {
	_, err := s.storage.TransitionStatus(s.ctx, "nonexistent", model.StatusAnswering, model.StatusReveal)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestTransitionRound() {
	game := &model.Game{ID: "game-1", Code: "AB12CD", Status: model.StatusResults, CurrentRound: 1}
	_ = s.storage.SaveGame(s.ctx, game)

	ok, err := s.storage.TransitionRound(s.ctx, "game-1", model.StatusResults, model.StatusAnswering, 2)
	s.Require().NoError(err)
	s.True(ok)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.StatusAnswering, retrieved.Status)
	s.Equal(2, retrieved.CurrentRound)
}

func (s *StorageSuite) TestMarkRoundScored() {
	game := &model.Game{ID: "game-1", Code: "AB12CD", Status: model.StatusResults, CurrentRound: 1, ScoredRound: 0}
	_ = s.storage.SaveGame(s.ctx, game)

	ok, err := s.storage.MarkRoundScored(s.ctx, "game-1", 1)
	s.Require().NoError(err)
	s.True(ok)

	// Second attempt for the same round loses
	ok, err = s.storage.MarkRoundScored(s.ctx, "game-1", 1)
	s.Require().NoError(err)
	s.False(ok)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(1, retrieved.ScoredRound)
}

// Player tests

func (s *StorageSuite) TestCreateAndGetPlayer() {
	player := &model.Player{
		ID:       "player-1",
		GameID:   "game-1",
		UserID:   "user-1",
		Name:     "Alice",
		IsHost:   true,
		JoinedAt: time.Now(),
	}

	err := s.storage.CreatePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.Name, retrieved.Name)
	s.True(retrieved.IsHost)
}

func (s *StorageSuite) TestCreatePlayerAlreadyJoined() {
	player := &model.Player{ID: "player-1", GameID: "game-1", UserID: "user-1", Name: "Alice"}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, player))

	dupe := &model.Player{ID: "player-2", GameID: "game-1", UserID: "user-1", Name: "Alice again"}
	err := s.storage.CreatePlayer(s.ctx, dupe)
	s.ErrorIs(err, model.ErrAlreadyJoined)
}

func (s *StorageSuite) TestCreatePlayerSameUserDifferentGames() {
	p1 := &model.Player{ID: "player-1", GameID: "game-1", UserID: "user-1", Name: "Alice"}
	p2 := &model.Player{ID: "player-2", GameID: "game-2", UserID: "user-1", Name: "Alice"}

	s.Require().NoError(s.storage.CreatePlayer(s.ctx, p1))
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, p2))
}

func (s *StorageSuite) TestGetPlayerByUser() {
	player := &model.Player{ID: "player-1", GameID: "game-1", UserID: "user-1", Name: "Alice"}
	_ = s.storage.CreatePlayer(s.ctx, player)

	retrieved, err := s.storage.GetPlayerByUser(s.ctx, "game-1", "user-1")
	s.Require().NoError(err)
	s.Equal("player-1", string(retrieved.ID))

	_, err = s.storage.GetPlayerByUser(s.ctx, "game-1", "user-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGetPlayersForGameSortedByOrder() {
	p1 := &model.Player{ID: "player-1", GameID: "game-1", UserID: "user-1", Name: "Alice", Order: 2}
	p2 := &model.Player{ID: "player-2", GameID: "game-1", UserID: "user-2", Name: "Bob", Order: 0}
	p3 := &model.Player{ID: "player-3", GameID: "game-1", UserID: "user-3", Name: "Carol", Order: 1}

	_ = s.storage.CreatePlayer(s.ctx, p1)
	_ = s.storage.CreatePlayer(s.ctx, p2)
	_ = s.storage.CreatePlayer(s.ctx, p3)

	players, err := s.storage.GetPlayersForGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal("Bob", players[0].Name)
	s.Equal("Carol", players[1].Name)
	s.Equal("Alice", players[2].Name)
}

func (s *StorageSuite) TestGetPlayersForGameEmpty() {
	players, err := s.storage.GetPlayersForGame(s.ctx, "nonexistent")
	s.Require().NoError(err)
	s.Empty(players)
}

// Round question tests

func (s *StorageSuite) TestCreateAndGetRoundQuestion() {
	question := &model.RoundQuestion{
		ID:          "question-1",
		GameID:      "game-1",
		RoundNumber: 1,
		PromptText:  "What is the worst superpower?",
		CreatedAt:   time.Now(),
	}

	err := s.storage.CreateRoundQuestion(s.ctx, question)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoundQuestion(s.ctx, "game-1", 1)
	s.Require().NoError(err)
	s.Equal(question.PromptText, retrieved.PromptText)

	byID, err := s.storage.GetRoundQuestionByID(s.ctx, "question-1")
	s.Require().NoError(err)
	s.Equal(question.GameID, byID.GameID)
}

func (s *StorageSuite) TestCreateRoundQuestionDuplicate() {
	question := &model.RoundQuestion{ID: "question-1", GameID: "game-1", RoundNumber: 1, PromptText: "first"}
	s.Require().NoError(s.storage.CreateRoundQuestion(s.ctx, question))

	dupe := &model.RoundQuestion{ID: "question-2", GameID: "game-1", RoundNumber: 1, PromptText: "second"}
	err := s.storage.CreateRoundQuestion(s.ctx, dupe)
	s.ErrorIs(err, model.ErrQuestionExists)

	// The winner's record survives
	retrieved, err := s.storage.GetRoundQuestion(s.ctx, "game-1", 1)
	s.Require().NoError(err)
	s.Equal("first", retrieved.PromptText)
}

func (s *StorageSuite) TestGetRoundQuestionNotFound() {
	_, err := s.storage.GetRoundQuestion(s.ctx, "game-1", 99)
	s.ErrorIs(err, model.ErrQuestionNotFound)

	_, err = s.storage.GetRoundQuestionByID(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrQuestionNotFound)
}

// Answer tests

func (s *StorageSuite) TestUpsertAndGetAnswer() {
	answer := &model.Answer{
		ID:          "answer-1",
		GameID:      "game-1",
		QuestionID:  "question-1",
		PlayerID:    "player-1",
		RoundNumber: 1,
		Text:        "flight, but only downward",
		CreatedAt:   time.Now(),
	}

	err := s.storage.UpsertAnswer(s.ctx, answer)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAnswer(s.ctx, "question-1", "player-1")
	s.Require().NoError(err)
	s.Equal(answer.Text, retrieved.Text)

	byID, err := s.storage.GetAnswerByID(s.ctx, "answer-1")
	s.Require().NoError(err)
	s.Equal(answer.Text, byID.Text)
}

func (s *StorageSuite) TestUpsertAnswerOverwritesKeepingID() {
	first := &model.Answer{ID: "answer-1", GameID: "game-1", QuestionID: "question-1", PlayerID: "player-1", Text: "first"}
	s.Require().NoError(s.storage.UpsertAnswer(s.ctx, first))

	second := &model.Answer{ID: "answer-2", GameID: "game-1", QuestionID: "question-1", PlayerID: "player-1", Text: "second"}
	s.Require().NoError(s.storage.UpsertAnswer(s.ctx, second))

	retrieved, err := s.storage.GetAnswer(s.ctx, "question-1", "player-1")
	s.Require().NoError(err)
	s.Equal("second", retrieved.Text)
	s.Equal("answer-1", string(retrieved.ID))

	answers, err := s.storage.GetAnswersForQuestion(s.ctx, "question-1")
	s.Require().NoError(err)
	s.Len(answers, 1)
}

func (s *StorageSuite) TestGetAnswersForQuestion() {
	a1 := &model.Answer{ID: "answer-1", GameID: "game-1", QuestionID: "question-1", PlayerID: "player-1", Text: "one", CreatedAt: time.Now()}
	a2 := &model.Answer{ID: "answer-2", GameID: "game-1", QuestionID: "question-1", PlayerID: "player-2", Text: "two", CreatedAt: time.Now().Add(time.Second)}
	a3 := &model.Answer{ID: "answer-3", GameID: "game-1", QuestionID: "question-2", PlayerID: "player-1", Text: "other question"}

	_ = s.storage.UpsertAnswer(s.ctx, a1)
	_ = s.storage.UpsertAnswer(s.ctx, a2)
	_ = s.storage.UpsertAnswer(s.ctx, a3)

	answers, err := s.storage.GetAnswersForQuestion(s.ctx, "question-1")
	s.Require().NoError(err)
	s.Require().Len(answers, 2)
	s.Equal("one", answers[0].Text)
	s.Equal("two", answers[1].Text)
}

func (s *StorageSuite) TestGetAnswerNotFound() {
	_, err := s.storage.GetAnswer(s.ctx, "question-1", "nonexistent")
	s.ErrorIs(err, model.ErrAnswerNotFound)

	_, err = s.storage.GetAnswerByID(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAnswerNotFound)
}

// Vote tests

func (s *StorageSuite) TestUpsertAndGetVotes() {
	vote := &model.Vote{
		ID:          "vote-1",
		GameID:      "game-1",
		RoundNumber: 1,
		QuestionID:  "question-1",
		AnswerID:    "answer-1",
		VoterID:     "player-2",
		Kind:        model.VoteKindBest,
	}

	err := s.storage.UpsertVote(s.ctx, vote)
	s.Require().NoError(err)

	votes, err := s.storage.GetVotesForQuestion(s.ctx, "question-1")
	s.Require().NoError(err)
	s.Require().Len(votes, 1)
	s.Equal("answer-1", string(votes[0].AnswerID))
}

func (s *StorageSuite) TestUpsertVoteChangesTarget() {
	first := &model.Vote{ID: "vote-1", GameID: "game-1", RoundNumber: 1, QuestionID: "question-1", AnswerID: "answer-1", VoterID: "player-2"}
	s.Require().NoError(s.storage.UpsertVote(s.ctx, first))

	changed := &model.Vote{ID: "vote-2", GameID: "game-1", RoundNumber: 1, QuestionID: "question-1", AnswerID: "answer-3", VoterID: "player-2"}
	s.Require().NoError(s.storage.UpsertVote(s.ctx, changed))

	votes, err := s.storage.GetVotesForQuestion(s.ctx, "question-1")
	s.Require().NoError(err)
	s.Require().Len(votes, 1)
	s.Equal("answer-3", string(votes[0].AnswerID))
	s.Equal("vote-1", string(votes[0].ID))
}

func (s *StorageSuite) TestGetVotesForGame() {
	v1 := &model.Vote{ID: "vote-1", GameID: "game-1", RoundNumber: 1, QuestionID: "question-1", AnswerID: "answer-1", VoterID: "player-1"}
	v2 := &model.Vote{ID: "vote-2", GameID: "game-1", RoundNumber: 2, QuestionID: "question-2", AnswerID: "answer-2", VoterID: "player-1"}
	v3 := &model.Vote{ID: "vote-3", GameID: "game-2", RoundNumber: 1, QuestionID: "question-9", AnswerID: "answer-9", VoterID: "player-9"}

	_ = s.storage.UpsertVote(s.ctx, v1)
	_ = s.storage.UpsertVote(s.ctx, v2)
	_ = s.storage.UpsertVote(s.ctx, v3)

	votes, err := s.storage.GetVotesForGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Len(votes, 2)
}

// Prompt corpus tests

func (s *StorageSuite) TestSaveAndGetPrompts() {
	prompts := []model.Prompt{
		{ID: 1, Text: "What is the worst superpower?", Category: "silly"},
		{ID: 2, Text: "Name a terrible ice cream flavor", Category: "food"},
	}

	err := s.storage.SavePrompts(s.ctx, prompts)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPrompts(s.ctx)
	s.Require().NoError(err)
	s.Equal(prompts, retrieved)
}

func (s *StorageSuite) TestGetPromptsNotLoaded() {
	_, err := s.storage.GetPrompts(s.ctx)
	s.ErrorIs(err, model.ErrEmptyQuestionCorpus)
}

func (s *StorageSuite) TestPromptsNoTTL() {
	_ = s.storage.SavePrompts(s.ctx, []model.Prompt{{ID: 1, Text: "q"}})

	ttl := s.mini.TTL(promptsKey())
	s.Equal(time.Duration(0), ttl, "Prompt corpus should not have TTL")
}
