package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Rows are copied on the way in and out, so callers never share a
// struct with the store.
type Storage struct {
	mu sync.RWMutex

	users      map[model.UserID]*model.User
	emailIndex map[string]model.UserID

	games     map[model.GameID]*model.Game
	codeIndex map[string]model.GameID

	players       map[model.PlayerID]*model.Player
	memberIndex   map[memberKey]model.PlayerID
	questions     map[questionKey]*model.RoundQuestion
	questionIndex map[model.QuestionID]questionKey
	answers       map[answerKey]*model.Answer
	answerIndex   map[model.AnswerID]answerKey
	votes         map[voteKey]*model.Vote

	prompts []model.Prompt
}

type memberKey struct {
	gameID model.GameID
	userID model.UserID
}

type questionKey struct {
	gameID model.GameID
	round  int
}

type answerKey struct {
	questionID model.QuestionID
	playerID   model.PlayerID
}

type voteKey struct {
	questionID model.QuestionID
	voterID    model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		emailIndex:    make(map[string]model.UserID),
		games:         make(map[model.GameID]*model.Game),
		codeIndex:     make(map[string]model.GameID),
		players:       make(map[model.PlayerID]*model.Player),
		memberIndex:   make(map[memberKey]model.PlayerID),
		questions:     make(map[questionKey]*model.RoundQuestion),
		questionIndex: make(map[model.QuestionID]questionKey),
		answers:       make(map[answerKey]*model.Answer),
		answerIndex:   make(map[model.AnswerID]answerKey),
		votes:         make(map[voteKey]*model.Vote),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *user
	s.users[user.ID] = &stored
	if user.Email != "" {
		s.emailIndex[strings.ToLower(user.Email)] = user.ID
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *game
	s.games[game.ID] = &stored
	s.codeIndex[strings.ToUpper(game.Code)] = game.ID
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getGameLocked(id)
}

func (s *Storage) getGameLocked(id model.GameID) (*model.Game, error) {
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	copied := *game
	return &copied, nil
}

func (s *Storage) GetGameByCode(ctx context.Context, code string) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codeIndex[strings.ToUpper(code)]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return s.getGameLocked(id)
}

func (s *Storage) GameCodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codeIndex[strings.ToUpper(code)]
	return ok, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[id]
	if !ok {
		return nil
	}
	delete(s.codeIndex, strings.ToUpper(game.Code))
	delete(s.games, id)

	// Cascade to all dependents
	for pid, p := range s.players {
		if p.GameID == id {
			delete(s.memberIndex, memberKey{gameID: id, userID: p.UserID})
			delete(s.players, pid)
		}
	}
	for key, q := range s.questions {
		if key.gameID == id {
			delete(s.questionIndex, q.ID)
			delete(s.questions, key)
		}
	}
	for key, a := range s.answers {
		if a.GameID == id {
			delete(s.answerIndex, a.ID)
			delete(s.answers, key)
		}
	}
	for key, v := range s.votes {
		if v.GameID == id {
			delete(s.votes, key)
		}
	}
	return nil
}

func (s *Storage) TransitionStatus(ctx context.Context, id model.GameID, expect, next model.GameStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return false, model.ErrGameNotFound
	}
	if game.Status != expect {
		return false, nil
	}
	game.Status = next
	return true, nil
}

func (s *Storage) TransitionRound(ctx context.Context, id model.GameID, expect, next model.GameStatus, round int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return false, model.ErrGameNotFound
	}
	if game.Status != expect {
		return false, nil
	}
	game.Status = next
	game.CurrentRound = round
	return true, nil
}

func (s *Storage) MarkRoundScored(ctx context.Context, id model.GameID, round int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return false, model.ErrGameNotFound
	}
	if game.ScoredRound != round-1 {
		return false, nil
	}
	game.ScoredRound = round
	return true, nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey{gameID: player.GameID, userID: player.UserID}
	if _, ok := s.memberIndex[key]; ok {
		return model.ErrAlreadyJoined
	}
	stored := *player
	s.players[player.ID] = &stored
	s.memberIndex[key] = player.ID
	return nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *player
	s.players[player.ID] = &stored
	s.memberIndex[memberKey{gameID: player.GameID, userID: player.UserID}] = player.ID
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

func (s *Storage) GetPlayerByUser(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.memberIndex[memberKey{gameID: gameID, userID: userID}]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

func (s *Storage) GetPlayersForGame(ctx context.Context, gameID model.GameID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var players []*model.Player
	for _, p := range s.players {
		if p.GameID == gameID {
			copied := *p
			players = append(players, &copied)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].Order < players[j].Order
	})
	return players, nil
}

// Round question operations

func (s *Storage) CreateRoundQuestion(ctx context.Context, question *model.RoundQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := questionKey{gameID: question.GameID, round: question.RoundNumber}
	if _, ok := s.questions[key]; ok {
		return model.ErrQuestionExists
	}
	stored := *question
	s.questions[key] = &stored
	s.questionIndex[question.ID] = key
	return nil
}

func (s *Storage) GetRoundQuestion(ctx context.Context, gameID model.GameID, round int) (*model.RoundQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[questionKey{gameID: gameID, round: round}]
	if !ok {
		return nil, model.ErrQuestionNotFound
	}
	copied := *question
	return &copied, nil
}

func (s *Storage) GetRoundQuestionByID(ctx context.Context, id model.QuestionID) (*model.RoundQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.questionIndex[id]
	if !ok {
		return nil, model.ErrQuestionNotFound
	}
	question, ok := s.questions[key]
	if !ok {
		return nil, model.ErrQuestionNotFound
	}
	copied := *question
	return &copied, nil
}

// Answer operations

func (s *Storage) UpsertAnswer(ctx context.Context, answer *model.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := answerKey{questionID: answer.QuestionID, playerID: answer.PlayerID}
	if existing, ok := s.answers[key]; ok {
		existing.Text = answer.Text
		answer.ID = existing.ID
		return nil
	}
	stored := *answer
	s.answers[key] = &stored
	s.answerIndex[answer.ID] = key
	return nil
}

func (s *Storage) GetAnswer(ctx context.Context, questionID model.QuestionID, playerID model.PlayerID) (*model.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[answerKey{questionID: questionID, playerID: playerID}]
	if !ok {
		return nil, model.ErrAnswerNotFound
	}
	copied := *answer
	return &copied, nil
}

func (s *Storage) GetAnswerByID(ctx context.Context, id model.AnswerID) (*model.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.answerIndex[id]
	if !ok {
		return nil, model.ErrAnswerNotFound
	}
	answer, ok := s.answers[key]
	if !ok {
		return nil, model.ErrAnswerNotFound
	}
	copied := *answer
	return &copied, nil
}

func (s *Storage) GetAnswersForQuestion(ctx context.Context, questionID model.QuestionID) ([]*model.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var answers []*model.Answer
	for key, a := range s.answers {
		if key.questionID == questionID {
			copied := *a
			answers = append(answers, &copied)
		}
	}
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].CreatedAt.Before(answers[j].CreatedAt)
	})
	return answers, nil
}

// Vote operations

func (s *Storage) UpsertVote(ctx context.Context, vote *model.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey{questionID: vote.QuestionID, voterID: vote.VoterID}
	if existing, ok := s.votes[key]; ok {
		existing.AnswerID = vote.AnswerID
		existing.Kind = vote.Kind
		vote.ID = existing.ID
		return nil
	}
	stored := *vote
	s.votes[key] = &stored
	return nil
}

func (s *Storage) GetVotesForQuestion(ctx context.Context, questionID model.QuestionID) ([]*model.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var votes []*model.Vote
	for key, v := range s.votes {
		if key.questionID == questionID {
			copied := *v
			votes = append(votes, &copied)
		}
	}
	return votes, nil
}

func (s *Storage) GetVotesForGame(ctx context.Context, gameID model.GameID) ([]*model.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var votes []*model.Vote
	for _, v := range s.votes {
		if v.GameID == gameID {
			copied := *v
			votes = append(votes, &copied)
		}
	}
	return votes, nil
}

// Question corpus operations

func (s *Storage) GetPrompts(ctx context.Context) ([]model.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.prompts == nil {
		return nil, model.ErrEmptyQuestionCorpus
	}
	result := make([]model.Prompt, len(s.prompts))
	copy(result, s.prompts)
	return result, nil
}

func (s *Storage) SavePrompts(ctx context.Context, prompts []model.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = make([]model.Prompt, len(prompts))
	copy(s.prompts, prompts)
	return nil
}
