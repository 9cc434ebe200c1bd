package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/storage"
)

// maxTransitionRetries bounds the optimistic retry loop for the
// compare-and-set game operations.
const maxTransitionRetries = 5

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Apply TTL only for guest users
	var ttl time.Duration
	if user.IsGuest() {
		ttl = s.cfg.GuestUserTTL
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), data, ttl)
	if !user.IsGuest() {
		pipe.Set(ctx, emailIndexKey(user.Email), string(user.ID), 0)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	userIDStr, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(userIDStr))
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// Save game and code index together so joins by code never see a
	// dangling pointer
	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL)
	pipe.Set(ctx, codeIndexKey(game.Code), string(game.ID), s.cfg.GameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) GetGameByCode(ctx context.Context, code string) (*model.Game, error) {
	gameIDStr, err := s.client.Get(ctx, codeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	return s.GetGame(ctx, model.GameID(gameIDStr))
}

func (s *Storage) GameCodeExists(ctx context.Context, code string) (bool, error) {
	exists, err := s.client.Exists(ctx, codeIndexKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			return nil
		}
		return err
	}

	players, err := s.GetPlayersForGame(ctx, id)
	if err != nil {
		return err
	}

	questionKeys, err := s.client.SMembers(ctx, gameQuestionsIndexKey(id)).Result()
	if err != nil {
		return err
	}
	voteKeys, err := s.client.SMembers(ctx, gameVotesIndexKey(id)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.Del(ctx, codeIndexKey(game.Code))

	for _, p := range players {
		pipe.Del(ctx, playerKey(p.ID))
		pipe.Del(ctx, memberIndexKey(id, p.UserID))
	}
	pipe.Del(ctx, gamePlayersIndexKey(id))

	for _, qKey := range questionKeys {
		pipe.Del(ctx, qKey)
	}
	pipe.Del(ctx, gameQuestionsIndexKey(id))

	for _, vKey := range voteKeys {
		pipe.Del(ctx, vKey)
	}
	pipe.Del(ctx, gameVotesIndexKey(id))

	// Question-scoped indexes and answers hang off the question records
	for _, qKey := range questionKeys {
		data, err := s.client.Get(ctx, qKey).Bytes()
		if err != nil {
			continue
		}
		var question model.RoundQuestion
		if err := json.Unmarshal(data, &question); err != nil {
			continue
		}
		pipe.Del(ctx, questionIDIndexKey(question.ID))
		pipe.Del(ctx, questionVotesIndexKey(question.ID))

		answerKeys, err := s.client.SMembers(ctx, questionAnswersIndexKey(question.ID)).Result()
		if err == nil {
			for _, aKey := range answerKeys {
				pipe.Del(ctx, aKey)
			}
		}
		pipe.Del(ctx, questionAnswersIndexKey(question.ID))
	}

	_, err = pipe.Exec(ctx)
	return err
}

// Conditional game transitions
//
// All three run a WATCH transaction on the game key so concurrent writers
// race cleanly: exactly one wins the swap, the rest observe ok=false.

func (s *Storage) TransitionStatus(ctx context.Context, id model.GameID, expect, next model.GameStatus) (bool, error) {
	return s.updateGameIf(ctx, id, func(game *model.Game) bool {
		if game.Status != expect {
			return false
		}
		game.Status = next
		return true
	})
}

func (s *Storage) TransitionRound(ctx context.Context, id model.GameID, expect, next model.GameStatus, round int) (bool, error) {
	return s.updateGameIf(ctx, id, func(game *model.Game) bool {
		if game.Status != expect {
			return false
		}
		game.Status = next
		game.CurrentRound = round
		return true
	})
}

func (s *Storage) MarkRoundScored(ctx context.Context, id model.GameID, round int) (bool, error) {
	return s.updateGameIf(ctx, id, func(game *model.Game) bool {
		if game.ScoredRound != round-1 {
			return false
		}
		game.ScoredRound = round
		return true
	})
}

// updateGameIf applies mutate to the stored game only if mutate reports the
// precondition holds, retrying on WATCH conflicts.
func (s *Storage) updateGameIf(ctx context.Context, id model.GameID, mutate func(*model.Game) bool) (bool, error) {
	key := gameKey(id)

	var applied bool
	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrGameNotFound
			}
			return err
		}

		var game model.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return err
		}

		if !mutate(&game) {
			applied = false
			return nil
		}

		updated, err := json.Marshal(&game)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.cfg.GameTTL)
			return nil
		})
		if err != nil {
			return err
		}
		applied = true
		return nil
	}

	for i := 0; i < maxTransitionRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return applied, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return false, err
	}
	return false, redis.TxFailedErr
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// SETNX on the membership key is the uniqueness check: one player per
	// user per game
	ok, err := s.client.SetNX(ctx, memberIndexKey(player.GameID, player.UserID), string(player.ID), s.cfg.GameTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrAlreadyJoined
	}

	pKey := playerKey(player.ID)
	indexKey := gamePlayersIndexKey(player.GameID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, pKey, data, s.cfg.GameTTL)
	pipe.SAdd(ctx, indexKey, pKey)
	pipe.Expire(ctx, indexKey, s.cfg.GameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	pKey := playerKey(player.ID)
	indexKey := gamePlayersIndexKey(player.GameID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, pKey, data, s.cfg.GameTTL)
	pipe.SAdd(ctx, indexKey, pKey)
	pipe.Expire(ctx, indexKey, s.cfg.GameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayerByUser(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Player, error) {
	playerIDStr, err := s.client.Get(ctx, memberIndexKey(gameID, userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetPlayer(ctx, model.PlayerID(playerIDStr))
}

func (s *Storage) GetPlayersForGame(ctx context.Context, gameID model.GameID) ([]*model.Player, error) {
	playerKeys, err := s.client.SMembers(ctx, gamePlayersIndexKey(gameID)).Result()
	if err != nil {
		return nil, err
	}

	if len(playerKeys) == 0 {
		return []*model.Player{}, nil
	}

	values, err := s.client.MGet(ctx, playerKeys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Player may have expired
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue // Skip invalid data
		}
		players = append(players, &player)
	}

	sort.Slice(players, func(i, j int) bool {
		return players[i].Order < players[j].Order
	})

	return players, nil
}

// Round question operations

func (s *Storage) CreateRoundQuestion(ctx context.Context, question *model.RoundQuestion) error {
	data, err := json.Marshal(question)
	if err != nil {
		return err
	}

	qKey := questionKey(question.GameID, question.RoundNumber)

	// SETNX keeps the round question unique: the loser of a creation race
	// re-reads the winner's record
	ok, err := s.client.SetNX(ctx, qKey, data, s.cfg.GameTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrQuestionExists
	}

	indexKey := gameQuestionsIndexKey(question.GameID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, questionIDIndexKey(question.ID), qKey, s.cfg.GameTTL)
	pipe.SAdd(ctx, indexKey, qKey)
	pipe.Expire(ctx, indexKey, s.cfg.GameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoundQuestion(ctx context.Context, gameID model.GameID, round int) (*model.RoundQuestion, error) {
	data, err := s.client.Get(ctx, questionKey(gameID, round)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrQuestionNotFound
		}
		return nil, err
	}

	var question model.RoundQuestion
	if err := json.Unmarshal(data, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *Storage) GetRoundQuestionByID(ctx context.Context, id model.QuestionID) (*model.RoundQuestion, error) {
	qKey, err := s.client.Get(ctx, questionIDIndexKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrQuestionNotFound
		}
		return nil, err
	}

	data, err := s.client.Get(ctx, qKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrQuestionNotFound
		}
		return nil, err
	}

	var question model.RoundQuestion
	if err := json.Unmarshal(data, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

// Answer operations

func (s *Storage) UpsertAnswer(ctx context.Context, answer *model.Answer) error {
	aKey := answerKey(answer.QuestionID, answer.PlayerID)

	// Resubmission keeps the original row identity
	existing, err := s.GetAnswer(ctx, answer.QuestionID, answer.PlayerID)
	if err == nil {
		answer.ID = existing.ID
		answer.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, model.ErrAnswerNotFound) {
		return err
	}

	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}

	indexKey := questionAnswersIndexKey(answer.QuestionID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, aKey, data, s.cfg.GameTTL)
	pipe.Set(ctx, answerIDIndexKey(answer.ID), aKey, s.cfg.GameTTL)
	pipe.SAdd(ctx, indexKey, aKey)
	pipe.Expire(ctx, indexKey, s.cfg.GameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetAnswer(ctx context.Context, questionID model.QuestionID, playerID model.PlayerID) (*model.Answer, error) {
	data, err := s.client.Get(ctx, answerKey(questionID, playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAnswerNotFound
		}
		return nil, err
	}

	var answer model.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (s *Storage) GetAnswerByID(ctx context.Context, id model.AnswerID) (*model.Answer, error) {
	aKey, err := s.client.Get(ctx, answerIDIndexKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAnswerNotFound
		}
		return nil, err
	}

	data, err := s.client.Get(ctx, aKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAnswerNotFound
		}
		return nil, err
	}

	var answer model.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (s *Storage) GetAnswersForQuestion(ctx context.Context, questionID model.QuestionID) ([]*model.Answer, error) {
	answerKeys, err := s.client.SMembers(ctx, questionAnswersIndexKey(questionID)).Result()
	if err != nil {
		return nil, err
	}

	if len(answerKeys) == 0 {
		return []*model.Answer{}, nil
	}

	values, err := s.client.MGet(ctx, answerKeys...).Result()
	if err != nil {
		return nil, err
	}

	answers := make([]*model.Answer, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var answer model.Answer
		if err := json.Unmarshal([]byte(val.(string)), &answer); err != nil {
			continue
		}
		answers = append(answers, &answer)
	}

	sort.Slice(answers, func(i, j int) bool {
		return answers[i].CreatedAt.Before(answers[j].CreatedAt)
	})

	return answers, nil
}

// Vote operations

func (s *Storage) UpsertVote(ctx context.Context, vote *model.Vote) error {
	vKey := voteKey(vote.QuestionID, vote.VoterID)

	// Changing a vote keeps the original row identity
	data, err := s.client.Get(ctx, vKey).Bytes()
	if err == nil {
		var existing model.Vote
		if err := json.Unmarshal(data, &existing); err == nil {
			vote.ID = existing.ID
			vote.CreatedAt = existing.CreatedAt
		}
	} else if !errors.Is(err, redis.Nil) {
		return err
	}

	payload, err := json.Marshal(vote)
	if err != nil {
		return err
	}

	qIndexKey := questionVotesIndexKey(vote.QuestionID)
	gIndexKey := gameVotesIndexKey(vote.GameID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, vKey, payload, s.cfg.GameTTL)
	pipe.SAdd(ctx, qIndexKey, vKey)
	pipe.Expire(ctx, qIndexKey, s.cfg.GameTTL)
	pipe.SAdd(ctx, gIndexKey, vKey)
	pipe.Expire(ctx, gIndexKey, s.cfg.GameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetVotesForQuestion(ctx context.Context, questionID model.QuestionID) ([]*model.Vote, error) {
	return s.votesFromIndex(ctx, questionVotesIndexKey(questionID))
}

func (s *Storage) GetVotesForGame(ctx context.Context, gameID model.GameID) ([]*model.Vote, error) {
	return s.votesFromIndex(ctx, gameVotesIndexKey(gameID))
}

func (s *Storage) votesFromIndex(ctx context.Context, indexKey string) ([]*model.Vote, error) {
	voteKeys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	if len(voteKeys) == 0 {
		return []*model.Vote{}, nil
	}

	values, err := s.client.MGet(ctx, voteKeys...).Result()
	if err != nil {
		return nil, err
	}

	votes := make([]*model.Vote, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var vote model.Vote
		if err := json.Unmarshal([]byte(val.(string)), &vote); err != nil {
			continue
		}
		votes = append(votes, &vote)
	}

	return votes, nil
}

// Question corpus operations

func (s *Storage) GetPrompts(ctx context.Context) ([]model.Prompt, error) {
	data, err := s.client.Get(ctx, promptsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrEmptyQuestionCorpus
		}
		return nil, err
	}

	var prompts []model.Prompt
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

func (s *Storage) SavePrompts(ctx context.Context, prompts []model.Prompt) error {
	data, err := json.Marshal(prompts)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, promptsKey(), data, 0).Err()
}
