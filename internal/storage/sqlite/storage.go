package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface.
// Conditional transitions lean on UPDATE ... WHERE guards and the
// uniqueness constraints in the schema.
type Storage struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			password_hash = excluded.password_hash,
			name = excluded.name
	`, string(user.ID), strings.ToLower(user.Email), user.PasswordHash, user.Name, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	user := &model.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, name, created_at FROM users WHERE id = ?",
		string(id),
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, name, created_at FROM users WHERE email = ? AND email != ''",
		strings.ToLower(email),
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (id, code, host_id, questions_per_round, timer_seconds,
			status, current_round, scored_round, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			current_round = excluded.current_round,
			scored_round = excluded.scored_round,
			updated_at = excluded.updated_at
	`, string(game.ID), strings.ToUpper(game.Code), string(game.HostID),
		game.QuestionsPerRound, game.TimerSeconds,
		string(game.Status), game.CurrentRound, game.ScoredRound,
		game.CreatedAt, game.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (s *Storage) scanGame(row *sql.Row) (*model.Game, error) {
	game := &model.Game{}
	err := row.Scan(&game.ID, &game.Code, &game.HostID,
		&game.QuestionsPerRound, &game.TimerSeconds,
		&game.Status, &game.CurrentRound, &game.ScoredRound,
		&game.CreatedAt, &game.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	return game, nil
}

const gameColumns = `id, code, host_id, questions_per_round, timer_seconds,
	status, current_round, scored_round, created_at, updated_at`

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return s.scanGame(s.db.QueryRowContext(ctx,
		"SELECT "+gameColumns+" FROM games WHERE id = ?", string(id)))
}

func (s *Storage) GetGameByCode(ctx context.Context, code string) (*model.Game, error) {
	return s.scanGame(s.db.QueryRowContext(ctx,
		"SELECT "+gameColumns+" FROM games WHERE code = ?", strings.ToUpper(code)))
}

func (s *Storage) GameCodeExists(ctx context.Context, code string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM games WHERE code = ?", strings.ToUpper(code)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check game code: %w", err)
	}
	return n > 0, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	// Players, questions, answers and votes go with it via ON DELETE CASCADE
	_, err := s.db.ExecContext(ctx, "DELETE FROM games WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// Conditional game transitions
//
// The WHERE guard plus RowsAffected is the compare-and-set: of any number
// of concurrent callers exactly one sees rows > 0.

func (s *Storage) TransitionStatus(ctx context.Context, id model.GameID, expect, next model.GameStatus) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE games SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?",
		string(next), string(id), string(expect))
	if err != nil {
		return false, fmt.Errorf("failed to transition status: %w", err)
	}
	return s.casOutcome(ctx, id, result)
}

func (s *Storage) TransitionRound(ctx context.Context, id model.GameID, expect, next model.GameStatus, round int) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE games SET status = ?, current_round = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?",
		string(next), round, string(id), string(expect))
	if err != nil {
		return false, fmt.Errorf("failed to transition round: %w", err)
	}
	return s.casOutcome(ctx, id, result)
}

func (s *Storage) MarkRoundScored(ctx context.Context, id model.GameID, round int) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE games SET scored_round = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND scored_round = ?",
		round, string(id), round-1)
	if err != nil {
		return false, fmt.Errorf("failed to mark round scored: %w", err)
	}
	return s.casOutcome(ctx, id, result)
}

// casOutcome converts a guarded UPDATE result into (swapped, error),
// distinguishing a lost race from a missing game.
func (s *Storage) casOutcome(ctx context.Context, id model.GameID, result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	if _, err := s.GetGame(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, game_id, user_id, name, is_host, player_order,
			cumulative_score, answered_count, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(player.ID), string(player.GameID), string(player.UserID),
		player.Name, player.IsHost, player.Order,
		player.CumulativeScore, player.AnsweredCount, player.JoinedAt)
	if isUniqueViolation(err) {
		return model.ErrAlreadyJoined
	}
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, game_id, user_id, name, is_host, player_order,
			cumulative_score, answered_count, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			is_host = excluded.is_host,
			player_order = excluded.player_order,
			cumulative_score = excluded.cumulative_score,
			answered_count = excluded.answered_count
	`, string(player.ID), string(player.GameID), string(player.UserID),
		player.Name, player.IsHost, player.Order,
		player.CumulativeScore, player.AnsweredCount, player.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

const playerColumns = `id, game_id, user_id, name, is_host, player_order,
	cumulative_score, answered_count, joined_at`

func (s *Storage) scanPlayer(row *sql.Row) (*model.Player, error) {
	player := &model.Player{}
	err := row.Scan(&player.ID, &player.GameID, &player.UserID, &player.Name,
		&player.IsHost, &player.Order,
		&player.CumulativeScore, &player.AnsweredCount, &player.JoinedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return player, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.scanPlayer(s.db.QueryRowContext(ctx,
		"SELECT "+playerColumns+" FROM players WHERE id = ?", string(id)))
}

func (s *Storage) GetPlayerByUser(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Player, error) {
	return s.scanPlayer(s.db.QueryRowContext(ctx,
		"SELECT "+playerColumns+" FROM players WHERE game_id = ? AND user_id = ?",
		string(gameID), string(userID)))
}

func (s *Storage) GetPlayersForGame(ctx context.Context, gameID model.GameID) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+playerColumns+" FROM players WHERE game_id = ? ORDER BY player_order",
		string(gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	defer rows.Close()

	players := []*model.Player{}
	for rows.Next() {
		player := &model.Player{}
		if err := rows.Scan(&player.ID, &player.GameID, &player.UserID, &player.Name,
			&player.IsHost, &player.Order,
			&player.CumulativeScore, &player.AnsweredCount, &player.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

// Round question operations

func (s *Storage) CreateRoundQuestion(ctx context.Context, question *model.RoundQuestion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_questions (id, game_id, round_number, prompt_id, prompt_text, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, string(question.ID), string(question.GameID), question.RoundNumber,
		question.PromptID, question.PromptText, question.Category, question.CreatedAt)
	if isUniqueViolation(err) {
		return model.ErrQuestionExists
	}
	if err != nil {
		return fmt.Errorf("failed to create round question: %w", err)
	}
	return nil
}

const questionColumns = "id, game_id, round_number, prompt_id, prompt_text, category, created_at"

func (s *Storage) scanQuestion(row *sql.Row) (*model.RoundQuestion, error) {
	question := &model.RoundQuestion{}
	err := row.Scan(&question.ID, &question.GameID, &question.RoundNumber,
		&question.PromptID, &question.PromptText, &question.Category, &question.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan round question: %w", err)
	}
	return question, nil
}

func (s *Storage) GetRoundQuestion(ctx context.Context, gameID model.GameID, round int) (*model.RoundQuestion, error) {
	return s.scanQuestion(s.db.QueryRowContext(ctx,
		"SELECT "+questionColumns+" FROM game_questions WHERE game_id = ? AND round_number = ?",
		string(gameID), round))
}

func (s *Storage) GetRoundQuestionByID(ctx context.Context, id model.QuestionID) (*model.RoundQuestion, error) {
	return s.scanQuestion(s.db.QueryRowContext(ctx,
		"SELECT "+questionColumns+" FROM game_questions WHERE id = ?", string(id)))
}

// Answer operations

func (s *Storage) UpsertAnswer(ctx context.Context, answer *model.Answer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (id, game_id, question_id, player_id, round_number, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (question_id, player_id) DO UPDATE SET
			text = excluded.text
	`, string(answer.ID), string(answer.GameID), string(answer.QuestionID),
		string(answer.PlayerID), answer.RoundNumber, answer.Text, answer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}

	// The conflict path kept the original row; reflect its identity back
	return s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM answers WHERE question_id = ? AND player_id = ?",
		string(answer.QuestionID), string(answer.PlayerID),
	).Scan(&answer.ID, &answer.CreatedAt)
}

const answerColumns = "id, game_id, question_id, player_id, round_number, text, created_at"

func (s *Storage) scanAnswer(row *sql.Row) (*model.Answer, error) {
	answer := &model.Answer{}
	err := row.Scan(&answer.ID, &answer.GameID, &answer.QuestionID,
		&answer.PlayerID, &answer.RoundNumber, &answer.Text, &answer.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrAnswerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan answer: %w", err)
	}
	return answer, nil
}

func (s *Storage) GetAnswer(ctx context.Context, questionID model.QuestionID, playerID model.PlayerID) (*model.Answer, error) {
	return s.scanAnswer(s.db.QueryRowContext(ctx,
		"SELECT "+answerColumns+" FROM answers WHERE question_id = ? AND player_id = ?",
		string(questionID), string(playerID)))
}

func (s *Storage) GetAnswerByID(ctx context.Context, id model.AnswerID) (*model.Answer, error) {
	return s.scanAnswer(s.db.QueryRowContext(ctx,
		"SELECT "+answerColumns+" FROM answers WHERE id = ?", string(id)))
}

func (s *Storage) GetAnswersForQuestion(ctx context.Context, questionID model.QuestionID) ([]*model.Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+answerColumns+" FROM answers WHERE question_id = ? ORDER BY created_at, id",
		string(questionID))
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	defer rows.Close()

	answers := []*model.Answer{}
	for rows.Next() {
		answer := &model.Answer{}
		if err := rows.Scan(&answer.ID, &answer.GameID, &answer.QuestionID,
			&answer.PlayerID, &answer.RoundNumber, &answer.Text, &answer.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, answer)
	}
	return answers, rows.Err()
}

// Vote operations

func (s *Storage) UpsertVote(ctx context.Context, vote *model.Vote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO votes (id, game_id, round_number, question_id, answer_id, voter_id, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (round_number, question_id, voter_id) DO UPDATE SET
			answer_id = excluded.answer_id,
			kind = excluded.kind
	`, string(vote.ID), string(vote.GameID), vote.RoundNumber, string(vote.QuestionID),
		string(vote.AnswerID), string(vote.VoterID), vote.Kind, vote.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}

	return s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM votes WHERE round_number = ? AND question_id = ? AND voter_id = ?",
		vote.RoundNumber, string(vote.QuestionID), string(vote.VoterID),
	).Scan(&vote.ID, &vote.CreatedAt)
}

const voteColumns = "id, game_id, round_number, question_id, answer_id, voter_id, kind, created_at"

func (s *Storage) queryVotes(ctx context.Context, query string, args ...any) ([]*model.Vote, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	votes := []*model.Vote{}
	for rows.Next() {
		vote := &model.Vote{}
		if err := rows.Scan(&vote.ID, &vote.GameID, &vote.RoundNumber, &vote.QuestionID,
			&vote.AnswerID, &vote.VoterID, &vote.Kind, &vote.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}

func (s *Storage) GetVotesForQuestion(ctx context.Context, questionID model.QuestionID) ([]*model.Vote, error) {
	return s.queryVotes(ctx,
		"SELECT "+voteColumns+" FROM votes WHERE question_id = ?", string(questionID))
}

func (s *Storage) GetVotesForGame(ctx context.Context, gameID model.GameID) ([]*model.Vote, error) {
	return s.queryVotes(ctx,
		"SELECT "+voteColumns+" FROM votes WHERE game_id = ?", string(gameID))
}

// Question corpus operations

func (s *Storage) GetPrompts(ctx context.Context) ([]model.Prompt, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, question, category FROM prompts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get prompts: %w", err)
	}
	defer rows.Close()

	var prompts []model.Prompt
	for rows.Next() {
		var p model.Prompt
		if err := rows.Scan(&p.ID, &p.Text, &p.Category); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if prompts == nil {
		return nil, model.ErrEmptyQuestionCorpus
	}
	return prompts, nil
}

func (s *Storage) SavePrompts(ctx context.Context, prompts []model.Prompt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM prompts"); err != nil {
		return fmt.Errorf("failed to clear prompts: %w", err)
	}

	for _, p := range prompts {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO prompts (id, question, category) VALUES (?, ?, ?)",
			p.ID, p.Text, p.Category); err != nil {
			return fmt.Errorf("failed to insert prompt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
