package redis

import (
	"fmt"
	"strings"

	"github.com/partyquiz/partyquiz/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "partyquiz"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, strings.ToLower(email))
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// codeIndexKey returns the Redis key for the join-code -> game_id index
func codeIndexKey(code string) string {
	return fmt.Sprintf("%s:idx:code:%s", keyPrefix, strings.ToUpper(code))
}

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// memberIndexKey returns the Redis key guarding one-player-per-user-per-game
func memberIndexKey(gameID model.GameID, userID model.UserID) string {
	return fmt.Sprintf("%s:idx:member:%s:%s", keyPrefix, gameID, userID)
}

// gamePlayersIndexKey returns the Redis key for the SET of player ids in a game
func gamePlayersIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:game_players:%s", keyPrefix, gameID)
}

// questionKey returns the Redis key for a RoundQuestion, unique per round
func questionKey(gameID model.GameID, round int) string {
	return fmt.Sprintf("%s:question:%s:%d", keyPrefix, gameID, round)
}

// questionIDIndexKey returns the Redis key for the question_id -> question key index
func questionIDIndexKey(id model.QuestionID) string {
	return fmt.Sprintf("%s:idx:question_id:%s", keyPrefix, id)
}

// gameQuestionsIndexKey returns the Redis key for the SET of question keys in a game
func gameQuestionsIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:game_questions:%s", keyPrefix, gameID)
}

// answerKey returns the Redis key for an Answer, unique per (question, player)
func answerKey(questionID model.QuestionID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:answer:%s:%s", keyPrefix, questionID, playerID)
}

// answerIDIndexKey returns the Redis key for the answer_id -> answer key index
func answerIDIndexKey(id model.AnswerID) string {
	return fmt.Sprintf("%s:idx:answer_id:%s", keyPrefix, id)
}

// questionAnswersIndexKey returns the Redis key for the SET of answer keys for a question
func questionAnswersIndexKey(questionID model.QuestionID) string {
	return fmt.Sprintf("%s:idx:question_answers:%s", keyPrefix, questionID)
}

// voteKey returns the Redis key for a Vote, unique per (question, voter)
func voteKey(questionID model.QuestionID, voterID model.PlayerID) string {
	return fmt.Sprintf("%s:vote:%s:%s", keyPrefix, questionID, voterID)
}

// questionVotesIndexKey returns the Redis key for the SET of vote keys for a question
func questionVotesIndexKey(questionID model.QuestionID) string {
	return fmt.Sprintf("%s:idx:question_votes:%s", keyPrefix, questionID)
}

// gameVotesIndexKey returns the Redis key for the SET of vote keys in a game
func gameVotesIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:game_votes:%s", keyPrefix, gameID)
}

// promptsKey returns the Redis key for the question corpus
func promptsKey() string {
	return fmt.Sprintf("%s:prompts", keyPrefix)
}
