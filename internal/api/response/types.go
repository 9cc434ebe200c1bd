package response

import (
	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/services/game"
)

// User represents a user in API responses
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	IsGuest bool   `json:"is_guest"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:      string(u.ID),
		Name:    u.Name,
		Email:   u.Email,
		IsGuest: u.IsGuest(),
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Player represents a game member in API responses
type Player struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	IsHost          bool   `json:"is_host"`
	Order           int    `json:"order"`
	CumulativeScore int    `json:"cumulative_score"`
	AnsweredCount   int    `json:"answered_count"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:              string(p.ID),
		UserID:          string(p.UserID),
		Name:            p.Name,
		IsHost:          p.IsHost,
		Order:           p.Order,
		CumulativeScore: p.CumulativeScore,
		AnsweredCount:   p.AnsweredCount,
	}
}

// Game represents a game in API responses
type Game struct {
	ID                string   `json:"id"`
	Code              string   `json:"code"`
	HostID            string   `json:"host_id"`
	Status            string   `json:"status"`
	CurrentRound      int      `json:"current_round"`
	QuestionsPerRound int      `json:"questions_per_round"`
	TimerSeconds      int      `json:"timer_seconds"`
	Players           []Player `json:"players,omitempty"`
}

// GameFromModel converts a model.Game to a response Game
func GameFromModel(g *model.Game, players []*model.Player) Game {
	resp := Game{
		ID:                string(g.ID),
		Code:              g.Code,
		HostID:            string(g.HostID),
		Status:            string(g.Status),
		CurrentRound:      g.CurrentRound,
		QuestionsPerRound: g.QuestionsPerRound,
		TimerSeconds:      g.TimerSeconds,
	}
	for _, p := range players {
		resp.Players = append(resp.Players, PlayerFromModel(p))
	}
	return resp
}

// Question represents the current round's question. YourAnswer carries
// the caller's own submission once they have answered, so a client
// reconnecting mid-round can restore it.
type Question struct {
	ID         string  `json:"id"`
	Round      int     `json:"round"`
	Text       string  `json:"text"`
	Category   string  `json:"category,omitempty"`
	YourAnswer *Answer `json:"your_answer,omitempty"`
}

// QuestionFromModel converts the current-round question with the
// caller's own answer attached when present
func QuestionFromModel(cq *game.CurrentQuestion) Question {
	resp := Question{
		ID:       string(cq.Question.ID),
		Round:    cq.Question.RoundNumber,
		Text:     cq.Question.PromptText,
		Category: cq.Question.Category,
	}
	if cq.OwnAnswer != nil {
		own := AnswerFromModel(cq.OwnAnswer)
		resp.YourAnswer = &own
	}
	return resp
}

// Answer is the caller's own submitted answer
type Answer struct {
	ID    string `json:"id"`
	Round int    `json:"round"`
	Text  string `json:"text"`
}

// AnswerFromModel converts a model.Answer
func AnswerFromModel(a *model.Answer) Answer {
	return Answer{
		ID:    string(a.ID),
		Round: a.RoundNumber,
		Text:  a.Text,
	}
}

// RevealedAnswer is an answer shown without attribution
type RevealedAnswer struct {
	AnswerID string `json:"answer_id"`
	Text     string `json:"text"`
}

// RevealResponse is the anonymous answer list for the reveal phase
type RevealResponse struct {
	Answers []RevealedAnswer `json:"answers"`
}

// RevealResponseFromModel converts revealed answers
func RevealResponseFromModel(answers []model.RevealedAnswer) RevealResponse {
	resp := RevealResponse{Answers: make([]RevealedAnswer, len(answers))}
	for i, a := range answers {
		resp.Answers[i] = RevealedAnswer{AnswerID: string(a.AnswerID), Text: a.Text}
	}
	return resp
}

// Vote is the caller's recorded vote
type Vote struct {
	ID       string `json:"id"`
	AnswerID string `json:"answer_id"`
	Round    int    `json:"round"`
}

// VoteFromModel converts a model.Vote
func VoteFromModel(v *model.Vote) Vote {
	return Vote{
		ID:       string(v.ID),
		AnswerID: string(v.AnswerID),
		Round:    v.RoundNumber,
	}
}

// RankedAnswer is an attributed answer with its vote tally
type RankedAnswer struct {
	AnswerID   string `json:"answer_id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Text       string `json:"text"`
	Votes      int    `json:"votes"`
}

// Standing is a player's cumulative scoreboard position
type Standing struct {
	PlayerID        string `json:"player_id"`
	Name            string `json:"name"`
	CumulativeScore int    `json:"cumulative_score"`
	AnsweredCount   int    `json:"answered_count"`
}

// ResultsResponse is the results screen for one round
type ResultsResponse struct {
	Round     int            `json:"round"`
	Question  string         `json:"question"`
	Ranked    []RankedAnswer `json:"ranked"`
	Standings []Standing     `json:"standings"`
}

// ResultsResponseFromModel converts round results
func ResultsResponseFromModel(r *game.RoundResults) ResultsResponse {
	resp := ResultsResponse{
		Round:     r.Round,
		Question:  r.Question,
		Ranked:    make([]RankedAnswer, len(r.Ranked)),
		Standings: make([]Standing, len(r.Standings)),
	}
	for i, a := range r.Ranked {
		resp.Ranked[i] = RankedAnswer{
			AnswerID:   string(a.AnswerID),
			PlayerID:   string(a.PlayerID),
			PlayerName: a.PlayerName,
			Text:       a.Text,
			Votes:      a.Votes,
		}
	}
	for i, s := range r.Standings {
		resp.Standings[i] = Standing{
			PlayerID:        string(s.PlayerID),
			Name:            s.Name,
			CumulativeScore: s.CumulativeScore,
			AnsweredCount:   s.AnsweredCount,
		}
	}
	return resp
}
