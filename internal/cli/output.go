package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case Game:
		o.printGame(v)
	case Question:
		o.printQuestion(v)
	case Answer:
		o.printAnswer(v)
	case Reveal:
		o.printReveal(v)
	case Vote:
		o.printVote(v)
	case Results:
		o.printResults(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	IsGuest bool   `json:"is_guest"`
}

// AuthResult combines user and token
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Player response type
type Player struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	IsHost          bool   `json:"is_host"`
	Order           int    `json:"order"`
	CumulativeScore int    `json:"cumulative_score"`
	AnsweredCount   int    `json:"answered_count"`
}

// Game response type
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

// Question response type
type Question struct {
	ID         string  `json:"id"`
	Round      int     `json:"round"`
	Text       string  `json:"text"`
	Category   string  `json:"category,omitempty"`
	YourAnswer *Answer `json:"your_answer,omitempty"`
}

// Answer response type
type Answer struct {
	ID    string `json:"id"`
	Round int    `json:"round"`
	Text  string `json:"text"`
}

// RevealedAnswer response type
type RevealedAnswer struct {
	AnswerID string `json:"answer_id"`
	Text     string `json:"text"`
}

// Reveal response type
type Reveal struct {
	Answers []RevealedAnswer `json:"answers"`
}

// Vote response type
type Vote struct {
	ID       string `json:"id"`
	AnswerID string `json:"answer_id"`
	Round    int    `json:"round"`
}

// RankedAnswer response type
type RankedAnswer struct {
	AnswerID   string `json:"answer_id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Text       string `json:"text"`
	Votes      int    `json:"votes"`
}

// Standing response type
type Standing struct {
	PlayerID        string `json:"player_id"`
	Name            string `json:"name"`
	CumulativeScore int    `json:"cumulative_score"`
	AnsweredCount   int    `json:"answered_count"`
}

// Results response type
type Results struct {
	Round     int            `json:"round"`
	Question  string         `json:"question"`
	Ranked    []RankedAnswer `json:"ranked"`
	Standings []Standing     `json:"standings"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	guestStr := "no"
	if u.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("User: %s (%s)\n", u.Name, u.ID)
	if u.Email != "" {
		fmt.Printf("Email: %s\n", u.Email)
	}
	fmt.Printf("Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.Token)
}

func (o *Output) printGame(g Game) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Code: %s\n", g.Code)
	fmt.Printf("Status: %s\n", g.Status)
	if g.CurrentRound > 0 {
		fmt.Printf("Round: %d of %d\n", g.CurrentRound, g.QuestionsPerRound)
	} else {
		fmt.Printf("Rounds: %d\n", g.QuestionsPerRound)
	}
	if len(g.Players) > 0 {
		fmt.Printf("Players (%d):\n", len(g.Players))
		for _, p := range g.Players {
			hostStr := ""
			if p.IsHost {
				hostStr = " [host]"
			}
			fmt.Printf("  - %s: %d points%s\n", p.Name, p.CumulativeScore, hostStr)
		}
	}
}

func (o *Output) printQuestion(q Question) {
	fmt.Printf("Round %d question:\n", q.Round)
	fmt.Printf("  %s\n", q.Text)
	if q.Category != "" {
		fmt.Printf("Category: %s\n", q.Category)
	}
	if q.YourAnswer != nil {
		fmt.Printf("Your answer: %s\n", q.YourAnswer.Text)
	}
}

func (o *Output) printAnswer(a Answer) {
	fmt.Printf("Answer submitted for round %d:\n", a.Round)
	fmt.Printf("  %s\n", a.Text)
}

func (o *Output) printReveal(r Reveal) {
	fmt.Printf("Answers (%d):\n", len(r.Answers))
	for i, a := range r.Answers {
		fmt.Printf("  %d. %s  (id: %s)\n", i+1, a.Text, a.AnswerID)
	}
}

func (o *Output) printVote(v Vote) {
	fmt.Printf("Vote recorded for answer %s\n", v.AnswerID)
}

func (o *Output) printResults(r Results) {
	fmt.Printf("Round %d results\n", r.Round)
	fmt.Printf("Question: %s\n", r.Question)
	fmt.Println("Answers:")
	for i, a := range r.Ranked {
		fmt.Printf("  %d. %q by %s - %d votes\n", i+1, a.Text, a.PlayerName, a.Votes)
	}
	fmt.Println("Standings:")
	for i, s := range r.Standings {
		fmt.Printf("  %d. %s: %d points\n", i+1, s.Name, s.CumulativeScore)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
