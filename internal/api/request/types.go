package request

// CreateGuestRequest is the request body for creating a guest user
type CreateGuestRequest struct {
	Name string `json:"name"`
}

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	DisplayName       string `json:"display_name"`
	QuestionsPerRound int    `json:"questions_per_round,omitempty"`
	TimerSeconds      int    `json:"timer_seconds,omitempty"`
}

// JoinGameRequest is the request body for joining a game by code
type JoinGameRequest struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// SubmitAnswerRequest is the request body for submitting an answer
type SubmitAnswerRequest struct {
	Text string `json:"text"`
}

// SubmitVoteRequest is the request body for voting on an answer
type SubmitVoteRequest struct {
	AnswerID string `json:"answer_id"`
}
