package model

// RevealedAnswer is an answer as shown during the reveal phase:
// no player attribution, randomized order.
type RevealedAnswer struct {
	AnswerID AnswerID
	Text     string
}

// RankedAnswer is an answer with its vote tally, attributed once voting
// has closed.
type RankedAnswer struct {
	AnswerID   AnswerID
	PlayerID   PlayerID
	PlayerName string
	Text       string
	Votes      int
}

// Standing is a player's cumulative position on the scoreboard.
type Standing struct {
	PlayerID        PlayerID
	Name            string
	CumulativeScore int
	AnsweredCount   int
}
