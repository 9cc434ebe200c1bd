package scoring

import (
	"context"
	"sort"

	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/storage"
)

// Service derives vote tallies and applies them to cumulative scores.
// Tallies are always re-computed from the vote ledger; the cumulative
// application is guarded so it happens exactly once per round no matter
// how many times results are read.
type Service struct {
	storage storage.Storage
}

// New creates a new scoring Service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// TallyRound computes the ranked answers for a round from the vote ledger
func (s *Service) TallyRound(ctx context.Context, gameID model.GameID, round int) ([]model.RankedAnswer, error) {
	question, err := s.storage.GetRoundQuestion(ctx, gameID, round)
	if err != nil {
		return nil, err
	}

	answers, err := s.storage.GetAnswersForQuestion(ctx, question.ID)
	if err != nil {
		return nil, err
	}

	votes, err := s.storage.GetVotesForQuestion(ctx, question.ID)
	if err != nil {
		return nil, err
	}

	counts := make(map[model.AnswerID]int)
	for _, v := range votes {
		counts[v.AnswerID]++
	}

	players, err := s.storage.GetPlayersForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	names := make(map[model.PlayerID]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	ranked := make([]model.RankedAnswer, 0, len(answers))
	for _, a := range answers {
		ranked = append(ranked, model.RankedAnswer{
			AnswerID:   a.ID,
			PlayerID:   a.PlayerID,
			PlayerName: names[a.PlayerID],
			Text:       a.Text,
			Votes:      counts[a.ID],
		})
	}

	// Most votes first; submission order breaks ties
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Votes > ranked[j].Votes
	})

	return ranked, nil
}

// ApplyRoundScores folds a round's tallies into cumulative player scores.
// The scoredRound guard makes this a no-op for every caller but the first.
func (s *Service) ApplyRoundScores(ctx context.Context, gameID model.GameID, round int) error {
	ok, err := s.storage.MarkRoundScored(ctx, gameID, round)
	if err != nil {
		return err
	}
	if !ok {
		// Already applied for this round
		return nil
	}

	ranked, err := s.TallyRound(ctx, gameID, round)
	if err != nil {
		return err
	}

	for _, r := range ranked {
		player, err := s.storage.GetPlayer(ctx, r.PlayerID)
		if err != nil {
			return err
		}
		player.CumulativeScore += r.Votes
		player.AnsweredCount++
		if err := s.storage.SavePlayer(ctx, player); err != nil {
			return err
		}
	}

	return nil
}

// Standings returns the scoreboard, highest cumulative score first
func (s *Service) Standings(ctx context.Context, gameID model.GameID) ([]model.Standing, error) {
	players, err := s.storage.GetPlayersForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	standings := make([]model.Standing, 0, len(players))
	for _, p := range players {
		standings = append(standings, model.Standing{
			PlayerID:        p.ID,
			Name:            p.Name,
			CumulativeScore: p.CumulativeScore,
			AnsweredCount:   p.AnsweredCount,
		})
	}

	// Players arrive sorted by turn order, which breaks score ties
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].CumulativeScore > standings[j].CumulativeScore
	})

	return standings, nil
}
