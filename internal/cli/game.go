package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameQuestionCmd())
	cmd.AddCommand(newGameAnswerCmd())
	cmd.AddCommand(newGameRevealCmd())
	cmd.AddCommand(newGameAdvanceCmd())
	cmd.AddCommand(newGameVoteCmd())
	cmd.AddCommand(newGameResultsCmd())
	cmd.AddCommand(newGameNextCmd())
	cmd.AddCommand(newGameWatchCmd())

	return cmd
}

func newGameCreateCmd() *cobra.Command {
	var name string
	var rounds, timer int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if name != "" {
				req["display_name"] = name
			}
			if rounds > 0 {
				req["questions_per_round"] = rounds
			}
			if timer > 0 {
				req["timer_seconds"] = timer
			}

			var result Game
			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name in the game")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Number of rounds")
	cmd.Flags().IntVar(&timer, "timer", 0, "Answer countdown in seconds")

	return cmd
}

func newGameJoinCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a game by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"code": strings.ToUpper(args[0])}
			if name != "" {
				req["display_name"] = name
			}

			var result Game
			if err := client.Post("/api/v1/games/join", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name in the game")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <game-id>",
		Short: "Get current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Get(fmt.Sprintf("/api/v1/games/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <game-id>",
		Short: "Start the game (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/start", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameQuestionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "question <game-id>",
		Short: "Show the current round's question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Question
			if err := client.Get(fmt.Sprintf("/api/v1/games/%s/question", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameAnswerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <game-id> <text>",
		Short: "Submit your answer for the current round",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"text": strings.Join(args[1:], " ")}

			var result Answer
			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/answer", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameRevealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <game-id>",
		Short: "Show the round's answers (anonymous)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Reveal
			if err := client.Get(fmt.Sprintf("/api/v1/games/%s/reveal", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance <game-id>",
		Short: "Open voting for the current round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/advance", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <game-id> <answer-id>",
		Short: "Vote for an answer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"answer_id": args[1]}

			var result Vote
			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/vote", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results <game-id>",
		Short: "Show the current round's results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Results
			if err := client.Get(fmt.Sprintf("/api/v1/games/%s/results", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next <game-id>",
		Short: "Advance to the next round (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/next", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <game-id>",
		Short: "Poll the game and print phase changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			path := fmt.Sprintf("/api/v1/games/%s", args[0])

			var lastStatus string
			lastRound := -1
			for {
				var result Game
				if err := client.Get(path, &result); err != nil {
					return err
				}

				if result.Status != lastStatus || result.CurrentRound != lastRound {
					out.Print(result)
					lastStatus = result.Status
					lastRound = result.CurrentRound
				}

				if result.Status == "finished" {
					return nil
				}

				time.Sleep(interval)
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Polling interval")

	return cmd
}
