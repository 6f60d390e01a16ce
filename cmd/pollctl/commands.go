package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/samvad-hq/samvad-polls/internal/config"
	"github.com/samvad-hq/samvad-polls/internal/logger"
	"github.com/samvad-hq/samvad-polls/pkg/polls"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	baseURL string
	timeout time.Duration
	token   string
}

func newRootCmd(cfg *config.Config, log logger.Logger) *cobra.Command {
	if log == nil {
		log = &logger.NopLogger{}
	}

	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "pollctl",
		Short:         "CLI client for the polling service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", cfg.PollsBaseURL, "Polling service base URL")
	rootCmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", cfg.PollsTimeout, "Per-request timeout")
	rootCmd.PersistentFlags().StringVar(&flags.token, "token", cfg.PollsBearerToken, "Bearer token used when voting")

	client := func() *polls.Client {
		return polls.New(
			polls.WithBaseURL(flags.baseURL),
			polls.WithTimeout(flags.timeout),
			polls.WithBearerToken(flags.token),
			polls.WithLogger(log),
		)
	}

	rootCmd.AddCommand(
		newListCmd(client),
		newVoteCmd(client),
		newResultsCmd(client),
	)
	return rootCmd
}

func newListCmd(client func() *polls.Client) *cobra.Command {
	var skip, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List polls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := client().FetchPolls(cmd.Context(), polls.FetchPollsParams{Skip: skip, Limit: limit})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of polls to skip")
	cmd.Flags().IntVar(&limit, "limit", polls.DefaultLimit, "Maximum number of polls to return")
	return cmd
}

func newVoteCmd(client func() *polls.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "vote POLL_ID OPTION_ID",
		Short: "Cast a vote for an option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pollID, err := parseID("poll id", args[0])
			if err != nil {
				return err
			}
			optionID, err := parseID("option id", args[1])
			if err != nil {
				return err
			}
			vote, err := client().CastVote(cmd.Context(), pollID, optionID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), vote)
		},
	}
}

func newResultsCmd(client func() *polls.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "results POLL_ID",
		Short: "Show aggregated results for a poll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pollID, err := parseID("poll id", args[0])
			if err != nil {
				return err
			}
			res, err := client().GetPollResults(cmd.Context(), pollID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func parseID(what, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, raw)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
