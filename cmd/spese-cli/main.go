package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"budget/internal/cli"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/tracker"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "spese-cli",
		Short:         "Expense tracker CLI",
		Long:          `Record expenses against a budget from the terminal, or query a running spese server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	rootCmd.AddCommand(newSessionCmd(), newClassifyCmd(), newSummaryCmd())
	return rootCmd
}

func newSessionCmd() *cobra.Command {
	var budget string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Record expenses read from stdin",
		Long: `Reads one expense per line as "<fixed|variable> <name> <amount>" and prints
each recorded row with the remaining budget. "budget", "summary" and "quit"
are also understood.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			logger := cli.SetupLogger(cfg, applog.ComponentCLI, cmd.ErrOrStderr())

			initial := cfg.Budget()
			if budget != "" {
				if initial, err = decimal.NewFromString(strings.TrimSpace(budget)); err != nil {
					return fmt.Errorf("invalid --budget %q: %w", budget, err)
				}
			}

			ctx, stop := cli.SignalContext()
			defer stop()

			t := tracker.NewWithBudget(initial, logger)
			integrations, err := cli.SetupIntegrations(ctx, cfg, t, nil, logger)
			if err != nil {
				return err
			}
			defer integrations.Close()

			return cli.RunSession(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVar(&budget, "budget", "", "Initial budget (defaults to INITIAL_BUDGET)")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <tag>",
		Short: "Print the category a tag resolves to",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), core.Classify(args[0]))
		},
	}
}

type summary struct {
	Initial   string            `json:"initial_budget"`
	Spent     string            `json:"spent"`
	Remaining string            `json:"remaining_budget"`
	Totals    map[string]string `json:"totals"`
	Count     int               `json:"count"`
}

func newSummaryCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the budget summary of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: timeout}
			resp, err := client.Get(strings.TrimRight(baseURL, "/") + "/api/summary")
			if err != nil {
				return fmt.Errorf("request summary: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
				return fmt.Errorf("summary request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}

			var s summary
			if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
				return fmt.Errorf("decode summary: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Expenses: %d\n", s.Count)
			fmt.Fprintf(out, "Fixed: $%s\n", s.Totals[core.Fixed.String()])
			fmt.Fprintf(out, "Variable: $%s\n", s.Totals[core.Variable.String()])
			fmt.Fprintf(out, "Spent: $%s of $%s\n", s.Spent, s.Initial)
			fmt.Fprintf(out, "Remaining Budget: $%s\n", s.Remaining)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8081", "Base URL of the spese server")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	return cmd
}
