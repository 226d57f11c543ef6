package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"budget/internal/core"
	"budget/internal/tracker"
)

// Messages printed for rejected session lines.
const (
	MsgInvalidAmount = "Please enter a positive amount."
	MsgEmptyName     = "Please enter an expense name."
	MsgUsage         = "usage: <fixed|variable> <name> <amount>"
)

// Expense lines parsed from a session.
type sessionLine struct {
	Tag    string
	Name   string
	Amount string
}

// parseSessionLine splits "<type> <name...> <amount>". Names may contain
// spaces; the first and last fields are the type and the amount.
func parseSessionLine(line string) (sessionLine, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return sessionLine{}, false
	}
	return sessionLine{
		Tag:    fields[0],
		Name:   strings.Join(fields[1:len(fields)-1], " "),
		Amount: fields[len(fields)-1],
	}, true
}

// RunSession records one expense per input line until EOF, "quit" or ctx is
// done. Rows and the remaining budget are printed by a subscriber, so out
// only shows what the tracker has notified. "budget" prints the remaining
// budget and "summary" the per-category totals. Blank lines and lines
// starting with # are ignored.
func RunSession(ctx context.Context, in io.Reader, out io.Writer, t *tracker.Tracker) error {
	t.Subscribe(func(_ context.Context, e core.Expense) error {
		_, err := fmt.Fprintf(out, "%s\nRemaining Budget: $%s\n", e, core.FormatBudget(t.Budget()))
		return err
	})

	fmt.Fprintf(out, "Remaining Budget: $%s\n", core.FormatBudget(t.Budget()))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case line == "quit" || line == "exit":
			return nil
		case line == "budget":
			fmt.Fprintf(out, "Remaining Budget: $%s\n", core.FormatBudget(t.Budget()))
			continue
		case line == "summary":
			printSummary(out, t)
			continue
		}

		parsed, ok := parseSessionLine(line)
		if !ok {
			fmt.Fprintln(out, MsgUsage)
			continue
		}
		amount, err := core.ParseAmount(parsed.Amount)
		if err != nil {
			fmt.Fprintln(out, MsgInvalidAmount)
			continue
		}
		if err := core.NewExpense(parsed.Tag, parsed.Name, amount).Validate(); err != nil {
			fmt.Fprintln(out, rejectMessage(err))
			continue
		}
		t.Record(ctx, parsed.Tag, parsed.Name, amount)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read session input: %w", err)
	}
	return nil
}

func rejectMessage(err error) string {
	if errors.Is(err, core.ErrEmptyName) {
		return MsgEmptyName
	}
	return MsgInvalidAmount
}

func printSummary(out io.Writer, t *tracker.Tracker) {
	s := t.Summary()
	fmt.Fprintf(out, "Expenses: %d\n", s.Count)
	fmt.Fprintf(out, "Fixed: $%s\n", core.FormatBudget(s.Totals[core.Fixed]))
	fmt.Fprintf(out, "Variable: $%s\n", core.FormatBudget(s.Totals[core.Variable]))
	fmt.Fprintf(out, "Spent: $%s of $%s\n", core.FormatBudget(s.Spent), core.FormatBudget(s.Initial))
	fmt.Fprintf(out, "Remaining Budget: $%s\n", core.FormatBudget(s.Remaining))
}
