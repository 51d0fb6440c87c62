package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/quarrylabs/databook/pkg/databook"
)

// Executor runs tool calls issued by the model against the local pipeline.
// Results come back as plain text lines for the transcript.
type Executor struct {
	resolver *databook.Resolver
	logger   *slog.Logger
}

// NewExecutor wires the tool executor.
func NewExecutor(resolver *databook.Resolver, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{resolver: resolver, logger: logger}
}

type valueFetchArgs struct {
	Values  []string `json:"values"`
	Source  string   `json:"source"`
	Periods []string `json:"periods"`
	Unit    string   `json:"unit"`
}

type rollDiceArgs struct {
	Sides int `json:"sides"`
}

// Run dispatches one tool call. args is the raw JSON argument string from
// the model.
func (e *Executor) Run(ctx context.Context, name, args string) (string, error) {
	switch name {
	case "value_fetch":
		var a valueFetchArgs
		if err := json.Unmarshal([]byte(args), &a); err != nil {
			return "", fmt.Errorf("value_fetch arguments: %w", err)
		}
		rows, err := e.resolver.ResolveBatch(ctx, databook.Request{
			Values:  a.Values,
			Source:  a.Source,
			Periods: a.Periods,
			Unit:    a.Unit,
		})
		if err != nil {
			return "", fmt.Errorf("value_fetch: %w", err)
		}
		e.logger.Debug("tool executed", "tool", name, "rows", len(rows))
		return FormatRows(rows, a.Unit), nil

	case "roll_dice":
		var a rollDiceArgs
		if err := json.Unmarshal([]byte(args), &a); err != nil {
			return "", fmt.Errorf("roll_dice arguments: %w", err)
		}
		sides := a.Sides
		if sides <= 0 {
			sides = 6
		}
		return fmt.Sprintf("You rolled a %d.", 1+rand.IntN(sides)), nil

	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}
