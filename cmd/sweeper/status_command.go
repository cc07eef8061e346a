package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sweeper/internal/dispatch"
	"sweeper/internal/experiment"
	"sweeper/internal/plan"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Classify every work item against the experiments root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			items, err := plan.Enumerate(planOptions(cfg))
			if err != nil {
				return dispatch.Wrap(dispatch.ErrEnumeration, "", err)
			}
			oracle := experiment.Oracle{
				Root:             cfg.Paths.ExperimentsRoot,
				TerminalArtifact: cfg.Trainer.TerminalArtifact,
			}
			return renderPlanTable(cmd.OutOrStdout(), oracle, items)
		},
	}
}

// renderPlanTable classifies items without launching anything and writes a
// per-item table plus state counts. Shared by status and run --dry-run.
func renderPlanTable(w io.Writer, oracle experiment.Oracle, items []plan.Item) error {
	colorize := shouldColorize(w)
	rows := make([][]string, 0, len(items))
	counts := map[experiment.State]int{}
	for _, item := range items {
		record, err := oracle.Classify(item)
		if err != nil {
			return err
		}
		counts[record.State]++
		rows = append(rows, []string{
			item.Key(),
			strconv.Itoa(item.Seed),
			strconv.Itoa(item.Itr),
			item.Method,
			stateCell(record.State, colorize),
			record.Dir,
		})
	}

	fmt.Fprintln(w, renderTable(
		[]string{"Item", "Seed", "Itr", "Method", "State", "Attempt Dir"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(w, "%d items: %d complete, %d incomplete, %d absent\n",
		len(items),
		counts[experiment.StateComplete],
		counts[experiment.StateIncomplete],
		counts[experiment.StateAbsent],
	)
	return nil
}

func stateCell(state experiment.State, colorize bool) string {
	label := state.String()
	if !colorize {
		return label
	}
	switch state {
	case experiment.StateComplete:
		return ansiGreen + label + ansiReset
	case experiment.StateIncomplete:
		return ansiYellow + label + ansiReset
	default:
		return ansiBlue + label + ansiReset
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
