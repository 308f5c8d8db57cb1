package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dfrestrepo/ramatrack/internal/db"
	"github.com/dfrestrepo/ramatrack/internal/models"
)

var reenrichCmd = &cobra.Command{
	Use:   "reenrich <idProceso>",
	Short: "Re-run AI enrichment over a tracked process",
	Long: `Re-run summarization and urgency classification over every stored action
of a tracked process, for example after switching to a different model.

Examples:
  ramatrack reenrich 198167821`,
	Args: cobra.ExactArgs(1),
	RunE: runReenrich,
}

func runReenrich(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	externalID := args[0]

	reconciler, facade, _, err := getPipeline(ctx, true)
	if err != nil {
		return err
	}

	proc, err := facade.FindCached(ctx, externalID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("process %s is not tracked yet, run 'ramatrack track %s' first", externalID, externalID)
		}
		return err
	}

	result, err := reconciler.ReEnrich(ctx, models.MustRecordIDString(proc.ID))
	if err != nil {
		return err
	}

	fmt.Printf("Re-enriched %d action(s)", result.ActionsProcessed)
	if result.ActionsFailed > 0 {
		fmt.Printf(", %d failed", result.ActionsFailed)
	}
	fmt.Println()
	return nil
}
