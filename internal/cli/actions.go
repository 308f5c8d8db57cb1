package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dfrestrepo/ramatrack/internal/db"
	"github.com/dfrestrepo/ramatrack/internal/models"
)

var actionsFull bool

var actionsCmd = &cobra.Command{
	Use:   "actions <idProceso>",
	Short: "List the stored actions of a tracked process",
	Long: `Show the procedural actions stored for a tracked process, newest first,
with their AI summary and urgency classification.

Examples:
  ramatrack actions 198167821
  ramatrack actions 198167821 --full`,
	Args: cobra.ExactArgs(1),
	RunE: runActions,
}

func init() {
	actionsCmd.Flags().BoolVar(&actionsFull, "full", false, "print full annotations and summaries")
}

func runActions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	externalID := args[0]

	_, facade, _, err := getPipeline(ctx, false)
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

	actions, err := facade.ListActions(ctx, models.MustRecordIDString(proc.ID))
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		fmt.Println("No actions stored for this process.")
		return nil
	}

	if actionsFull {
		printActionsFull(actions)
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Fecha", "Actuación", "Urgencia", "Resumen", "Docs"})
	for i := range actions {
		a := &actions[i]
		docs := ""
		if a.HasDocuments {
			docs = "sí"
		}
		tw.AppendRow(table.Row{
			strVal(a.ActionDate),
			truncateCell(strVal(a.ActionType), 30),
			urgencyVal(a.AIUrgency),
			truncateCell(strVal(a.AISummary), 60),
			docs,
		})
	}
	tw.Render()
	return nil
}

func printActionsFull(actions []models.Action) {
	for i := range actions {
		a := &actions[i]
		fmt.Printf("── %s · %s", strVal(a.ActionDate), strVal(a.ActionType))
		if a.AIUrgency != nil {
			fmt.Printf(" [%s]", *a.AIUrgency)
		}
		fmt.Println()
		if a.Annotation != nil && *a.Annotation != "" {
			fmt.Printf("   Anotación: %s\n", *a.Annotation)
		}
		if a.AISummary != nil && *a.AISummary != "" {
			fmt.Printf("   Resumen:   %s\n", *a.AISummary)
		}
		if a.ExternalActionID != nil {
			fmt.Printf("   ID:        %s\n", *a.ExternalActionID)
		}
		fmt.Println()
	}
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func urgencyVal(u *models.Urgency) string {
	if u == nil {
		return ""
	}
	return string(*u)
}
