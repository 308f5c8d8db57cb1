package cli

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dfrestrepo/ramatrack/internal/models"
	"github.com/dfrestrepo/ramatrack/internal/service"
)

var (
	trackSearchTerm string
	trackForce      bool
)

var trackCmd = &cobra.Command{
	Use:   "track <idProceso>",
	Short: "Ingest a process and enrich its actions",
	Long: `Fetch a process from the Rama Judicial API by its idProceso, store it
locally and run AI summarization and urgency classification over each of its
actions. A process that was already tracked is served from the local store
without calling the API again.

Examples:
  ramatrack track 198167821
  ramatrack track 198167821 --search-term "BANCOLOMBIA"`,
	Args: cobra.ExactArgs(1),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().StringVar(&trackSearchTerm, "search-term", "", "record how this process was found")
	trackCmd.Flags().BoolVar(&trackForce, "force", false, "re-run enrichment even when the process is already tracked")
}

type ingestOutcome struct {
	result *service.IngestResult
	err    error
}

func runTrack(cmd *cobra.Command, args []string) error {
	externalID := args[0]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler, _, _, err := getPipeline(ctx, true)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newTrackModel(externalID))
	outcomeCh := make(chan ingestOutcome, 1)

	go func() {
		result, err := reconciler.Ingest(ctx, externalID, service.IngestOptions{
			SearchTerm: trackSearchTerm,
			Progress: func(done, total int) {
				p.Send(progressMsg{done: done, total: total})
			},
		})
		outcomeCh <- ingestOutcome{result: result, err: err}
		p.Send(finishedMsg{err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}
	if m, ok := finalModel.(trackModel); ok && m.aborted {
		cancel()
		<-outcomeCh
		return fmt.Errorf("ingest aborted")
	}

	outcome := <-outcomeCh
	if outcome.err != nil {
		return outcome.err
	}

	result := outcome.result
	if result.FromCache {
		fmt.Println("Process already tracked, showing stored record.")
		if trackForce {
			re, err := reconciler.ReEnrich(ctx, models.MustRecordIDString(result.Process.ID))
			if err != nil {
				return err
			}
			fmt.Printf("Re-enriched %d actions", re.ActionsProcessed)
			if re.ActionsFailed > 0 {
				fmt.Printf(" (%d failed)", re.ActionsFailed)
			}
			fmt.Println()
		}
	} else {
		fmt.Printf("Stored %d/%d actions", result.ActionsStored, result.ActionsTotal)
		if result.ActionsFailed > 0 {
			fmt.Printf(" (%d failed)", result.ActionsFailed)
		}
		fmt.Println()
	}
	fmt.Println()
	printProcess(result.Process)
	return nil
}

// printProcess renders one process as a field/value table.
func printProcess(p *models.Process) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Field", "Value"})
	tw.AppendRow(table.Row{"ID Proceso", p.ExternalID})
	appendOpt(tw, "Radicado", p.RegistrationNumber)
	appendOpt(tw, "Despacho", p.Court)
	appendOpt(tw, "Ponente", p.ReportingJudge)
	appendOpt(tw, "Tipo", p.ProcessType)
	appendOpt(tw, "Clase", p.ProcessClass)
	appendOpt(tw, "Ubicación", p.FileLocation)
	appendOpt(tw, "Demandante", p.Plaintiff)
	appendOpt(tw, "Demandado", p.Defendant)
	appendOpt(tw, "Sujetos", p.Parties)
	tw.AppendRow(table.Row{"Consultado", p.QueriedAt.Local().Format("2006-01-02 15:04")})
	tw.Render()
}

func appendOpt(tw table.Writer, label string, val *string) {
	if val != nil && *val != "" {
		tw.AppendRow(table.Row{label, *val})
	}
}
