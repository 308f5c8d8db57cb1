package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dfrestrepo/ramatrack/internal/rama"
)

var (
	searchByNumber  bool
	searchPerson    string
	searchPage      int
	searchActive    bool
	searchCourtCode string
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search processes on the Rama Judicial API",
	Long: `Search the consultation API by company/person name or, with --number,
by the full registration number (número de radicación). Results are not
stored; use 'ramatrack track <idProceso>' on a result to ingest it.

Examples:
  ramatrack search "BANCOLOMBIA"
  ramatrack search "BANCOLOMBIA" --person nat --page 2
  ramatrack search 05001310300520210012300 --number`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchByNumber, "number", false, "search by registration number")
	searchCmd.Flags().StringVar(&searchPerson, "person", "jur", "person type: jur or nat")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "result page")
	searchCmd.Flags().BoolVar(&searchActive, "active", false, "only active processes")
	searchCmd.Flags().StringVar(&searchCourtCode, "court-code", "", "judicial office codification filter")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, _, source, err := getPipeline(ctx, false)
	if err != nil {
		return err
	}

	opts := rama.SearchOptions{
		PersonType: searchPerson,
		OnlyActive: searchActive,
		CourtCode:  searchCourtCode,
		Page:       searchPage,
	}

	var results []rama.ProcessSummary
	if searchByNumber {
		results, err = source.SearchByRegistrationNumber(ctx, args[0], opts)
	} else {
		results, err = source.SearchByName(ctx, args[0], opts)
	}
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No processes found.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID Proceso", "Radicado", "Despacho", "Sujetos", "Fecha"})
	for _, r := range results {
		tw.AppendRow(table.Row{
			r.IDProceso.String(),
			r.LlaveProceso,
			truncateCell(r.Despacho, 40),
			truncateCell(r.SujetosProcesales, 50),
			r.FechaProceso,
		})
	}
	tw.Render()
	fmt.Printf("\n%d result(s). Track one with 'ramatrack track <idProceso>'.\n", len(results))
	return nil
}

// truncateCell shortens a value for table display.
func truncateCell(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
