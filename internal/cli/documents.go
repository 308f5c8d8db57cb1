package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents <idRegActuacion>",
	Short: "List documents attached to an action",
	Long: `List the document metadata the Rama Judicial API publishes for one
action (idRegActuacion). Binary download is not supported.

Examples:
  ramatrack documents 1234567890`,
	Args: cobra.ExactArgs(1),
	RunE: runDocuments,
}

func runDocuments(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, _, source, err := getPipeline(ctx, false)
	if err != nil {
		return err
	}

	docs, err := source.FetchActionDocuments(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetch documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Println("No documents published for this action.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Nombre", "Descripción", "Fecha"})
	for _, d := range docs {
		tw.AppendRow(table.Row{
			d.IDRegDocumento.String(),
			truncateCell(d.Nombre, 40),
			truncateCell(d.Descripcion, 40),
			d.FechaDocumento,
		})
	}
	tw.Render()
	return nil
}
