package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dfrestrepo/ramatrack/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show runtime statistics of the running server",
	Long: `Query the ramatrack-server stats endpoint and display per-operation
call counts and timings.

Examples:
  ramatrack stats`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	url := fmt.Sprintf("http://localhost:%s/api/stats", cfg.ServerPort)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("is ramatrack-server running? %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stats endpoint returned %s", resp.Status)
	}

	var snap metrics.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return fmt.Errorf("decode stats: %w", err)
	}

	fmt.Printf("Server uptime: %.1fs\n\n", snap.UptimeSeconds)
	if len(snap.Operations) == 0 {
		fmt.Println("No operations recorded yet.")
		return nil
	}

	ops := make([]string, 0, len(snap.Operations))
	for op := range snap.Operations {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Operation", "Calls", "Errors", "Avg ms", "Min ms", "Max ms"})
	for _, op := range ops {
		s := snap.Operations[op]
		tw.AppendRow(table.Row{op, s.Count, s.Errors,
			fmt.Sprintf("%.1f", s.AvgTimeMs), s.MinTimeMs, s.MaxTimeMs})
	}
	tw.Render()
	return nil
}
