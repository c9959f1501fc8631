package history

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/datastore"
)

// Command creates the history command for listing stored analyses.
func Command(settings *conf.Settings, store *datastore.Store) *cobra.Command {
	var (
		from          string
		to            string
		analysisType  string
		species       string
		minConfidence float64
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analyses",
		Long:  `List stored analyses, newest first, optionally filtered by date range, type, species, or minimum confidence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := &datastore.Filter{
				StartDate: from,
				EndDate:   to,
				Type:      analysisType,
				Species:   species,
			}
			if cmd.Flags().Changed("min-confidence") {
				filter.MinConfidence = &minConfidence
			}

			analyses, err := store.GetAll(filter)
			if err != nil {
				return err
			}

			if len(analyses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no analyses found")
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-8s %-12s %-12s %-24s %-10s\n", "ID", "DATE", "TYPE", "SPECIES", "CONFIDENCE")
			for i := range analyses {
				a := &analyses[i]
				confidence := "-"
				if a.Confidence != nil {
					confidence = fmt.Sprintf("%.2f", *a.Confidence)
				}
				speciesName := a.Species
				if speciesName == "" {
					speciesName = "-"
				}
				fmt.Fprintf(w, "%-8d %-12s %-12s %-24s %-10s\n",
					a.ID, a.Date, a.Type, truncate(speciesName, 24), confidence)
			}
			fmt.Fprintf(w, "\n%d analyses\n", len(analyses))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&analysisType, "type", "", "Filter by analysis type")
	cmd.Flags().StringVar(&species, "species", "", "Filter by species name")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "Minimum confidence score")

	return cmd
}

// truncate shortens s to at most n runes, never splitting a multi-byte rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}
