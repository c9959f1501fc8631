package stats

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/datastore"
)

// Command creates the stats command for printing aggregate analytics.
func Command(settings *conf.Settings, store *datastore.Store) *cobra.Command {
	var (
		from         string
		to           string
		analysisType string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate analysis statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := &datastore.Filter{
				StartDate: from,
				EndDate:   to,
				Type:      analysisType,
			}

			summary, err := store.GetAnalytics(filter)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total analyses:     %d\n", summary.TotalAnalyses)
			fmt.Fprintf(w, "Distinct species:   %d\n", summary.SpeciesCount)
			fmt.Fprintf(w, "Average confidence: %.2f\n", summary.AverageConfidence)
			if summary.MostCommonSpecies != "" {
				fmt.Fprintf(w, "Most common:        %s\n", summary.MostCommonSpecies)
			}
			if size, err := store.StorageSize(); err == nil && size > 0 {
				fmt.Fprintf(w, "Storage used:       %d bytes\n", size)
			}

			if len(summary.AnalysesByType) > 0 {
				fmt.Fprintln(w, "\nBy type:")
				for _, key := range sortedKeys(summary.AnalysesByType) {
					fmt.Fprintf(w, "  %-12s %d\n", key, summary.AnalysesByType[key])
				}
			}
			if len(summary.AnalysesByDate) > 0 {
				fmt.Fprintln(w, "\nBy date:")
				for _, key := range sortedKeys(summary.AnalysesByDate) {
					fmt.Fprintf(w, "  %-12s %d\n", key, summary.AnalysesByDate[key])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&analysisType, "type", "", "Filter by analysis type")

	return cmd
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
