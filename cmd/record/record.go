package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoview/ecoview-go/internal/analysislog"
	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/datastore"
)

// Command creates the record command for logging a completed analysis.
func Command(settings *conf.Settings, store *datastore.Store) *cobra.Command {
	var (
		date          string
		species       string
		confidence    float64
		image         string
		treeCount     int
		canopyDensity float64
		coverPct      float64
		idlePct       float64
		pathLength    float64
		waypoints     int
	)

	cmd := &cobra.Command{
		Use:   "record [species|count|path|greencover|TYPE]",
		Short: "Record a completed analysis",
		Long:  `Record a completed analysis event in the history store. Unknown types are stored with open metadata.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := analysislog.New(store)

			var id uint
			var ok bool
			switch args[0] {
			case datastore.TypeSpecies:
				id, ok = logger.Species(date, species, confidence, image, nil)
			case datastore.TypeCount:
				id, ok = logger.TreeCount(date, treeCount, canopyDensity, image)
			case datastore.TypePath:
				id, ok = logger.Path(date, confidence, &datastore.PathDetails{
					PathLength: pathLength,
					Waypoints:  waypoints,
				}, image)
			case datastore.TypeGreenCover:
				id, ok = logger.GreenCover(date, coverPct, idlePct, image)
			default:
				id, ok = logger.Generic(date, args[0], nil, nil, image)
			}

			if !ok {
				return fmt.Errorf("analysis was not recorded")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded analysis %d\n", id)
			return nil
		},
	}

	setupFlags(cmd, &date, &species, &confidence, &image, &treeCount, &canopyDensity, &coverPct, &idlePct, &pathLength, &waypoints)

	return cmd
}

func setupFlags(cmd *cobra.Command, date, species *string, confidence *float64, image *string,
	treeCount *int, canopyDensity, coverPct, idlePct *float64, pathLength *float64, waypoints *int,
) {
	cmd.Flags().StringVar(date, "date", "", "Analysis date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(species, "species", "", "Identified species name")
	cmd.Flags().Float64Var(confidence, "confidence", 0, "Confidence or efficiency score in [0,1]")
	cmd.Flags().StringVar(image, "image", "", "Image reference (data URI or path)")
	cmd.Flags().IntVar(treeCount, "tree-count", 0, "Number of trees counted")
	cmd.Flags().Float64Var(canopyDensity, "canopy-density", 0, "Canopy density percentage")
	cmd.Flags().Float64Var(coverPct, "green-cover", 0, "Green cover percentage")
	cmd.Flags().Float64Var(idlePct, "idle-land", 0, "Idle land percentage")
	cmd.Flags().Float64Var(pathLength, "path-length", 0, "Computed path length")
	cmd.Flags().IntVar(waypoints, "waypoints", 0, "Number of path waypoints")
}
