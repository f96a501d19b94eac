package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Knagis/GeoTransformer-sub000/gpx"
)

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [input.gpx]...",
		Short: "Print waypoint, geocache and log counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				doc, err := a.load(path)
				if err != nil {
					return err
				}
				s := summarize(doc)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d waypoints, %d geocaches, %d logs\n",
					path, s.waypoints, s.geocaches, s.logs)
			}
			return nil
		},
	}
}

type summary struct {
	waypoints int
	geocaches int
	logs      int
}

func summarize(doc *gpx.Document) summary {
	wpts := doc.Waypoints().Items()
	return summary{
		waypoints: len(wpts),
		geocaches: lo.CountBy(wpts, func(w *gpx.Waypoint) bool { return w.Geocache().IsDefined() }),
		logs:      lo.SumBy(wpts, func(w *gpx.Waypoint) int { return w.Geocache().Logs().Len() }),
	}
}
