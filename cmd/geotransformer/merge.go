package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Knagis/GeoTransformer-sub000/gpx"
)

func newMergeCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge [target.gpx] [source.gpx]...",
		Short: "Fill missing data of the target waypoints from fresher files",
		Long: `Waypoints with equal names are merged: fields the target lacks are
copied from the source and logs are combined in date order. Waypoints only
present in a source are appended.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.load(args[0])
			if err != nil {
				return err
			}
			for _, path := range args[1:] {
				source, err := a.load(path)
				if err != nil {
					return err
				}
				merged, added := gpx.MergeDocument(target, source)
				a.log.Info("merged",
					zap.String("source", path),
					zap.Int("merged", merged),
					zap.Int("added", added))
			}
			return a.write(cmd, output, target)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
