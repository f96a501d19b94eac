package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Knagis/GeoTransformer-sub000/garmin"
	"github.com/Knagis/GeoTransformer-sub000/gpx"
	"github.com/Knagis/GeoTransformer-sub000/internal/config"
)

func newGGZCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ggz [output.ggz] [input.gpx]...",
		Short: "Package the geocaches of GPX files for Garmin devices",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([]*gpx.Document, 0, len(args)-1)
			for _, path := range args[1:] {
				doc, err := a.load(path)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}
			err := createFile(args[0], func(w io.Writer) error {
				return garmin.Create(w, docs,
					garmin.WithChunkSize(a.cfg.GGZ.ChunkSize),
					garmin.WithLogger(a.log))
			})
			if err != nil {
				return err
			}
			a.log.Info("wrote ggz", zap.String("path", args[0]), zap.Int("documents", len(docs)))
			return nil
		},
	}
	cmd.Flags().Int("chunk", 4<<20, "Size in bytes after which a new payload file is started")
	bindFlags(a.v, cmd.Flags(), map[string]string{config.GGZChunk: "chunk"})
	return cmd
}
