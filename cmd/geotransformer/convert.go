package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Knagis/GeoTransformer-sub000/gpx"
)

func newConvertCommand(a *app) *cobra.Command {
	var output string
	var plain bool

	cmd := &cobra.Command{
		Use:   "convert [input.gpx]",
		Short: "Rewrite a GPX file in the selected output format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(args[0])
			if err != nil {
				return err
			}
			if plain {
				n := plainText(doc)
				a.log.Info("converted descriptions to plain text", zap.Int("descriptions", n))
			}
			return a.write(cmd, output, doc)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&plain, "plain-text", false, "Convert HTML descriptions to plain text")
	return cmd
}

// plainText replaces the HTML descriptions of every geocache in doc with
// their plain text and returns how many were converted.
func plainText(doc *gpx.Document) int {
	var n int
	for _, w := range doc.Waypoints().Items() {
		g := w.Geocache()
		for _, d := range []*gpx.GeocacheDescription{g.ShortDescription(), g.LongDescription()} {
			if !d.IsHTML() {
				continue
			}
			d.SetText(gpx.String(d.PlainText()))
			d.SetHTML(gpx.Bool(false))
			n++
		}
	}
	return n
}
