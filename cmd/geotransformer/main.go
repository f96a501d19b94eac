// Command geotransformer converts, merges and packages GPX geocache files.
package main

import (
	"fmt"
	"os"

	"github.com/Knagis/GeoTransformer-sub000/internal/config"
)

func main() {
	if err := newRootCommand(config.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
