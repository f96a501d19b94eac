package gpx

import (
	"errors"

	"github.com/Knagis/GeoTransformer-sub000/observable"
)

var (
	// ErrNotGPX is returned by Load when the root element is not gpx.
	ErrNotGPX = errors.New("gpx: root element is not gpx")

	// ErrReadOnly is wrapped by the panic raised when the original values
	// snapshot of a waypoint is modified.
	ErrReadOnly = observable.ErrFrozen

	ErrUnsupportedVersion = errors.New("gpx: unsupported schema version")
	ErrUnknownPreset      = errors.New("gpx: unknown serialization preset")
)
