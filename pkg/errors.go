package gain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPeaks is returned by the linear fit when the peak search found nothing.
	ErrNoPeaks = errors.New("no peaks detected")
	// ErrUnderdetermined is returned by the linear fit when a single peak was found.
	ErrUnderdetermined = errors.New("a single peak cannot define a gain")
	// ErrRaggedRow flags an input row shorter than the channel count of the file.
	ErrRaggedRow = errors.New("row has fewer integrals than channels")
)

// ErrOpenFile represents an error when opening an input file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrUnknownVariant represents a device serial that maps to no hardware variant.
type ErrUnknownVariant struct {
	Serial  string
	Variant string
}

func (e *ErrUnknownVariant) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf("device %q refers to unknown variant %q", e.Serial, e.Variant)
	}
	return fmt.Sprintf("device %q does not map to a known variant", e.Serial)
}

// ErrInvalidRunName represents an input filename that does not follow
// the <tag>_<serial>_<date>_<time> convention.
type ErrInvalidRunName struct {
	Filename string
}

func (e *ErrInvalidRunName) Error() string {
	return fmt.Sprintf("invalid run filename %q: expected <tag>_<serial>_<date>_<time>", e.Filename)
}

// ErrChannelOutOfRange represents a configured channel missing from the input.
type ErrChannelOutOfRange struct {
	Channel  int
	Channels int
}

func (e *ErrChannelOutOfRange) Error() string {
	return fmt.Sprintf("channel %d out of range: input has %d channels", e.Channel, e.Channels)
}

// ErrFitNonConvergence represents a Gaussian peak fit flagged as unreliable.
type ErrFitNonConvergence struct {
	Channel  int
	Peak     int
	Position float64
	Reason   string
}

func (e *ErrFitNonConvergence) Error() string {
	return fmt.Sprintf("channel %d: fit of peak #%d @ ADC %.1f did not converge: %s",
		e.Channel, e.Peak, e.Position, e.Reason)
}
