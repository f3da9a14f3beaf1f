package gain

// PedestalOnlyGain is reported for channels whose spectrum shows no
// photoelectron peaks above the pedestal. It is negative so it cannot be
// mistaken for a fitted gain or for the zero gain of an inactive channel.
const PedestalOnlyGain = -1000.0

// PhotoelectronCount assigns the sorted peak index to its p.e. count.
// A missed or merged low-order peak shifts every assignment above it; no
// attempt is made to detect that.
func PhotoelectronCount(index int) float64 {
	return float64(index)
}

// IsPedestalOnly reports whether a channel carries no real signal: a
// negative slope is unphysical, and a lone peak is the pedestal itself.
func IsPedestalOnly(peaks int, gain float64) bool {
	return gain < 0 || peaks == 1
}

// ApplyPedestalRule overrides the gain of pedestal-only channels with
// PedestalOnlyGain and zero error. Offsets are kept as fitted.
func ApplyPedestalRule(r *CalibrationResult) {
	if r.PeaksFound == 0 || !IsPedestalOnly(r.PeaksFound, r.Gain) {
		return
	}
	r.Gain = PedestalOnlyGain
	r.ErrGain = 0
	r.Status = StatusPedestalOnly
}

// ClassifyGain recovers the channel status from a reported gain, as read
// back from a results table.
func ClassifyGain(gain float64) Status {
	switch {
	case gain > 0:
		return StatusValid
	case gain < 0:
		return StatusPedestalOnly
	default:
		return StatusNoPeaks
	}
}
