package gain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPedestalOnly(t *testing.T) {
	assert.True(t, IsPedestalOnly(1, 0))
	assert.True(t, IsPedestalOnly(1, 750))
	assert.True(t, IsPedestalOnly(3, -12.5))
	assert.False(t, IsPedestalOnly(3, 800))
	assert.False(t, IsPedestalOnly(2, 0))
}

func TestApplyPedestalRule(t *testing.T) {
	r := CalibrationResult{PeaksFound: 1, Gain: 0, Offset: 11500, ErrOffset: 2, Status: StatusValid}
	ApplyPedestalRule(&r)
	assert.Equal(t, PedestalOnlyGain, r.Gain)
	assert.Equal(t, 0.0, r.ErrGain)
	assert.Equal(t, 11500.0, r.Offset)
	assert.Equal(t, StatusPedestalOnly, r.Status)

	r = CalibrationResult{PeaksFound: 4, Gain: -30, ErrGain: 5, Status: StatusValid}
	ApplyPedestalRule(&r)
	assert.Equal(t, PedestalOnlyGain, r.Gain)
	assert.Equal(t, 0.0, r.ErrGain)

	r = CalibrationResult{PeaksFound: 3, Gain: 800, ErrGain: 1, Status: StatusValid}
	ApplyPedestalRule(&r)
	assert.Equal(t, 800.0, r.Gain)
	assert.Equal(t, StatusValid, r.Status)

	r = CalibrationResult{Status: StatusNoPeaks}
	ApplyPedestalRule(&r)
	assert.Equal(t, 0.0, r.Gain)
	assert.Equal(t, StatusNoPeaks, r.Status)
}

func TestClassifyGain(t *testing.T) {
	assert.Equal(t, StatusValid, ClassifyGain(812.4))
	assert.Equal(t, StatusPedestalOnly, ClassifyGain(PedestalOnlyGain))
	assert.Equal(t, StatusNoPeaks, ClassifyGain(0))
}

func TestPhotoelectronCount(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, float64(i), PhotoelectronCount(i))
	}
}
