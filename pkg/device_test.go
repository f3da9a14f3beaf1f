package gain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRunName(t *testing.T) {
	info, err := ParseRunName("/data/led/rlog_0cd913fb_20220207_020111_aaa.data.root")
	require.NoError(t, err)
	assert.Equal(t, RunInfo{Tag: "rlog", Serial: "0cd913fb", Date: "20220207", RunID: "020111"}, info)
	assert.Equal(t, "results_0cd913fb_20220207.csv", info.ResultsFilename())

	info, err = ParseRunName("rlog_0cd913fb_20220207_054800.h5")
	require.NoError(t, err)
	assert.Equal(t, "054800", info.RunID)
}

func TestParseRunNameInvalid(t *testing.T) {
	for _, name := range []string{
		"rlog.root",
		"rlog_0cd913fb_20220207.root",
		"rlog__20220207_020111.root",
		"rlog_0cd913fb_Feb2022_020111.root",
	} {
		_, err := ParseRunName(name)
		var invalid *ErrInvalidRunName
		assert.ErrorAs(t, err, &invalid, name)
	}
}

func TestVariantTable(t *testing.T) {
	table := NewVariantTable(DefaultVariants(), DefaultDevices())
	assert.Equal(t, []string{"ACL", "LCM"}, table.Variants())

	v, err := table.Resolve("0cd913fb")
	require.NoError(t, err)
	assert.Equal(t, "ACL", v.Name)
	assert.Equal(t, HistogramBounds{NBins: 500, XMin: 10000, XMax: 45000}, v.Bounds)

	_, err = table.Resolve("deadbeef")
	var unknown *ErrUnknownVariant
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "deadbeef", unknown.Serial)

	table.AddDevice("deadbeef", "LCM")
	v, err = table.Resolve("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, v.Bounds.XMin)

	table.AddDevice("cafe0001", "XYZ")
	_, err = table.Resolve("cafe0001")
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "XYZ", unknown.Variant)

	table.AddVariant("BAD", HistogramBounds{NBins: 10, XMin: 5, XMax: 1})
	table.AddDevice("cafe0002", "BAD")
	_, err = table.Resolve("cafe0002")
	assert.Error(t, err)
}

func TestVariantTableCopiesInputs(t *testing.T) {
	devices := DefaultDevices()
	table := NewVariantTable(DefaultVariants(), devices)
	devices["0cd913fb"] = "LCM"

	v, err := table.Resolve("0cd913fb")
	require.NoError(t, err)
	assert.Equal(t, "ACL", v.Name)
}

func TestDefaultConfiguration(t *testing.T) {
	config := DefaultConfiguration()
	assert.Equal(t, ChannelRange{First: 0, Last: 64}, config.ChannelRange())
	assert.Equal(t, PeakSearch{MaxPeaks: 20, Sigma: 3, MinRatio: 0.1}, config.PeakSearch())
	assert.Contains(t, config.Devices, "0cd913fb")
}
