package gain

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() ResultsTable {
	return ResultsTable{
		{Channel: 3, PeaksFound: 1, Gain: PedestalOnlyGain, Offset: 11800.123, ErrOffset: 1.5},
		{Channel: 0, PeaksFound: 0},
		{Channel: 2, PeaksFound: 3, Gain: 800.456, ErrGain: 1.234, Offset: 12000.5, ErrOffset: 2.25},
	}
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, sampleTable()))

	expected := strings.Join([]string{
		"Channel,Peaks,Gain,Error_g,Offset,Error_o",
		"0,0,0.00,0.00,0.00,0.00",
		"2,3,800.46,1.23,12000.50,2.25",
		"3,1,-1000.00,0.00,11800.12,1.50",
		"",
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

func TestResultsRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "results_0cd913fb_20220207.csv")
	require.NoError(t, WriteResultsFile(filename, sampleTable()))

	table, err := ReadResultsFile(filename)
	require.NoError(t, err)
	require.Len(t, table, 3)

	assert.Equal(t, []int{0, 2, 3}, []int{table[0].Channel, table[1].Channel, table[2].Channel})
	assert.Equal(t, StatusNoPeaks, table[0].Status)
	assert.Equal(t, StatusValid, table[1].Status)
	assert.Equal(t, StatusPedestalOnly, table[2].Status)
	assert.Equal(t, 3, table[1].PeaksFound)
	assert.InDelta(t, 800.46, table[1].Gain, 1e-9)
	assert.InDelta(t, 1.23, table[1].ErrGain, 1e-9)
	assert.InDelta(t, 12000.5, table[1].Offset, 1e-9)
	assert.Equal(t, PedestalOnlyGain, table[2].Gain)
}

func TestReadResultsSpacedColumns(t *testing.T) {
	input := "Channel,Peaks,Gain,Error_g, Offset,Error_o\n1, 2, 750.00, 3.00, 11000.00, 1.00\n"
	_, err := ReadResults(strings.NewReader(input))
	require.NoError(t, err)
}

func TestReadResultsLegacyHeader(t *testing.T) {
	input := "Channel, # Peaks, Gain, Error_g,  Offset, Error_o\n" +
		"4, 3, 801.20, 1.10, 12000.00, 0.80\n" +
		"5, 1, -1000.00, 0.00, 11500.00, 0.50\n"
	table, err := ReadResults(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, 3, table[0].PeaksFound)
	assert.Equal(t, StatusValid, table[0].Status)
	assert.Equal(t, StatusPedestalOnly, table[1].Status)
}

func TestReadResultsRejectsInvalidTables(t *testing.T) {
	header := "Channel,Peaks,Gain,Error_g,Offset,Error_o\n"

	_, err := ReadResults(strings.NewReader(header + "1,2,750,3,11000,1\n1,3,760,3,11000,1\n"))
	assert.ErrorContains(t, err, "duplicated channel 1")

	_, err = ReadResults(strings.NewReader("Channel,Gain\n1,750\n"))
	assert.Error(t, err)

	_, err = ReadResults(strings.NewReader(header + "x,2,750,3,11000,1\n"))
	assert.Error(t, err)

	_, err = ReadResults(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadResultsFile(filepath.Join(t.TempDir(), "missing.csv"))
	var openErr *ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}
