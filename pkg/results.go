package gain

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

var resultsHeader = []string{"Channel", "Peaks", "Gain", "Error_g", "Offset", "Error_o"}

// Column names accepted on read besides resultsHeader.
var headerAliases = map[string]string{
	"# Peaks": "Peaks",
}

// WriteResults writes the table as comma separated rows, ordered by channel.
func WriteResults(w io.Writer, table ResultsTable) error {
	rows := make(ResultsTable, len(table))
	copy(rows, table)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Channel < rows[j].Channel
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(resultsHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Channel),
			fmt.Sprintf("%.0f", float64(r.PeaksFound)),
			fmt.Sprintf("%.2f", r.Gain),
			fmt.Sprintf("%.2f", r.ErrGain),
			fmt.Sprintf("%.2f", r.Offset),
			fmt.Sprintf("%.2f", r.ErrOffset),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteResultsFile(filename string, table ResultsTable) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteResults(f, table); err != nil {
		f.Close()
		return fmt.Errorf("error writing results to %s: %w", filename, err)
	}
	return f.Close()
}

// ReadResults parses a results table. The status of each row is recovered
// from its gain with ClassifyGain; per-peak fits are not stored.
func ReadResults(r io.Reader) (ResultsTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(resultsHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty results table")
	}
	if err != nil {
		return nil, err
	}
	for i, h := range resultsHeader {
		column := strings.TrimSpace(header[i])
		if alias, ok := headerAliases[column]; ok {
			column = alias
		}
		if column != h {
			return nil, fmt.Errorf("unexpected column %q at position %d, want %q", header[i], i, h)
		}
	}

	var table ResultsTable
	seen := make(map[int]bool)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		res, err := parseResultRecord(record)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if seen[res.Channel] {
			return nil, fmt.Errorf("duplicated channel %d", res.Channel)
		}
		seen[res.Channel] = true
		table = append(table, res)
	}
	sort.Slice(table, func(i, j int) bool {
		return table[i].Channel < table[j].Channel
	})
	return table, nil
}

func ReadResultsFile(filename string) (ResultsTable, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer f.Close()
	return ReadResults(f)
}

func parseResultRecord(record []string) (CalibrationResult, error) {
	var res CalibrationResult
	channel, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return res, fmt.Errorf("invalid channel %q: %w", record[0], err)
	}
	values := make([]float64, len(record)-1)
	for i, field := range record[1:] {
		values[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return res, fmt.Errorf("invalid %s %q: %w", resultsHeader[i+1], field, err)
		}
	}
	res = CalibrationResult{
		Channel:    channel,
		PeaksFound: int(values[0]),
		Gain:       values[1],
		ErrGain:    values[2],
		Offset:     values[3],
		ErrOffset:  values[4],
	}
	res.Status = ClassifyGain(res.Gain)
	return res, nil
}
