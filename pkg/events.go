package gain

import "fmt"

// EventSource gives read access to the per-event charge integrals of a run.
// Implementations must be safe for concurrent reads.
type EventSource interface {
	Rows() int
	Channels() int
	ChannelIntegrals(channel int) ([]float64, error)
}

// EventTable is an immutable in-memory rlog table: one row per event,
// one integral per channel.
type EventTable struct {
	rows     [][]float64
	channels int
}

// NewEventTable takes ownership of rows. The channel count is the length of
// the first row and every other row must provide at least that many values.
func NewEventTable(rows [][]float64) (*EventTable, error) {
	t := &EventTable{rows: rows}
	if len(rows) == 0 {
		return t, nil
	}
	t.channels = len(rows[0])
	for i, row := range rows {
		if len(row) < t.channels {
			return nil, fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), t.channels, ErrRaggedRow)
		}
	}
	return t, nil
}

// NewEventTableWithChannels builds a table whose channel count is known
// up front, used for empty inputs that still declare their width.
func NewEventTableWithChannels(rows [][]float64, channels int) (*EventTable, error) {
	for i, row := range rows {
		if len(row) < channels {
			return nil, fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), channels, ErrRaggedRow)
		}
	}
	return &EventTable{rows: rows, channels: channels}, nil
}

func (t *EventTable) Rows() int {
	return len(t.rows)
}

func (t *EventTable) Channels() int {
	return t.channels
}

func (t *EventTable) ChannelIntegrals(channel int) ([]float64, error) {
	if channel < 0 || channel >= t.channels {
		return nil, &ErrChannelOutOfRange{Channel: channel, Channels: t.channels}
	}
	samples := make([]float64, len(t.rows))
	for i, row := range t.rows {
		samples[i] = row[channel]
	}
	return samples, nil
}
