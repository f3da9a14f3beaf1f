package plots

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	gain "github.com/next-exp/gaincal_go/pkg"
	"golang.org/x/exp/maps"
)

// Connections maps a channel to the front-end connection module it is
// wired to.
type Connections map[int]string

// ReadConnections parses a connections table and keeps the column named
// after the board variant (ACL, LCM). Rows follow channel order unless the
// table has a Channel column.
func ReadConnections(r io.Reader, variant string) (Connections, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty connections table")
	}
	if err != nil {
		return nil, err
	}
	column, channelColumn := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case variant:
			column = i
		case "Channel":
			channelColumn = i
		}
	}
	if column < 0 {
		return nil, fmt.Errorf("connections table has no %s column", variant)
	}

	conns := make(Connections)
	for row := 0; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		channel := row
		if channelColumn >= 0 {
			channel, err = strconv.Atoi(strings.TrimSpace(record[channelColumn]))
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid channel %q", row+1, record[channelColumn])
			}
		}
		if module := strings.TrimSpace(record[column]); module != "" {
			conns[channel] = module
		}
	}
	return conns, nil
}

func ReadConnectionsFile(filename, variant string) (Connections, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &gain.ErrOpenFile{Filename: filename, Err: err}
	}
	defer f.Close()
	return ReadConnections(f, variant)
}

// ChannelGroup holds the valid channels wired to one connection module.
type ChannelGroup struct {
	Label    string
	Channels []float64
	Gains    []float64
	Peaks    []float64
}

// GroupValidChannels gathers the valid channels of a table by connection
// module, sorted by module name. Channels with no module are left out. A nil
// Connections puts every valid channel in a single group.
func GroupValidChannels(table gain.ResultsTable, conns Connections) []ChannelGroup {
	rows := make(gain.ResultsTable, len(table))
	copy(rows, table)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Channel < rows[j].Channel
	})

	byLabel := make(map[string]*ChannelGroup)
	for _, r := range rows {
		if gain.ClassifyGain(r.Gain) != gain.StatusValid {
			continue
		}
		label := "Valid channels"
		if conns != nil {
			module, ok := conns[r.Channel]
			if !ok {
				continue
			}
			label = module
		}
		g, ok := byLabel[label]
		if !ok {
			g = &ChannelGroup{Label: label}
			byLabel[label] = g
		}
		g.Channels = append(g.Channels, float64(r.Channel))
		g.Gains = append(g.Gains, r.Gain)
		g.Peaks = append(g.Peaks, float64(r.PeaksFound))
	}

	labels := maps.Keys(byLabel)
	sort.Strings(labels)
	groups := make([]ChannelGroup, len(labels))
	for i, label := range labels {
		groups[i] = *byLabel[label]
	}
	return groups
}
