package gain

import (
	"fmt"
	"sort"
)

// ChannelRange selects the channels of a batch. Last is exclusive unless
// Inclusive is set, which reproduces the legacy "first..n" loop.
type ChannelRange struct {
	First     int
	Last      int
	Inclusive bool
}

// List expands the range and checks it against the channel count of the input.
func (r ChannelRange) List(available int) ([]int, error) {
	last := r.Last
	if r.Inclusive {
		last++
	}
	if r.First < 0 {
		return nil, &ErrChannelOutOfRange{Channel: r.First, Channels: available}
	}
	if last > available {
		return nil, &ErrChannelOutOfRange{Channel: last - 1, Channels: available}
	}
	channels := make([]int, 0, max(last-r.First, 0))
	for ch := r.First; ch < last; ch++ {
		channels = append(channels, ch)
	}
	return channels, nil
}

type BatchConfig struct {
	Channels   ChannelRange
	NumWorkers int
}

// ResultsTable holds one row per analyzed channel, in channel order.
type ResultsTable []CalibrationResult

// RunBatch analyzes every configured channel. Channels are independent and
// are spread over NumWorkers goroutines; the table is sorted by channel
// before it is returned. Only an invalid channel range aborts the batch.
func RunBatch(src EventSource, cfg BatchConfig, a *Analyzer) (ResultsTable, error) {
	channels, err := cfg.Channels.List(src.Channels())
	if err != nil {
		return nil, fmt.Errorf("invalid channel range: %w", err)
	}
	if err := a.Bounds.Validate(); err != nil {
		return nil, err
	}
	numWorkers := cfg.NumWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}

	jobs := make(chan int, len(channels))
	results := make(chan CalibrationResult, len(channels))
	for w := 1; w <= numWorkers; w++ {
		go worker(w, src, a, jobs, results)
	}
	for _, ch := range channels {
		jobs <- ch
	}
	close(jobs)

	table := make(ResultsTable, 0, len(channels))
	for range channels {
		table = append(table, <-results)
	}
	sort.Slice(table, func(i, j int) bool {
		return table[i].Channel < table[j].Channel
	})
	return table, nil
}

func worker(id int, src EventSource, a *Analyzer, jobs <-chan int, results chan<- CalibrationResult) {
	for channel := range jobs {
		if a.Verbosity >= PrintPeaks {
			message := fmt.Sprintf("Worker %d processing channel %d", id, channel)
			logger.Info(message, "batch")
		}
		results <- processChannel(src, a, channel)
	}
}

func processChannel(src EventSource, a *Analyzer, channel int) (res CalibrationResult) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("analysis recovered from panic on channel %d: %v", channel, r)
			logger.Error(errMessage.Error())
			res = CalibrationResult{Channel: channel, Status: StatusFailed, Err: errMessage}
		}
	}()

	samples, err := src.ChannelIntegrals(channel)
	if err != nil {
		errMessage := fmt.Errorf("error reading channel %d: %w", channel, err)
		logger.Error(errMessage.Error())
		return CalibrationResult{Channel: channel, Status: StatusFailed, Err: errMessage}
	}
	return a.AnalyzeChannel(channel, samples)
}

// Count returns how many rows have the given status.
func (t ResultsTable) Count(status Status) int {
	n := 0
	for _, r := range t {
		if r.Status == status {
			n++
		}
	}
	return n
}
