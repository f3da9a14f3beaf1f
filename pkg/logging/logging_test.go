package logging

import (
	"bytes"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := New(&out, &errOut)

	l.Info("Channel 2: # of peaks found 3", "peaks")
	l.Error("channel 5: no peaks detected")

	pattern := regexp.MustCompile(`^\[\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\] \[peaks\] Channel 2: # of peaks found 3\n$`)
	assert.Regexp(t, pattern, out.String())

	var record map[string]any
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "channel 5: no peaks detected", record["msg"])
}

func TestHandlerWithAttrs(t *testing.T) {
	var out bytes.Buffer
	l := New(&out, &out)
	l.InfoLog.With("worker", 3).Info("processing", "module", "batch")
	assert.Contains(t, out.String(), "[3] [batch] processing")
}
