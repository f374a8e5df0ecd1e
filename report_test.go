package tonedelay_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buzzerlab/tonedelay"
)

func TestWriteReport(t *testing.T) {
	m := tonedelay.Melody{Tones: []float64{440, 262}, Delays: []float64{100}, ToneCount: 2}
	var buf bytes.Buffer
	require.NoError(t, tonedelay.WriteReport(&buf, m))
	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "[440.0, 262.0]", lines[0])
	assert.Equal(t, "", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "####"))
	assert.Equal(t, "2", lines[3])
	assert.Equal(t, "", lines[4])
	assert.Equal(t, lines[2], lines[5])
	assert.Equal(t, lines[2], lines[6])
	assert.Equal(t, "[100.0]", lines[7])
	assert.Equal(t, "", lines[8])
}

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tonedelay.WriteReport(&buf, tonedelay.Melody{}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[]\n"))
	assert.True(t, strings.HasSuffix(out, "[]\n"))
	assert.Contains(t, out, "\n0\n")
}

func TestWriteReportFractions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tonedelay.WriteReport(&buf, tonedelay.Melody{Tones: []float64{261.63}, ToneCount: 1}))
	assert.True(t, strings.HasPrefix(buf.String(), "[261.63]\n"))
}
