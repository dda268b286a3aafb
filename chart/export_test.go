package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motionpanel/store"
)

func TestWriteSnapshotContainsSelectedSeriesOnly(t *testing.T) {
	p := store.NewPanel(store.MaxPoints)
	p.Toggle("pitch")
	p.Toggle("roll")
	for i := 0; i < 5; i++ {
		p.Record("pitch", float64(i)/10)
		p.Record("roll", float64(i)/5)
		p.AdvanceLabels(time.Date(2026, 8, 29, 12, 0, i, 0, time.UTC))
	}

	var buf bytes.Buffer
	err := WriteSnapshot(&buf, Reconcile(p), p.Labels())
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "pitch")
	assert.Contains(t, html, "roll")
	assert.NotContains(t, html, "yaw")
	assert.Contains(t, html, "12:00:04.000")
	assert.True(t, strings.Contains(html, HexFor(0)) || strings.Contains(html, strings.ToLower(HexFor(0))),
		"series colour should match the palette hex")
}

func TestWriteSnapshotEmptySelection(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSnapshot(&buf, nil, nil)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
