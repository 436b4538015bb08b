package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")

	assert.Contains(t, buf.String(), "Heartbeat Discrimination Task 1.2.3")
	assert.Contains(t, buf.String(), "|_| |_|____/ |_|")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()

	out, err := render("# Responding\n\nTell me whether the beeps were **before** your heartbeat.")
	require.NoError(t, err)
	assert.Contains(t, out, "Responding")
	assert.Contains(t, out, "before")
}
