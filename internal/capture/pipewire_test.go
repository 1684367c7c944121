package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sinkInputListing = `Sink Input #41
	Driver: protocol-native.c
	Corked: no
	Properties:
		application.name = "Zoom"
		application.process.id = "900"

Sink Input #42
	Driver: protocol-native.c
	Corked: yes
	Properties:
		application.name = "Spotify"
		application.process.id = "901"
`

func TestFindSinkInputSerial(t *testing.T) {
	serial, ok := findSinkInputSerial(sinkInputListing, 901)
	require.True(t, ok)
	assert.Equal(t, "42", serial)

	serial, ok = findSinkInputSerial(sinkInputListing, 900)
	require.True(t, ok)
	assert.Equal(t, "41", serial)
}

func TestFindSinkInputSerial_NotFound(t *testing.T) {
	_, ok := findSinkInputSerial(sinkInputListing, 555)
	assert.False(t, ok)

	_, ok = findSinkInputSerial("", 900)
	assert.False(t, ok)
}

func TestPipewireTap_InvalidateBlocksActivate(t *testing.T) {
	tap := &pipewireTap{target: "41"}
	require.NoError(t, tap.Activate())

	tap.Invalidate()
	assert.Error(t, tap.Activate())
}

func TestPipewireRecorder_StopWithoutStart(t *testing.T) {
	engine := NewPipewireEngine(DefaultConfig())
	rec := engine.NewRecorder("/tmp/out.wav", &pipewireTap{target: "41"})

	// Stop before Start is a no-op.
	assert.NoError(t, rec.Stop())
	assert.Equal(t, "/tmp/out.wav", rec.FilePath())
}
