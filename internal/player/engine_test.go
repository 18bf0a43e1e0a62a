package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineFactory(t *testing.T) {
	e, err := NewEngineFactory("HLS", nil)()
	require.NoError(t, err)
	assert.IsType(t, &HLSEngine{}, e)
	e.Destroy()

	e, err = NewEngineFactory(EngineNative, nil)()
	require.NoError(t, err)
	assert.IsType(t, &NativeEngine{}, e)

	_, err = NewEngineFactory("flash", nil)()
	assert.ErrorIs(t, err, ErrEngineUnsupported)
}

func TestNativeEngine(t *testing.T) {
	e := &NativeEngine{}
	ready, err := e.Attach("http://backend/hlsv2/x/master.m3u8", nil)
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, "http://backend/hlsv2/x/master.m3u8", e.Source())

	e.Destroy()
	assert.Empty(t, e.Source())
}
