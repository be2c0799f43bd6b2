package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			in := sample{Name: "range", Count: 3}

			buf, err := c.Marshal(in)
			require.NoError(t, err)

			var out sample
			require.NoError(t, c.Unmarshal(buf, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestCodecsAreInterchangeable(t *testing.T) {
	// Both built-in codecs speak JSON; buffers must cross-decode so the
	// default can change between releases without a format break.
	buf, err := (JSON{}).Marshal(sample{Name: "signal", Count: 7})
	require.NoError(t, err)

	var out sample
	require.NoError(t, (GoJSON{}).Unmarshal(buf, &out))
	assert.Equal(t, sample{Name: "signal", Count: 7}, out)
}

func TestMustMarshalDefaults(t *testing.T) {
	buf := MustMarshal(nil, sample{Name: "x"})
	assert.NotEmpty(t, buf)
}
