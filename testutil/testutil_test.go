package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReading(t *testing.T) {
	rng := NewRNG(4711)

	r := rng.Reading(100, []string{"range", "signal"}, 16)

	assert.Equal(t, uint64(100), r.Timestamp())
	assert.Equal(t, []string{"range", "signal"}, r.Fields())

	data, err := r.Field("range")
	assert.NoError(t, err)
	assert.Len(t, data, 16)
}

func TestReadingsDeterministic(t *testing.T) {
	a := NewRNG(1).Readings(3, 100, 10, []string{"range"}, 8)
	b := NewRNG(1).Readings(3, 100, 10, []string{"range"}, 8)

	assert.Equal(t, 3, len(a))
	assert.Equal(t, uint64(120), a[2].Timestamp())
	for i := range a {
		assert.Equal(t, a[i].Data, b[i].Data)
	}
}

func TestSensors(t *testing.T) {
	infos := Sensors(2)

	assert.Equal(t, 2, len(infos))
	assert.NotEqual(t, infos[0].SerialNumber, infos[1].SerialNumber)
	assert.Equal(t, "RI-128", infos[0].Model)
}
