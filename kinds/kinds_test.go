package kinds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/senfile/meta"
)

func TestSensorRoundTrip(t *testing.T) {
	s := NewSensor(SensorInfo{
		SerialNumber:    "992312000123",
		Model:           "RI-128",
		FirmwareVersion: "3.1.0",
		Channels:        128,
		ColumnsPerFrame: 1024,
		Mode:            "1024x10",
		UserData:        map[string]string{"rig": "front-left"},
	})
	s.SetID(1)

	buf, err := s.Buffer()
	require.NoError(t, err)

	e, err := meta.Decode(SensorType, buf)
	require.NoError(t, err)

	got, ok := e.(*Sensor)
	require.True(t, ok)
	assert.Equal(t, s.Info, got.Info)
}

func TestSensorCloneIsIndependent(t *testing.T) {
	s := NewSensor(SensorInfo{SerialNumber: "a", UserData: map[string]string{"k": "v"}})

	c, ok := s.Clone().(*Sensor)
	require.True(t, ok)
	c.Info.UserData["k"] = "changed"
	c.Info.SerialNumber = "b"

	assert.Equal(t, "v", s.Info.UserData["k"])
	assert.Equal(t, "a", s.Info.SerialNumber)
}

func TestScanStreamRoundTrip(t *testing.T) {
	s := NewScanStream(3, []string{"range", "signal"})

	buf, err := s.Buffer()
	require.NoError(t, err)

	e, err := meta.Decode(ScanStreamType, buf)
	require.NoError(t, err)

	got, ok := e.(*ScanStream)
	require.True(t, ok)
	assert.Equal(t, uint32(3), got.SensorMetaID)
	assert.Equal(t, []string{"range", "signal"}, got.Fields)
}

func TestScanStreamCloneIsIndependent(t *testing.T) {
	s := NewScanStream(1, []string{"range"})

	c, ok := s.Clone().(*ScanStream)
	require.True(t, ok)
	c.Fields[0] = "changed"

	assert.Equal(t, "range", s.Fields[0])
}

func TestImuStreamRoundTrip(t *testing.T) {
	s := NewImuStream(5)

	buf, err := s.Buffer()
	require.NoError(t, err)

	e, err := meta.Decode(ImuStreamType, buf)
	require.NoError(t, err)

	got, ok := e.(*ImuStream)
	require.True(t, ok)
	assert.Equal(t, uint32(5), got.SensorMetaID)
}

func TestExtrinsicsRoundTrip(t *testing.T) {
	m := Identity
	m[3] = 1.5  // x translation
	m[7] = -0.2 // y translation

	e := NewExtrinsics(2, m)

	buf, err := e.Buffer()
	require.NoError(t, err)
	assert.Len(t, buf, extrinsicsLen)

	dec, err := meta.Decode(ExtrinsicsType, buf)
	require.NoError(t, err)

	got, ok := dec.(*Extrinsics)
	require.True(t, ok)
	assert.Equal(t, uint32(2), got.SensorMetaID)
	assert.Equal(t, m, got.Matrix)
}

func TestExtrinsicsRejectsWrongLength(t *testing.T) {
	_, err := meta.Decode(ExtrinsicsType, make([]byte, extrinsicsLen-1))
	require.Error(t, err)

	var fe *meta.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ExtrinsicsType, fe.Tag)
}

func TestStreamingInfoRoundTrip(t *testing.T) {
	info := &StreamingInfo{
		Chunks: []ChunkSummary{
			{Offset: 20, Length: 128, FirstTS: 100, LastTS: 300, Streams: []uint32{2}},
		},
		Streams: []StreamStats{
			{StreamMetaID: 2, MessageCount: 42, FirstTS: 100, LastTS: 300, TotalBytes: 4096},
		},
	}

	buf, err := info.Buffer()
	require.NoError(t, err)

	e, err := meta.Decode(StreamingInfoType, buf)
	require.NoError(t, err)

	got, ok := e.(*StreamingInfo)
	require.True(t, ok)
	assert.Equal(t, info.Chunks, got.Chunks)
	assert.Equal(t, info.Streams, got.Streams)
}

func TestCastThroughStore(t *testing.T) {
	store := meta.NewStore()

	sensorID, err := store.Add(NewSensor(SensorInfo{SerialNumber: "sn-1"}))
	require.NoError(t, err)
	_, err = store.Add(NewScanStream(sensorID, []string{"range"}))
	require.NoError(t, err)

	sensor, ok := meta.First[*Sensor](store)
	require.True(t, ok)
	assert.Equal(t, "sn-1", sensor.Info.SerialNumber)
	assert.Equal(t, sensorID, sensor.ID())

	assert.Equal(t, 1, meta.Count[*ScanStream](store))
	assert.Equal(t, 0, meta.Count[*ImuStream](store))
}
