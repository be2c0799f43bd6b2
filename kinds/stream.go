package kinds

import (
	"github.com/hupe1980/senfile/codec"
	"github.com/hupe1980/senfile/meta"
)

// ScanStreamType is the wire tag of ScanStream.
const ScanStreamType = "senfile/v1/scan_stream"

// ImuStreamType is the wire tag of ImuStream.
const ImuStreamType = "senfile/v1/imu_stream"

func init() {
	meta.Register(ScanStreamType, func(buf []byte) (meta.Entry, error) {
		var s scanStreamWire
		if err := codec.Default.Unmarshal(buf, &s); err != nil {
			return nil, err
		}
		return &ScanStream{SensorMetaID: s.SensorMetaID, Fields: s.Fields}, nil
	})
	meta.Register(ImuStreamType, func(buf []byte) (meta.Entry, error) {
		var s imuStreamWire
		if err := codec.Default.Unmarshal(buf, &s); err != nil {
			return nil, err
		}
		return &ImuStream{SensorMetaID: s.SensorMetaID}, nil
	})
}

type scanStreamWire struct {
	SensorMetaID uint32   `json:"sensor_meta_id"`
	Fields       []string `json:"fields"`
}

// ScanStream is the schema descriptor of one range-imaging stream: which
// sensor entry it belongs to and the fixed field set its readings are encoded
// under. Chunk messages reference this entry's metadata id.
//
// The writer adds one ScanStream per stream once the stream's field set is
// fixed — either up front via the fixed-fields option or by the first saved
// reading.
type ScanStream struct {
	meta.Base

	SensorMetaID uint32
	Fields       []string
}

// NewScanStream creates a stream schema entry bound to the sensor entry with
// the given metadata id.
func NewScanStream(sensorMetaID uint32, fields []string) *ScanStream {
	return &ScanStream{SensorMetaID: sensorMetaID, Fields: fields}
}

// Type returns the wire tag.
func (s *ScanStream) Type() string { return ScanStreamType }

// StaticType returns the wire tag.
func (s *ScanStream) StaticType() string { return ScanStreamType }

// Buffer encodes the schema descriptor.
func (s *ScanStream) Buffer() ([]byte, error) {
	return codec.Default.Marshal(scanStreamWire{SensorMetaID: s.SensorMetaID, Fields: s.Fields})
}

// Clone returns a new owned copy.
func (s *ScanStream) Clone() meta.Entry {
	c := *s
	c.Fields = append([]string(nil), s.Fields...)
	return &c
}

type imuStreamWire struct {
	SensorMetaID uint32 `json:"sensor_meta_id"`
}

// ImuStream is the schema descriptor of an inertial stream. Inertial readings
// carry a fixed implicit layout (angular velocity and linear acceleration per
// axis), so the descriptor only links the stream to its sensor entry.
type ImuStream struct {
	meta.Base

	SensorMetaID uint32
}

// NewImuStream creates an inertial stream schema entry.
func NewImuStream(sensorMetaID uint32) *ImuStream {
	return &ImuStream{SensorMetaID: sensorMetaID}
}

// Type returns the wire tag.
func (s *ImuStream) Type() string { return ImuStreamType }

// StaticType returns the wire tag.
func (s *ImuStream) StaticType() string { return ImuStreamType }

// Buffer encodes the schema descriptor.
func (s *ImuStream) Buffer() ([]byte, error) {
	return codec.Default.Marshal(imuStreamWire{SensorMetaID: s.SensorMetaID})
}

// Clone returns a new owned copy.
func (s *ImuStream) Clone() meta.Entry {
	c := *s
	return &c
}
