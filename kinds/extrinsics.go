package kinds

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/senfile/meta"
)

// ExtrinsicsType is the wire tag of Extrinsics.
const ExtrinsicsType = "senfile/v1/extrinsics"

// extrinsicsLen is the fixed buffer size: sensor meta id (4) + 16 float64.
const extrinsicsLen = 4 + 16*8

func init() {
	meta.Register(ExtrinsicsType, decodeExtrinsics)
}

// Extrinsics is the pose of a sensor in some common frame, stored as a 4x4
// row-major homogeneous transform and linked to its Sensor entry by metadata
// id.
//
// Unlike the descriptor kinds it is encoded as fixed-width little-endian
// binary, mostly to keep one non-JSON kind honest about the registry being
// encoding-agnostic.
type Extrinsics struct {
	meta.Base

	SensorMetaID uint32
	Matrix       [16]float64
}

// Identity is the identity transform.
var Identity = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// NewExtrinsics creates an extrinsics entry for the sensor entry with the
// given metadata id.
func NewExtrinsics(sensorMetaID uint32, matrix [16]float64) *Extrinsics {
	return &Extrinsics{SensorMetaID: sensorMetaID, Matrix: matrix}
}

// Type returns the wire tag.
func (e *Extrinsics) Type() string { return ExtrinsicsType }

// StaticType returns the wire tag.
func (e *Extrinsics) StaticType() string { return ExtrinsicsType }

// Buffer encodes the transform.
func (e *Extrinsics) Buffer() ([]byte, error) {
	out := make([]byte, 0, extrinsicsLen)
	out = binary.LittleEndian.AppendUint32(out, e.SensorMetaID)
	for _, v := range e.Matrix {
		out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
	}
	return out, nil
}

// Clone returns a new owned copy.
func (e *Extrinsics) Clone() meta.Entry {
	c := *e
	return &c
}

func decodeExtrinsics(buf []byte) (meta.Entry, error) {
	if len(buf) != extrinsicsLen {
		return nil, fmt.Errorf("extrinsics buffer is %d bytes, want %d", len(buf), extrinsicsLen)
	}

	e := &Extrinsics{SensorMetaID: binary.LittleEndian.Uint32(buf[0:4])}
	for i := range e.Matrix {
		bits := binary.LittleEndian.Uint64(buf[4+8*i:])
		e.Matrix[i] = math.Float64frombits(bits)
	}

	return e, nil
}
