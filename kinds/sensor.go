package kinds

import (
	"github.com/hupe1980/senfile/codec"
	"github.com/hupe1980/senfile/meta"
)

// SensorType is the wire tag of Sensor.
const SensorType = "senfile/v1/sensor"

func init() {
	meta.Register(SensorType, func(buf []byte) (meta.Entry, error) {
		var info SensorInfo
		if err := codec.Default.Unmarshal(buf, &info); err != nil {
			return nil, err
		}
		return NewSensor(info), nil
	})
}

// SensorInfo describes one physical sensor: the device descriptor a stream's
// readings originate from. Fields mirror what acquisition clients report;
// senfile stores them verbatim and interprets none of them.
type SensorInfo struct {
	// SerialNumber uniquely identifies the device.
	SerialNumber string `json:"serial_number"`
	// Model is the device product name, e.g. "RI-128".
	Model string `json:"model,omitempty"`
	// FirmwareVersion as reported by the device.
	FirmwareVersion string `json:"firmware_version,omitempty"`
	// Channels is the number of beams/channels for range-imaging sensors.
	Channels int `json:"channels,omitempty"`
	// ColumnsPerFrame is the horizontal resolution of one scan.
	ColumnsPerFrame int `json:"columns_per_frame,omitempty"`
	// Mode is the device operating mode string, e.g. "1024x10".
	Mode string `json:"mode,omitempty"`
	// UserData carries opaque application key/values.
	UserData map[string]string `json:"user_data,omitempty"`
}

// Sensor is the metadata kind cataloging one sensor descriptor. Every stream
// of a container is bound to exactly one Sensor entry.
type Sensor struct {
	meta.Base

	Info SensorInfo
}

// NewSensor creates a sensor entry for the given descriptor.
func NewSensor(info SensorInfo) *Sensor {
	return &Sensor{Info: info}
}

// Type returns the wire tag.
func (s *Sensor) Type() string { return SensorType }

// StaticType returns the wire tag.
func (s *Sensor) StaticType() string { return SensorType }

// Buffer encodes the descriptor.
func (s *Sensor) Buffer() ([]byte, error) {
	return codec.Default.Marshal(s.Info)
}

// Clone returns a new owned copy.
func (s *Sensor) Clone() meta.Entry {
	c := *s
	if s.Info.UserData != nil {
		c.Info.UserData = make(map[string]string, len(s.Info.UserData))
		for k, v := range s.Info.UserData {
			c.Info.UserData[k] = v
		}
	}
	return &c
}
