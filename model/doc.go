// Package model defines the shared data model between sensor producers and
// the senfile write path.
//
// A Reading is one timestamped, field-structured unit of sensor data. The
// writer never interprets field semantics: it only asks which fields are
// present and for their encoded representation. How a producer fills those
// bytes (range images, inertial samples, anything else) is its own business,
// which is what keeps the container format independent of any particular
// sensor wire protocol.
package model
