package model

import "math"

// OrientationSteps is the number of discrete orientations in a full turn.
const OrientationSteps = 2048

// Orientation is a rotation about the vertical axis in 1/2048 turn units.
// 0 faces north, 512 east, 1024 south and 1536 west.
type Orientation int32

// Normalize maps o into [0, OrientationSteps).
func (o Orientation) Normalize() Orientation {
	n := o % OrientationSteps
	if n < 0 {
		n += OrientationSteps
	}
	return n
}

// Radians returns the normalized orientation in radians.
func (o Orientation) Radians() float64 {
	return float64(o.Normalize()) * (2 * math.Pi / OrientationSteps)
}

// Wall direction flags as stored on wall objects.
const (
	WallEast      = 1
	WallSouth     = 2
	WallWest      = 4
	WallNorth     = 8
	WallSouthEast = 16
	WallSouthWest = 32
	WallNorthWest = 64
	WallNorthEast = 128
)

// WallOrientation converts a wall direction flag into an Orientation.
// Unknown flags map to north.
func WallOrientation(flag int) Orientation {
	switch flag {
	case WallEast:
		return 512
	case WallSouth:
		return 1024
	case WallWest:
		return 1536
	case WallSouthEast:
		return 768
	case WallSouthWest:
		return 1280
	case WallNorthWest:
		return 1792
	case WallNorthEast:
		return 256
	default:
		return 0
	}
}

// ConfigOrientation extracts the orientation stored in bits 6-7 of an
// object's placement config.
func ConfigOrientation(config int) Orientation {
	switch config >> 6 & 3 {
	case 0:
		return 1024
	case 1:
		return 1536
	case 2:
		return 0
	default:
		return 512
	}
}
