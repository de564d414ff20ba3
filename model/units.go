package model

// Byte size units.
const (
	KiB int64 = 1024
	MiB       = KiB * 1024
	GiB       = MiB * 1024
)
