// Package gpu uploads cached geometry to a wgpu HAL device.
//
// Uploader implements session.Submitter. Host buffers coming out of the
// geometry cache are shared between every instance with the same identity,
// so the uploader creates at most one device vertex buffer per distinct host
// buffer per frame and records one Draw per instance, carrying the
// instance's world translation for the draw-time transform.
//
// Device buffers live for one extra frame: those created for frame N are
// destroyed when frame N+1 ends, or on Release.
package gpu
