// Package session drives the geometry cache for a renderer session.
//
// A Session is explicitly constructed and owns the cross-frame cache, the
// frame batcher and the identity resolver. Its lifecycle hooks map onto the
// renderer's: New on session start, ApplySettings when the user changes a
// setting (a budget change clears and resizes the cache), Reload when the
// scene is reloaded and Close on teardown.
//
// RenderFrame processes one frame of visible instances in traversal order
// and hands every resolved buffer to a Submitter. Instances whose
// tessellation fails are reported to Diagnostics and skipped; they never
// abort the frame.
package session
