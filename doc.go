// Package geocache is a tessellated-geometry cache for a real-time 3D
// renderer.
//
// Instances that share a shape, orientation, color modifiers and pose
// produce byte-identical vertex data. The subpackages tessellate each such
// identity at most once per frame and keep the results across frames under
// a byte budget:
//
//   - model: shapes, instances, orientations and packed HSL colors
//   - tessellate: vertex layout, the Tessellator interface and a reference
//     implementation
//   - identity: collision-resistant keys derived from render-affecting state
//   - cache: the byte-budgeted LRU cache of tessellated buffers
//   - batch: intra-frame deduplication on top of the cache
//   - session: per-frame orchestration and settings lifecycle
//   - gpu: upload of resolved buffers to a wgpu HAL device
//   - config: user settings loaded from YAML
//
// # Logging
//
// All packages log through the logger installed with SetLogger. By default
// nothing is logged.
//
//	geocache.SetLogger(slog.Default())
package geocache
