// Package wgpu implements batch.Backend on top of the gogpu/wgpu HAL.
//
// Programs are pairs of WGSL modules: the vertex source must define
// vs_main and the fragment source fs_main. Both are validated with naga
// before the HAL shader modules are created.
//
// # Resource bindings
//
// Every binding lives in @group(0). The backend reflects the declarations
// of both sources:
//
//	@group(0) @binding(0) var<uniform> u_projection: mat4x4<f32>;
//	@group(0) @binding(1) var u_texture: texture_2d<f32>;
//	@group(0) @binding(2) var u_sampler: sampler;
//
// Each var<uniform> and each texture_2d is a uniform slot addressable by
// name. Uniform values are packed with WGSL uniform layout: matrices arrive
// row-major and are stored column-major, array elements are 16 bytes apart.
// The k-th texture_2d (in binding order) samples texture unit k; setting
// its name as an int uniform selects another unit, the way a sampler2D
// uniform does in GLSL.
//
// # Topologies
//
// WebGPU has no fan or loop primitives. A TriangleFan draw is expanded into
// a triangle list and a LineLoop draw into a line strip closed with its
// first index, both before the indices are uploaded.
//
// # Targets
//
// Draws go to the current Target, an offscreen texture that implements
// batch.Surface. Each DrawIndexed encodes one render pass, submits it and
// waits for the fence, so a Target can be read back at any time:
//
//	b, err := wgpu.Open()
//	target, err := b.NewTarget(800, 600)
//	ctx := batch.NewContext(b)
//	bt, err := batch.New(ctx, target)
//	...
//	img, err := target.Snapshot()
package wgpu
