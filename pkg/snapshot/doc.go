// Package snapshot exports a live layer stack to static image formats.
//
// Exports are capture passes: every surface renders its full
// participating element set with bounds culling bypassed, so the output
// shows the whole graph regardless of the current viewport.
//
// [RenderSVG] serializes the stack into a standalone SVG document,
// back to front. Node surfaces contribute their retained markup; canvas
// surfaces contribute their raster contents as embedded PNG images.
//
// [RenderPNG] composites the raster surfaces of the stack into a single
// bitmap. Node surface markup has no rasterizer in-process and is not
// included; export stacks that need full-fidelity bitmaps draw on
// canvas surfaces.
package snapshot
