// Package raster draws laid-out diagrams as PNG images and animated GIFs.
//
// Everything is drawn natively with Go's image packages: node boxes in
// their palette colors, edges as bezier curves between the connector sides
// with arrow heads, and labels set in the Go fonts. Frames are rendered at
// twice the requested scale and downsampled for smooth edges.
//
// [RenderGIF] produces [Frames] frames at [FrameDelay] each. Animated edges are
// dashed and their dash offset moves from 20 down to 0 over the loop, so the
// dashes flow from source to target.
package raster
