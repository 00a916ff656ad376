// Package imgops implements the image-manipulation operations exposed by
// the MCP server: cropping, resizing, rotation, blurring, region fills,
// compositing, palette changes, drawing primitives and metadata inspection.
//
// Every transforming operation reads an image file from disk, applies the
// change and writes the result back to disk, returning the output path.
// When the caller does not supply an output path, one is derived from the
// input by appending an operation suffix before the extension
// (photo.png -> photo_cropped.png). Missing output directories are created.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner.
// For regions, (x1,y1) is the inclusive top-left corner and (x2,y2) the
// exclusive bottom-right corner.
//
// # Colors
//
// Tool arguments carry colors as BGR integer arrays ([b, g, r], optionally
// [b, g, r, a]) or as hex strings ("#RRGGBB"). See the Color type.
//
// Pixel work is delegated to the disintegration/imaging and
// anthonynsimon/bild libraries; this package only adds argument validation,
// geometry handling and file plumbing.
package imgops
