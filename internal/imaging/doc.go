// Package imaging provides the file and pixel helpers shared by the tool
// handlers and the offline backend.
//
// It covers four concerns:
//   - ImageCache: decoding of image files with a stat-validated cache,
//     including TIFF, BMP, WebP and PSD through registered decoders
//   - StatFile / DetectFormat: size and magic-byte format of written files,
//     used to report what a save actually produced
//   - Preview: base64 PNG thumbnails of a document composite, optionally
//     with a coordinate grid labeled in document pixels
//   - ParseHexColor / HexString: "#RRGGBB" color arguments
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. Regions
// are inclusive at the top-left and exclusive at the bottom-right.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Images returned by Load are shared
// and must be cloned before modification.
package imaging
