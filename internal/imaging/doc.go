// Package imaging loads page images and prepares them for recognition.
//
// This package implements the image side of an OCR request: decoding files
// of any supported format, cropping to a region of interest, cleaning the
// page up for the engine and drawing recognized boxes back onto it. All
// operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// A cropped image starts at (0,0). Boxes recognized on it are mapped back to
// the source by adding the region's top-left corner.
//
// # Formats
//
// Files are sniffed by content before decoding. PNG, JPEG and GIF use the
// standard library decoders; TIFF, BMP and WebP are registered from
// golang.org/x/image.
//
// # Preprocessing
//
// Preprocess converts to grayscale, optionally stretches contrast, inverts
// light-on-dark pages when their mean CIE L* falls below one half, and
// rescales. The scale factor is reported so that boxes can be divided back
// down to source pixels.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
package imaging
