// Package mask turns images and named shapes into the activity masks that
// seed a district grid.
//
// What:
//
//   - Load resolves a source string: "builtin:<name>" selects a generated
//     shape, anything else is a file path decoded by content sniffing.
//   - Decode reads an image from any io.Reader; PNG, JPEG, GIF, BMP, TIFF and
//     WebP are registered.
//   - FromImage thresholds an image into a grid.Mask: a pixel is active when
//     its non-premultiplied red*alpha/255 exceeds the threshold (default 10),
//     so both dark and transparent pixels become background.
//   - Builtin renders one of the generated shapes (star, circle, square, ring)
//     at any size.
//
// Options:
//
//   - Threshold: activity cut-off in [0,255] (default 10).
//   - Width: resample the image to this many columns, keeping the aspect
//     ratio; 0 keeps the native size. For builtins it is the side length.
//
// Complexity:
//
//   - FromImage, Builtin: O(W×H).
//   - Resampling: O(W×H) in the target size.
//
// Errors:
//
//   - ErrUnknownSource: unknown builtin name or empty source.
//   - ErrDecode: the bytes are not a supported image.
//   - File system errors from os.Open are returned wrapped.
package mask
