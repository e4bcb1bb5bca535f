// Package render draws a district grid as an image.
//
// Label 0 (background) is black. District i of K takes the HSLuv colour with
// hue 360·i/K, saturation 0.7 and lightness 0.7, which keeps neighbouring
// districts perceptually distinct at equal brightness. When requested, every
// populated district's integer centroid is stamped as a white 5×5 square,
// clipped at the image border.
//
// Upscale enlarges with nearest-neighbour sampling so cells stay crisp;
// WritePNG and SavePNG encode the result.
//
// Complexity: Image is O(W×H + K); Upscale is O(W×H×factor²).
package render
