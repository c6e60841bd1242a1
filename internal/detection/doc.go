// Package detection locates individual digits in an image that holds a row
// of them, so that each can be described and classified on its own.
//
// # Algorithm
//
//  1. Ink mask: convert to grayscale with bright ink and binarize at a threshold
//  2. Components: group ink pixels with an 8-connected iterative flood fill
//  3. Filtering: drop components below a minimum pixel count as noise
//  4. Merging: join components whose column spans overlap, so a digit whose
//     stroke is broken in two still yields one region
//  5. Ordering: sort regions left to right and pad them
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Limitations
//
// Touching digits form one component and come back as a single region.
// Digits stacked vertically are merged because only column spans are compared.
package detection
