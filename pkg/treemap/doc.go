// Package treemap computes proportional rectangle partitions (treemap layouts)
// and maps them to pixel coordinates for HTML image maps.
//
// # Overview
//
// The package has two halves:
//
//   - [Layout] partitions a target rectangle into one sub-rectangle per input
//     weight, with areas proportional to the weights and input order preserved.
//   - [ToPixelBoxes] converts a normalized layout into integer pixel bounding
//     boxes suitable for <area shape="rect"> coordinates, flipping between the
//     bottom-up layout convention and the top-down raster convention.
//
// # Coordinate Conventions
//
// Normalized layout space uses a bottom-left origin with y increasing upward,
// matching conventional Cartesian plotting axes. Pixel space uses a top-left
// origin with y increasing downward, matching HTML and raster images. The flip
// between the two happens in exactly one place: [ToPixelBoxes].
//
// # Purity
//
// Both halves are pure functions: no I/O, no shared state, deterministic for
// identical inputs. Concurrent calls need no coordination. Labels and metadata
// never enter the geometry; callers zip results positionally with their own
// data.
//
// Basic usage:
//
//	rects, err := treemap.Layout([]float64{46.50, 16.30, 8.28}, 1, 1)
//	if err != nil {
//	    return err
//	}
//	boxes, err := treemap.ToPixelBoxes(rects, 1200, 800, 0)
package treemap
