// Package analysis estimates orbital properties from recorded runs.
//
//   - [PowerSpectrum] and [DominantPeriod]: period of a sampled coordinate
//     from its spectrum
//   - [Crossings] and [CrossingPeriod]: period from the times a body crosses
//     the primary's horizontal axis
//   - [OrbitPortrait]: a body's path relative to the primary
//
// # Periods
//
// Sampling must cover at least a couple of orbits for either estimate to be
// meaningful:
//
//	xs := analysis.Series(states, 3, 0)
//	period := analysis.DominantPeriod(xs, dt)
package analysis
