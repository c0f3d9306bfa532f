// Package potential computes the guidance potential that steers a growth cone.
//
// A cone senses two kinds of partners:
//
//   - fiber-target (FT): substrate cells under its circular footprint
//   - fiber-fiber (FF): overlapping neighbour cones, weighted by the
//     time-varying coefficient from [FFCoefficient]
//
// Forward signal pairs the cone's receptors with all sensed ligands, reverse
// signal pairs its ligands with all sensed receptors. The potential is the
// magnitude of the log ratio of the two:
//
//	f := potential.Field{Forward: true, Reverse: true, FF: true, FT: true}
//	p := f.Potential(gc, gc.NewPos, neighbors, sub, potential.FFCoefficient(step, n, 3, 2, 1))
//
// Every function in this package is pure.
package potential
