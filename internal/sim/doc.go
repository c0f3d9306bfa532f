// Package sim runs growth-cone guidance simulations.
//
// A [Simulation] owns a substrate, a cone population and a [Config]. Each
// step it:
//
//  1. computes the FF coefficient from the sigmoid schedule
//  2. snapshots every cone's current position and levels
//  3. proposes a candidate move per cone from the local potential gradient
//  4. evaluates the potential at the candidate and commits it
//  5. applies adaptation when enabled
//  6. records the committed position and promotes it
//
// Cones only read the snapshot of other cones, so the order in which cones
// are processed never changes the outcome. With Config.Workers > 1 cones
// are processed concurrently; every cone draws from its own random stream
// derived from Config.Seed, so results match the sequential run exactly.
//
// # Example
//
//	s, _ := sim.New(sub, cones, sim.DefaultConfig())
//	result, err := s.Run()
//
// # Thread Safety
//
// Simulation instances are NOT thread-safe and run once. Use [Ensemble]
// for several seeds in parallel.
package sim
