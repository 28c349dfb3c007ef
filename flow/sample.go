/*
DESCRIPTION
  sample.go provides deterministic sampling of flow directions.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"math/rand/v2"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Sampler selects up to n values without replacement. Each frame pair gets
// its own Sampler seeded from the run seed and the pair index, so the sample
// does not depend on the order in which pairs are processed.
type Sampler struct {
	n   int
	src xrand.Source
}

// NewSampler returns a Sampler of n values for the given seed and stream.
// The stream's PCG generator supplies the seed of the sampling source, so
// distinct streams of one seed are independent.
func NewSampler(n int, seed, stream uint64) *Sampler {
	return &Sampler{n: n, src: xrand.NewSource(rand.NewPCG(seed, stream).Uint64())}
}

// Sample returns min(n, len(vals)) values chosen uniformly without
// replacement. vals is not modified. A nil Sampler returns a copy of vals.
func (s *Sampler) Sample(vals []float64) []float64 {
	if s == nil {
		return append([]float64(nil), vals...)
	}
	k := min(s.n, len(vals))
	if k <= 0 {
		return nil
	}
	idxs := make([]int, k)
	sampleuv.WithoutReplacement(idxs, len(vals), s.src)
	out := make([]float64, k)
	for i, j := range idxs {
		out[i] = vals[j]
	}
	return out
}
