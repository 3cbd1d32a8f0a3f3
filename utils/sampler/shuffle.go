// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

// Shuffle pseudo-randomizes the order of n elements using the Fisher-Yates
// algorithm. [swap] swaps the elements with indexes i and j.
func Shuffle(rng *RNG, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(rng.Uint64Inclusive(uint64(i)))
		swap(i, j)
	}
}
