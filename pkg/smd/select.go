// ABOUTME: Perceptual frequency selection for one block
// ABOUTME: Greedy picks spread over equal shares of the remaining power
package smd

import "gonum.org/v1/gonum/floats"

// selectFrequencies marks up to count coefficients in flags and returns how
// many were marked. Each pass scans from the highest index down, cutting the
// remaining power into count equal shares; the strongest coefficient of each
// share is picked and its power zeroed. Passes repeat until count picks are
// made or no power is left. powers is consumed.
func selectFrequencies(powers []float64, flags []bool, count int) int {
	for i := range flags {
		flags[i] = false
	}
	last := len(powers) - 1
	if last < 0 {
		return 0
	}

	picked := 0
	for picked < count {
		total := floats.Sum(powers)
		if total <= 0 {
			break
		}
		share := total / float64(count)

		before := picked
		sum := 0.0
		maxIndex, maxPower := last, powers[last]
		for j := last; j >= 0 && picked < count; j-- {
			p := powers[j]
			sum += p
			if p > maxPower {
				maxIndex, maxPower = j, p
			}
			if sum >= share {
				flags[maxIndex] = true
				powers[maxIndex] = 0
				picked++

				sum = 0
				if j > 0 {
					maxIndex, maxPower = j-1, powers[j-1]
				}
			}
		}
		// Rounding can leave the last share just short; take its peak.
		if picked == before {
			if maxPower <= 0 {
				break
			}
			flags[maxIndex] = true
			powers[maxIndex] = 0
			picked++
		}
	}
	return picked
}
