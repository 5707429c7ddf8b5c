package ascore

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Weights applied to the per-depth scores when aggregating into one
// weighted score per signature. Middle depths carry the most evidence;
// the vector is a fixed constant of the method, not derived per run.
var depthWeights = []float64{0.25, 0.5, 0.75, 1.0, 1.0, 1.0, 1.0, 0.75, 0.5, 0.25}

// Ceiling for per-depth scores when the binomial survival probability
// underflows to zero.
const scoreCeiling = float64(1000.0)

func depthWeight(depth int) float64 {
	if depth > len(depthWeights) {
		return depthWeights[len(depthWeights)-1]
	}
	return depthWeights[depth-1]
}

// scorer converts the accumulated match-count table into per-signature
// scores, selects the best placement and derives per-site confidence.
type scorer struct {
	binSize   float64
	tolerance float64
	maxDepth  int
}

// binomialScore returns -10*log10 P(X >= k) for N fragment trials with
// per-trial match probability p, clipped to a finite ceiling.
func binomialScore(k, n int, p float64) float64 {
	if k <= 0 || n == 0 {
		return 0
	}
	if p >= 1 {
		return 0
	}
	dist := distuv.Binomial{N: float64(n), P: p}
	surv := dist.Survival(float64(k) - 0.5)
	if surv <= 0 {
		return scoreCeiling
	}
	s := -10 * math.Log10(surv)
	if s > scoreCeiling || math.IsInf(s, 1) {
		return scoreCeiling
	}
	if s < 0 {
		return 0
	}
	return s
}

// score runs once after all peaks have been consumed and produces the
// full result set. It fails if no peaks were seen.
func (sc *scorer) score(gen *placementGen) (*Result, error) {
	if len(gen.signatures) == 0 || gen.peaksConsumed == 0 {
		return nil, ErrEmptyMatchTable
	}

	weights := make([]float64, sc.maxDepth)
	for d := 1; d <= sc.maxDepth; d++ {
		weights[d-1] = depthWeight(d)
	}
	weightSum := floats.Sum(weights)

	table := make([]SignatureScore, len(gen.signatures))
	for i, sig := range gen.signatures {
		n := len(sig.ions)
		counts := make([]int, sc.maxDepth)
		scores := make([]float64, sc.maxDepth)
		cum := 0
		for d := 1; d <= sc.maxDepth; d++ {
			cum += sig.counts[d-1]
			counts[d-1] = cum
			p := float64(d) * 2 * sc.tolerance / sc.binSize
			scores[d-1] = binomialScore(cum, n, p)
		}
		table[i] = SignatureScore{
			Positions:      append([]int(nil), sig.positions...),
			Counts:         counts,
			Scores:         scores,
			WeightedScore:  floats.Dot(weights, scores) / weightSum,
			TotalFragments: n,
			Sequence:       gen.renderSequence(sig.positions),
		}
	}

	// Signatures are generated in lexicographic position order, so
	// keeping the first strictly greater score breaks ties towards the
	// lowest position set.
	best := 0
	for i := 1; i < len(table); i++ {
		if table[i].WeightedScore > table[best].WeightedScore {
			best = i
		}
	}

	res := &Result{
		bestSequence: table[best].Sequence,
		bestScore:    table[best].WeightedScore,
		signatures:   table,
	}
	sc.siteConfidence(res, table, best)
	return res, nil
}

// siteConfidence computes the per-site Ascores and alternative-site
// lists for the best signature. For each placed position, the
// competitors are the signatures that keep every other placed position
// and substitute that one position only.
func (sc *scorer) siteConfidence(res *Result, table []SignatureScore, best int) {
	bestSig := table[best]
	nSites := len(bestSig.Positions)
	res.siteScores = make([]float64, nSites)
	res.altSites = make([][]int, nSites)

	inBest := make(map[int]int, nSites) // position -> site index
	for i, pos := range bestSig.Positions {
		inBest[pos] = i
	}

	// For each site, the best competing weighted score seen so far;
	// -1 marks "no competitor exists".
	bestRival := make([]float64, nSites)
	for i := range bestRival {
		bestRival[i] = -1
	}

	for i := range table {
		if i == best || len(table[i].Positions) != nSites {
			continue
		}
		removed, extra := -1, -1
		diff := 0
		for _, pos := range table[i].Positions {
			if _, ok := inBest[pos]; !ok {
				extra = pos
				diff++
			}
		}
		if diff != 1 {
			continue
		}
		for _, pos := range bestSig.Positions {
			if !containsPos(table[i].Positions, pos) {
				removed = pos
			}
		}
		site := inBest[removed]
		if table[i].WeightedScore > bestRival[site] {
			bestRival[site] = table[i].WeightedScore
		}
		if equalCounts(table[i].Counts, bestSig.Counts) {
			res.altSites[site] = append(res.altSites[site], extra)
		}
	}

	for i := range res.siteScores {
		if bestRival[i] < 0 {
			// No competing placement for this site; the full weighted
			// score stands as the site's confidence.
			res.siteScores[i] = bestSig.WeightedScore
		} else {
			res.siteScores[i] = bestSig.WeightedScore - bestRival[i]
		}
		sort.Ints(res.altSites[i])
	}
}

func containsPos(positions []int, pos int) bool {
	for _, p := range positions {
		if p == pos {
			return true
		}
	}
	return false
}

func equalCounts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
