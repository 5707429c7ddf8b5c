package ascore

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat/combin"
)

type neutralLoss struct {
	residues string
	mass     float64
}

// signature is one assignment of all unlocalized modifications to
// distinct candidate positions (1-indexed residue positions, sorted
// ascending).
type signature struct {
	positions []int
	ions      []float64 // theoretical fragment ladder, m/z ascending
	matched   []bool    // ions already paired with a peak
	counts    []int     // match increments per depth, index = rank
}

// placementGen enumerates the signature universe for one peptide and
// matches binned peaks against each signature's ion ladder.
type placementGen struct {
	residues  string
	modMass   float64
	tolerance float64
	maxDepth  int
	losses    []neutralLoss

	peptide       string
	candidates    []int
	signatures    []*signature
	peaksConsumed int
}

// consume replaces the current peptide state: it builds the candidate
// position set and precomputes the ion ladder for every signature.
// Fixed modifications are given as co-indexed position/mass arrays;
// position 0 is the N-terminus.
func (g *placementGen) consume(peptide string, nMods int, fixedPos []int, fixedMass []float64) error {
	resMass, err := residueMasses(peptide)
	if err != nil {
		return err
	}
	fixedAt := make(map[int]float64, len(fixedPos))
	for i, pos := range fixedPos {
		if pos < 0 || pos > len(peptide) {
			return fmt.Errorf("%w: fixed modification position %d out of range",
				ErrInvalidPeptide, pos)
		}
		fixedAt[pos] += fixedMass[i]
	}

	g.peptide = peptide
	g.peaksConsumed = 0
	g.candidates = g.candidates[:0]
	for i := 1; i <= len(peptide); i++ {
		if _, occupied := fixedAt[i]; occupied {
			continue
		}
		if strings.IndexByte(g.residues, peptide[i-1]) >= 0 {
			g.candidates = append(g.candidates, i)
		}
	}
	if nMods > len(g.candidates) {
		return fmt.Errorf("%w: %d modifications requested, %d candidate sites",
			ErrInsufficientCandidates, nMods, len(g.candidates))
	}

	var combos [][]int
	if nMods == 0 {
		combos = [][]int{{}}
	} else {
		combos = combin.Combinations(len(g.candidates), nMods)
	}
	g.signatures = make([]*signature, 0, len(combos))
	for _, combo := range combos {
		positions := make([]int, len(combo))
		for i, c := range combo {
			positions[i] = g.candidates[c]
		}
		sig := &signature{
			positions: positions,
			ions:      g.buildLadder(resMass, fixedAt, positions),
			counts:    make([]int, g.maxDepth),
		}
		sig.matched = make([]bool, len(sig.ions))
		g.signatures = append(g.signatures, sig)
	}
	return nil
}

// buildLadder computes the singly protonated b- and y-series fragment
// masses for the peptide with the given fixed and placed modifications,
// extended with registered neutral-loss variants, sorted by m/z.
func (g *placementGen) buildLadder(resMass []float64, fixedAt map[int]float64, placed []int) []float64 {
	n := len(resMass)
	// Total modification mass at each position (0 = N-terminus)
	modAt := make([]float64, n+1)
	for pos, m := range fixedAt {
		modAt[pos] += m
	}
	for _, pos := range placed {
		modAt[pos] += g.modMass
	}

	isPlaced := make([]bool, n+1)
	for _, pos := range placed {
		isPlaced[pos] = true
	}

	// A loss applies to a fragment that contains a placed modification
	// on a residue of the loss group.
	lossApplies := func(loss neutralLoss, first, last int) bool {
		for pos := first; pos <= last; pos++ {
			if isPlaced[pos] && strings.IndexByte(loss.residues, g.peptide[pos-1]) >= 0 {
				return true
			}
		}
		return false
	}

	ions := make([]float64, 0, 2*(n-1)*(1+len(g.losses)))
	addIon := func(mass float64, first, last int) {
		ions = append(ions, mass)
		for _, loss := range g.losses {
			if lossApplies(loss, first, last) {
				ions = append(ions, mass+loss.mass)
			}
		}
	}

	// b series: residues 1..i plus the N-terminal modification
	bMass := massProton + modAt[0]
	for i := 1; i < n; i++ {
		bMass += resMass[i-1] + modAt[i]
		addIon(bMass, 1, i)
	}
	// y series: residues n-i+1..n plus water
	yMass := massProton + massH2O
	for i := 1; i < n; i++ {
		yMass += resMass[n-i] + modAt[n-i+1]
		addIon(yMass, n-i+1, n)
	}

	sort.Float64s(ions)
	return ions
}

// consumePeak matches one binned peak of the given rank against every
// signature's ladder. Within the tolerance window the nearest unmatched
// ion is paired greedily; an ion matches at most one peak and a peak
// consumes at most one ion per signature.
func (g *placementGen) consumePeak(mz float64, rank int) {
	for _, sig := range g.signatures {
		lo := sort.SearchFloat64s(sig.ions, mz-g.tolerance)
		best := -1
		bestDiff := math.MaxFloat64
		for i := lo; i < len(sig.ions) && sig.ions[i] <= mz+g.tolerance; i++ {
			if sig.matched[i] {
				continue
			}
			diff := math.Abs(sig.ions[i] - mz)
			if diff < bestDiff {
				best = i
				bestDiff = diff
			}
		}
		if best >= 0 {
			sig.matched[best] = true
			sig.counts[rank]++
		}
	}
	g.peaksConsumed++
}

// renderSequence annotates the peptide with the placed modification
// masses of a signature, e.g. AGS[79.9663]TPR.
func (g *placementGen) renderSequence(positions []int) string {
	var b strings.Builder
	next := 0
	for i := 0; i < len(g.peptide); i++ {
		b.WriteByte(g.peptide[i])
		if next < len(positions) && positions[next] == i+1 {
			fmt.Fprintf(&b, "[%g]", g.modMass)
			next++
		}
	}
	return b.String()
}
