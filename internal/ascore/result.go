package ascore

// SignatureScore is one row of the per-signature diagnostic table.
type SignatureScore struct {
	Positions      []int     // placed modification positions, ascending
	Counts         []int     // cumulative match count per depth
	Scores         []float64 // per-depth binomial scores
	WeightedScore  float64
	TotalFragments int
	Sequence       string // peptide with placed positions annotated
}

// Result holds everything derived from one scoring pass. It is
// immutable; accessors return copies so the caller may retain the
// Result independent of the scorer.
type Result struct {
	bestSequence string
	bestScore    float64
	siteScores   []float64
	altSites     [][]int
	signatures   []SignatureScore
}

// BestSequence returns the peptide with the winning placement
// annotated, e.g. AGS[79.9663]TPR.
func (r *Result) BestSequence() string { return r.bestSequence }

// BestScore returns the weighted score of the winning placement.
func (r *Result) BestScore() float64 { return r.bestScore }

// AScores returns the localization confidence per placed site, ordered
// by position in the peptide. Empty when no modification was placed.
func (r *Result) AScores() []float64 {
	return append([]float64(nil), r.siteScores...)
}

// AlternativeSites returns, per placed site, the candidate positions
// that tie the best placement's match evidence when substituted for
// that site.
func (r *Result) AlternativeSites() [][]int {
	alt := make([][]int, len(r.altSites))
	for i := range r.altSites {
		alt[i] = append([]int(nil), r.altSites[i]...)
	}
	return alt
}

// Signatures returns the full diagnostic table, one row per evaluated
// placement.
func (r *Result) Signatures() []SignatureScore {
	table := make([]SignatureScore, len(r.signatures))
	for i, s := range r.signatures {
		table[i] = SignatureScore{
			Positions:      append([]int(nil), s.Positions...),
			Counts:         append([]int(nil), s.Counts...),
			Scores:         append([]float64(nil), s.Scores...),
			WeightedScore:  s.WeightedScore,
			TotalFragments: s.TotalFragments,
			Sequence:       s.Sequence,
		}
	}
	return table
}
