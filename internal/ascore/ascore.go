// Package ascore localizes post-translational modifications on a
// peptide against an observed MS2 spectrum. Given candidate residues
// that could carry one or more unlocalized modifications of known mass,
// it scores every distinct placement with a binomial probability model
// over binned, intensity-ranked peaks and reports the best placement,
// its per-site confidence (Ascore) and any tied alternative sites.
package ascore

import "fmt"

// Config holds the construction parameters of a scorer.
type Config struct {
	BinSize   float64 // m/z width of a peak bin (typically 100)
	MaxDepth  int     // peaks retained per bin, also the deepest rank scored
	Residues  string  // residue group eligible for the modification, e.g. "STY"
	ModMass   float64 // mass of the unlocalized modification
	Tolerance float64 // fragment match tolerance in m/z units; 0 selects 0.5
}

// Ascore scores modification placements for one peptide/spectrum pair
// at a time. Each Score call fully replaces the internal state; an
// instance must not be shared by concurrent calls.
type Ascore struct {
	cfg    Config
	binner *binnedSpectrum
	gen    *placementGen
	sc     *scorer
}

// New validates the configuration and returns a ready scorer.
func New(cfg Config) (*Ascore, error) {
	if cfg.BinSize <= 0 {
		return nil, fmt.Errorf("%w: bin size %g", ErrConfiguration, cfg.BinSize)
	}
	if cfg.MaxDepth < 1 {
		return nil, fmt.Errorf("%w: peak depth %d", ErrConfiguration, cfg.MaxDepth)
	}
	if cfg.Tolerance < 0 {
		return nil, fmt.Errorf("%w: negative tolerance %g", ErrConfiguration, cfg.Tolerance)
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 0.5
	}
	if cfg.Residues == `` {
		return nil, fmt.Errorf("%w: empty residue group", ErrConfiguration)
	}
	for i := 0; i < len(cfg.Residues); i++ {
		if _, ok := aaMass[cfg.Residues[i]]; !ok {
			return nil, fmt.Errorf("%w: unknown residue %q in group",
				ErrConfiguration, cfg.Residues[i])
		}
	}
	a := &Ascore{
		cfg:    cfg,
		binner: newBinnedSpectrum(cfg.BinSize, cfg.MaxDepth),
		gen: &placementGen{
			residues:  cfg.Residues,
			modMass:   cfg.ModMass,
			tolerance: cfg.Tolerance,
			maxDepth:  cfg.MaxDepth,
		},
		sc: &scorer{
			binSize:   cfg.BinSize,
			tolerance: cfg.Tolerance,
			maxDepth:  cfg.MaxDepth,
		},
	}
	return a, nil
}

// AddNeutralLoss registers an additional theoretical-ion mass offset
// (usually negative) applied to fragments carrying a placed
// modification on one of the given residues. Losses are additive
// across calls and affect subsequent Score calls only.
func (a *Ascore) AddNeutralLoss(residues string, mass float64) {
	a.gen.losses = append(a.gen.losses, neutralLoss{residues: residues, mass: mass})
}

// Score runs one full localization pass: bin the spectrum, enumerate
// all placements of nMods unlocalized modifications over the eligible
// residues, match each placement's theoretical fragments against the
// ranked peaks, and score. The fixed-modification arrays are optional
// and must be co-indexed (position i carries mass i); position 0
// denotes the N-terminus. Either a fully populated Result is returned
// or an error; there are no partial results.
func (a *Ascore) Score(mz, intensity []float64, peptide string, nMods int,
	fixedPos []int, fixedMass []float64) (*Result, error) {
	if nMods < 0 {
		return nil, fmt.Errorf("%w: negative modification count %d",
			ErrConfiguration, nMods)
	}
	if len(fixedPos) != len(fixedMass) {
		return nil, fmt.Errorf("%w: %d fixed positions but %d masses",
			ErrConfiguration, len(fixedPos), len(fixedMass))
	}

	if err := a.binner.consume(mz, intensity); err != nil {
		return nil, err
	}
	if err := a.gen.consume(peptide, nMods, fixedPos, fixedMass); err != nil {
		return nil, err
	}
	it := a.binner.iter()
	for {
		peakMz, rank, ok := it.next()
		if !ok {
			break
		}
		a.gen.consumePeak(peakMz, rank)
	}
	return a.sc.score(a.gen)
}
