package ascore

import "errors"

var (
	// ErrConfiguration means the scorer was constructed with an
	// unusable parameter (non-positive bin size, zero peak depth,
	// negative tolerance, empty residue group)
	ErrConfiguration = errors.New("ascore: invalid configuration")
	// ErrInvalidSpectrum means the peak arrays are malformed
	ErrInvalidSpectrum = errors.New("ascore: invalid spectrum")
	// ErrInvalidPeptide means the peptide sequence is empty or
	// contains an unknown residue symbol
	ErrInvalidPeptide = errors.New("ascore: invalid peptide")
	// ErrInsufficientCandidates means more unlocalized modifications
	// were requested than the peptide has eligible residues
	ErrInsufficientCandidates = errors.New("ascore: more modifications than candidate sites")
	// ErrEmptyMatchTable means scoring was invoked without any
	// consumed peaks
	ErrEmptyMatchTable = errors.New("ascore: no peaks consumed before scoring")
)
