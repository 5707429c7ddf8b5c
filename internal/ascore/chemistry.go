package ascore

import "fmt"

const massProton = float64(1.007276466879)
const massH2O = float64(18.0105647)

// Monoisotopic masses of amino acid residues (minus H2O)
var aaMass = map[byte]float64{
	'A': 71.0371138,
	'C': 103.0091848,
	'D': 115.0269430,
	'E': 129.0425931,
	'F': 147.0684139,
	'G': 57.0214637,
	'H': 137.0589119,
	'I': 113.0840640,
	'K': 128.0949630,
	'L': 113.0840640,
	'M': 131.0404849,
	'N': 114.0429274,
	'P': 97.0527638,
	'O': 237.1477269, // Pyrrolysine
	'Q': 128.0585775,
	'R': 156.1011110,
	'S': 87.0320284,
	'T': 101.0476785,
	'U': 144.9595902, // Selenocysteine
	'V': 99.0684139,
	'W': 186.0793129,
	'Y': 163.0633285,
}

// residueMasses converts a peptide sequence into per-residue masses.
// An unknown residue symbol or an empty sequence is rejected.
func residueMasses(peptide string) ([]float64, error) {
	if peptide == `` {
		return nil, fmt.Errorf("%w: empty sequence", ErrInvalidPeptide)
	}
	m := make([]float64, len(peptide))
	for i := 0; i < len(peptide); i++ {
		aam, ok := aaMass[peptide[i]]
		if !ok {
			return nil, fmt.Errorf("%w: unknown residue %q at position %d",
				ErrInvalidPeptide, peptide[i], i+1)
		}
		m[i] = aam
	}
	return m, nil
}
