package ascore

import (
	"fmt"
	"math"
	"sort"
)

type peak struct {
	mz     float64
	intens float64
}

// Upper bound on the number of bins a spectrum may span. Bounds the
// bin index before the float-to-int conversion, which overflows for
// very large finite m/z values.
const maxBins = 1 << 20

// binnedSpectrum holds one spectrum partitioned into fixed-width m/z
// bins. Within a bin, peaks are ordered by descending intensity and
// truncated to maxDepth; the position of a peak in this order is its
// rank (0..maxDepth-1).
type binnedSpectrum struct {
	binSize  float64
	maxDepth int
	bins     [][]peak
	numPeaks int
}

func newBinnedSpectrum(binSize float64, maxDepth int) *binnedSpectrum {
	return &binnedSpectrum{binSize: binSize, maxDepth: maxDepth}
}

// consume replaces the current state with a freshly binned spectrum.
// Mismatched array lengths and non-finite values are rejected.
func (s *binnedSpectrum) consume(mz, intensity []float64) error {
	if len(mz) != len(intensity) {
		return fmt.Errorf("%w: %d m/z values but %d intensities",
			ErrInvalidSpectrum, len(mz), len(intensity))
	}
	s.bins = nil
	s.numPeaks = 0

	for i := range mz {
		if math.IsNaN(mz[i]) || math.IsInf(mz[i], 0) ||
			math.IsNaN(intensity[i]) || math.IsInf(intensity[i], 0) {
			return fmt.Errorf("%w: non-finite value at peak %d",
				ErrInvalidSpectrum, i)
		}
		if mz[i] < 0 {
			return fmt.Errorf("%w: negative m/z at peak %d",
				ErrInvalidSpectrum, i)
		}
		if mz[i] >= float64(maxBins)*s.binSize {
			return fmt.Errorf("%w: m/z %g at peak %d exceeds the bin range",
				ErrInvalidSpectrum, mz[i], i)
		}
		binIdx := int(mz[i] / s.binSize)
		for binIdx >= len(s.bins) {
			s.bins = append(s.bins, nil)
		}
		s.bins[binIdx] = append(s.bins[binIdx], peak{mz: mz[i], intens: intensity[i]})
	}

	// Rank peaks within each bin. Equal intensities are ordered by
	// m/z so that binning does not depend on input order.
	for b := range s.bins {
		bin := s.bins[b]
		sort.Slice(bin, func(i, j int) bool {
			if bin[i].intens != bin[j].intens {
				return bin[i].intens > bin[j].intens
			}
			return bin[i].mz < bin[j].mz
		})
		if len(bin) > s.maxDepth {
			bin = bin[:s.maxDepth]
		}
		s.bins[b] = bin
		s.numPeaks += len(bin)
	}
	return nil
}

// peakIter enumerates the binned peaks bin-by-bin in m/z order,
// rank-by-rank within each bin. Forward-only; create a new iterator
// to restart.
type peakIter struct {
	s    *binnedSpectrum
	bin  int
	rank int
}

func (s *binnedSpectrum) iter() *peakIter {
	return &peakIter{s: s}
}

func (it *peakIter) next() (mz float64, rank int, ok bool) {
	for it.bin < len(it.s.bins) {
		if it.rank < len(it.s.bins[it.bin]) {
			p := it.s.bins[it.bin][it.rank]
			rank = it.rank
			it.rank++
			return p.mz, rank, true
		}
		it.bin++
		it.rank = 0
	}
	return 0, 0, false
}
