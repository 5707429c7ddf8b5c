// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ptmloc/ascore/internal/ascore"
	"github.com/ptmloc/ascore/internal/mzml"
)

// Program name and version
const progName = "ascore"

var progVersion = `Unknown`

const (
	infoDefault = iota
	infoSilent
	infoVerbose
)

// Command line parameters
type params struct {
	mzMLFilename   *string
	outFilename    *string  // Filename where the JSON result will be written, empty for stdout
	peptide        *string  // Peptide sequence to localize on
	nMods          *int     // Number of unlocalized modifications
	modMass        *float64 // Mass of the unlocalized modification
	residues       *string  // Modifiable residue group
	fixedMods      *string  // Fixed modifications, mass@pos;mass@pos
	neutralLosses  *string  // Neutral losses, RESIDUES:mass;RESIDUES:mass
	binSize        *float64 // m/z width of a peak bin
	maxDepth       *int     // peaks kept per bin
	tolerance      *float64 // fragment match tolerance
	specIndex      *int     // spectrum index to score
	scanID         *string  // scan id to score (alternative to specIndex)
	verbosity      int      // verbosity of progress messages
	args           []string // additional values passed on the command line
}

type lossSpec struct {
	residues string
	mass     float64
}

// parseFixedMods parses a fixed-modification string like
// "57.021464@5;42.010565@0" into co-indexed position and mass slices.
// Position 0 denotes the N-terminus.
func parseFixedMods(s string) ([]int, []float64, error) {
	if s == `` {
		return nil, nil, nil
	}
	var positions []int
	var masses []float64
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == `` {
			continue
		}
		atParts := strings.Split(part, "@")
		if len(atParts) != 2 {
			return nil, nil, fmt.Errorf("invalid fixed modification %q, expected mass@position", part)
		}
		mass, err := strconv.ParseFloat(strings.TrimSpace(atParts[0]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid modification mass %q: %w", atParts[0], err)
		}
		pos, err := strconv.Atoi(strings.TrimSpace(atParts[1]))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid modification position %q: %w", atParts[1], err)
		}
		positions = append(positions, pos)
		masses = append(masses, mass)
	}
	return positions, masses, nil
}

// parseNeutralLosses parses a neutral-loss string like
// "STY:-97.976896;STY:-115.987" into loss specifications.
func parseNeutralLosses(s string) ([]lossSpec, error) {
	if s == `` {
		return nil, nil
	}
	var losses []lossSpec
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == `` {
			continue
		}
		colon := strings.LastIndex(part, ":")
		if colon <= 0 {
			return nil, fmt.Errorf("invalid neutral loss %q, expected RESIDUES:mass", part)
		}
		mass, err := strconv.ParseFloat(strings.TrimSpace(part[colon+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid neutral loss mass %q: %w", part[colon+1:], err)
		}
		losses = append(losses, lossSpec{
			residues: strings.TrimSpace(part[:colon]),
			mass:     mass,
		})
	}
	return losses, nil
}

// output is the JSON document written after scoring
type output struct {
	Peptide          string
	ScanID           string
	BestSequence     string
	BestScore        float64
	AScores          []float64
	AlternativeSites [][]int
	Signatures       []ascore.SignatureScore
}

func writeResult(w *os.File, out output) error {
	e := json.NewEncoder(w)
	e.SetIndent(``, `  `) // Make output easier to read for humans
	return e.Encode(out)
}

// scoreSpectrum runs one localization pass for the selected scan
func scoreSpectrum(mzML *mzml.MzML, scanIndex int, par params) (output, error) {
	var out output

	peaks, err := mzML.ReadScan(scanIndex)
	if err != nil {
		return out, fmt.Errorf("reading scan %d: %w", scanIndex, err)
	}
	mz := make([]float64, len(peaks))
	intens := make([]float64, len(peaks))
	for i, p := range peaks {
		mz[i] = p.Mz
		intens[i] = p.Intens
	}

	a, err := ascore.New(ascore.Config{
		BinSize:   *par.binSize,
		MaxDepth:  *par.maxDepth,
		Residues:  *par.residues,
		ModMass:   *par.modMass,
		Tolerance: *par.tolerance,
	})
	if err != nil {
		return out, err
	}
	losses, err := parseNeutralLosses(*par.neutralLosses)
	if err != nil {
		return out, err
	}
	for _, loss := range losses {
		a.AddNeutralLoss(loss.residues, loss.mass)
	}
	fixedPos, fixedMass, err := parseFixedMods(*par.fixedMods)
	if err != nil {
		return out, err
	}

	res, err := a.Score(mz, intens, *par.peptide, *par.nMods, fixedPos, fixedMass)
	if err != nil {
		return out, err
	}

	out.Peptide = *par.peptide
	out.ScanID, _ = mzML.ScanID(scanIndex)
	out.BestSequence = res.BestSequence()
	out.BestScore = res.BestScore()
	out.AScores = res.AScores()
	out.AlternativeSites = res.AlternativeSites()
	out.Signatures = res.Signatures()
	return out, nil
}

// sanatizeParams does some checks on parameters
func sanatizeParams(par *params) {
	exeName := filepath.Base(os.Args[0])

	if len(par.args) != 1 {
		fmt.Fprintf(os.Stderr, `Last argument must be name of mzML file.
Type %s --help for usage
`, exeName)
		os.Exit(2)
	}
	mzMLFile := par.args[0]
	par.mzMLFilename = &mzMLFile

	if *par.peptide == `` {
		fmt.Fprintf(os.Stderr, `Parameter 'peptide' is required.
Type %s --help for usage
`, exeName)
		os.Exit(2)
	}
	if *par.specIndex < 0 && *par.scanID == `` {
		fmt.Fprintf(os.Stderr, `One of 'spec' or 'scanid' is required.
Type %s --help for usage
`, exeName)
		os.Exit(2)
	}
}

func usage() {
	exeName := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr,
		`USAGE:
  %s [options] -peptide <sequence> -spec <index> <mzMLfile>

  This program localizes post-translational modifications on a peptide
  using the fragment peaks of one spectrum in an mzML file. It reports
  the best-supported placement, a confidence score per modified site
  (Ascore) and any alternative sites with tied evidence.

OPTIONS:
`, exeName)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr,
		`
USAGE EXAMPLES:
  %s -peptide AGSTPR -spec 2531 sample.mzML
    Localize one phosphorylation (the default modification mass) on the
    S/T/Y residues of AGSTPR against spectrum 2531, print JSON to stdout.

  %s -peptide AGSTPR -nmods 2 -fixedmods '57.021464@5' -loss 'STY:-97.976896' -spec 2531 -o out.json sample.mzML
    Idem with two unlocalized modifications, a fixed carbamidomethyl on
    position 5 and the phosphate neutral loss registered.
`, exeName, exeName)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	var par params

	par.peptide = flag.String("peptide", "",
		"peptide `sequence` carrying the modifications")
	par.nMods = flag.Int("nmods", 1,
		"`number` of unlocalized modifications to place")
	par.modMass = flag.Float64("modmass", 79.9663,
		"`mass` of the unlocalized modification")
	par.residues = flag.String("residues", "STY",
		"`group` of residue symbols eligible for the modification")
	par.fixedMods = flag.String("fixedmods", "",
		"fixed modifications, `format` mass@position;mass@position.\nPosition 0 denotes the N-terminus.")
	par.neutralLosses = flag.String("loss", "",
		"neutral losses, `format` RESIDUES:mass;RESIDUES:mass.\nApplied to fragments carrying a placed modification on one of RESIDUES.")
	par.binSize = flag.Float64("binsize", 100.0,
		"`width` of the m/z bins used for peak ranking")
	par.maxDepth = flag.Int("top", 10,
		"`number` of most intense peaks kept per m/z bin")
	par.tolerance = flag.Float64("tol", 0.5,
		"fragment match `tolerance` in m/z units")
	par.specIndex = flag.Int("spec", -1,
		"`index` of the spectrum to score")
	par.scanID = flag.String("scanid", "",
		"scan `id` of the spectrum to score (alternative to -spec)")
	par.outFilename = flag.String("o", "",
		"`filename` for JSON output (default stdout)")
	version := flag.Bool("version", false,
		`Show software version`)
	verbose := flag.Bool("verbose", false,
		`Print more verbose progress information`)
	quiet := flag.Bool("quiet", false,
		`Don't print any output except for errors`)
	flag.Usage = usage
	flag.Parse()
	if *version {
		fmt.Fprintf(os.Stderr, "%s version %s\n", progName, progVersion)
		return
	}
	if *verbose {
		par.verbosity = infoVerbose
	}
	if *quiet {
		par.verbosity = infoSilent
	}
	par.args = flag.Args()
	sanatizeParams(&par)

	f, err := os.Open(*par.mzMLFilename)
	if err != nil {
		log.Fatalf("Open %s: mzMLfile %v", *par.mzMLFilename, err)
	}
	defer f.Close()
	mzML, err := mzml.Read(f)
	if err != nil {
		log.Fatalf("mzml.Read: error return %v", err)
	}

	scanIndex := *par.specIndex
	if *par.scanID != `` {
		scanIndex, err = mzML.ScanIndex(*par.scanID)
		if err != nil {
			log.Fatalf("Scan id %s not found in %s", *par.scanID, *par.mzMLFilename)
		}
	}

	if par.verbosity == infoVerbose {
		msLevel, _ := mzML.MSLevel(scanIndex)
		centroid, _ := mzML.Centroid(scanIndex)
		fmt.Fprintf(os.Stderr, "Scoring spectrum %d (MS level %d, centroid %v)\n",
			scanIndex, msLevel, centroid)
	}

	out, err := scoreSpectrum(&mzML, scanIndex, par)
	if err != nil {
		log.Fatalf("scoring failed: %v", err)
	}

	w := os.Stdout
	if *par.outFilename != `` {
		w, err = os.Create(*par.outFilename)
		if err != nil {
			log.Fatalf("Create %s: %v", *par.outFilename, err)
		}
		defer w.Close()
	}
	if err := writeResult(w, out); err != nil {
		log.Fatalf("writing result: %v", err)
	}
	if par.verbosity != infoSilent && *par.outFilename != `` {
		fmt.Fprintf(os.Stderr, "Best placement %s (score %.2f)\n",
			out.BestSequence, out.BestScore)
	}
}
