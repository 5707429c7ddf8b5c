package main

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFixedMods(t *testing.T) {
	// Test case 1: empty string parses to nothing
	pos, mass, err := parseFixedMods("")
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if pos != nil || mass != nil {
		t.Errorf("Expected nil slices, got: %v %v", pos, mass)
	}

	// Test case 2: two modifications, N-terminus included
	pos, mass, err = parseFixedMods("57.021464@5;42.010565@0")
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff([]int{5, 0}, pos); diff != "" {
		t.Errorf("Positions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{57.021464, 42.010565}, mass); diff != "" {
		t.Errorf("Masses mismatch (-want +got):\n%s", diff)
	}

	// Test case 3: whitespace and trailing separator are tolerated
	pos, mass, err = parseFixedMods(" 15.994915@8 ; ")
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if len(pos) != 1 || pos[0] != 8 || mass[0] != 15.994915 {
		t.Errorf("Got: %v %v", pos, mass)
	}

	// Test case 4: missing separator
	_, _, err = parseFixedMods("57.021464")
	if err == nil {
		t.Errorf("Expected error, got nil")
	}

	// Test case 5: non-numeric mass
	_, _, err = parseFixedMods("Carbamidomethyl@5")
	if err == nil {
		t.Errorf("Expected error, got nil")
	}

	// Test case 6: non-numeric position
	_, _, err = parseFixedMods("57.021464@C5")
	if err == nil {
		t.Errorf("Expected error, got nil")
	}
}

func TestParseNeutralLosses(t *testing.T) {
	// Test case 1: empty string parses to nothing
	losses, err := parseNeutralLosses("")
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if losses != nil {
		t.Errorf("Expected nil, got: %v", losses)
	}

	// Test case 2: single loss with negative mass
	losses, err = parseNeutralLosses("STY:-97.976896")
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if len(losses) != 1 {
		t.Fatalf("Expected 1 loss, got: %d", len(losses))
	}
	if losses[0].residues != "STY" {
		t.Errorf("Expected residues STY, got: %s", losses[0].residues)
	}
	if math.Abs(losses[0].mass+97.976896) > 1e-9 {
		t.Errorf("Expected mass -97.976896, got: %f", losses[0].mass)
	}

	// Test case 3: multiple losses
	losses, err = parseNeutralLosses("STY:-97.976896;M:-63.998285")
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if len(losses) != 2 {
		t.Fatalf("Expected 2 losses, got: %d", len(losses))
	}
	if losses[1].residues != "M" {
		t.Errorf("Expected residues M, got: %s", losses[1].residues)
	}

	// Test case 4: missing residue group
	_, err = parseNeutralLosses(":-97.976896")
	if err == nil {
		t.Errorf("Expected error, got nil")
	}

	// Test case 5: non-numeric mass
	_, err = parseNeutralLosses("STY:phospho")
	if err == nil {
		t.Errorf("Expected error, got nil")
	}
}
