package models

import "testing"

func TestChainValidate_MismatchedLengthsError(t *testing.T) {
	c := &Chain{Sequence: []string{"A", "B"}, Levels: []ConicalCategory{LevelL0}}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for mismatched sequence/levels length")
	}
}

func TestChainValidate_NonIncreasingRankPasses(t *testing.T) {
	c := &Chain{Sequence: []string{"A", "B", "C"}, Levels: []ConicalCategory{LevelLW, LevelL2, LevelL0}}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected non-increasing rank sequence to validate, got %v", err)
	}
}

func TestChainValidate_IncreasingRankErrors(t *testing.T) {
	c := &Chain{Sequence: []string{"A", "B"}, Levels: []ConicalCategory{LevelL0, LevelLW}}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error: level[0] < level[1] violates the non-increasing invariant")
	}
}

func TestChainValidate_UnresolvedCategorySkipsCheck(t *testing.T) {
	c := &Chain{Sequence: []string{"A", "B"}, Levels: []ConicalCategory{"unresolved_category", LevelL0}}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected unresolved rank reference to be skipped, got %v", err)
	}
}
