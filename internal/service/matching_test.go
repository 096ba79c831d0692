package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchScoreFullCompatibleOverlap(t *testing.T) {
	score := MatchScore(
		[]string{"wereng coklat", "walang sangit"},
		[]string{"wereng coklat", "walang sangit"},
		"insektisida",
	)
	assert.InDelta(t, 100, score, 0.001)
}

func TestMatchScoreDisjointLists(t *testing.T) {
	score := MatchScore(
		[]string{"blas", "antraknosa"},
		[]string{"wereng coklat"},
		"fungisida",
	)
	assert.Zero(t, score)
}

func TestMatchScorePartialOverlap(t *testing.T) {
	// One of two requested pests matches with full weight: 1.0/2 * 100 = 50
	score := MatchScore(
		[]string{"wereng coklat"},
		[]string{"wereng coklat", "blas"},
		"insektisida",
	)
	assert.InDelta(t, 50, score, 0.001)
}

func TestMatchScoreIncompatibleCategory(t *testing.T) {
	// A fungicide declaring an insect target gets only the incompatible weight
	score := MatchScore(
		[]string{"wereng coklat"},
		[]string{"wereng coklat"},
		"fungisida",
	)
	assert.InDelta(t, 10, score, 0.001)
}

func TestMatchScoreUnknownPestClass(t *testing.T) {
	// A pest outside the class index matches at half weight
	score := MatchScore(
		[]string{"hama misterius"},
		[]string{"hama misterius"},
		"insektisida",
	)
	assert.InDelta(t, 50, score, 0.001)
}

func TestMatchScoreNormalizesNames(t *testing.T) {
	score := MatchScore(
		[]string{"  Wereng Coklat "},
		[]string{"WERENG COKLAT"},
		"insektisida",
	)
	assert.InDelta(t, 100, score, 0.001)
}

func TestMatchScoreEmptyRequest(t *testing.T) {
	assert.Zero(t, MatchScore([]string{"wereng coklat"}, nil, "insektisida"))
}
