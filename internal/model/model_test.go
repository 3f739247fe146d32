package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEnums(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidConfidence("HIGH"))
	assert.True(t, ValidConfidence("LOW"))
	assert.False(t, ValidConfidence("VERY HIGH"))
	assert.False(t, ValidConfidence("high"))

	assert.True(t, ValidPricingBasis("GRADED_SLAB"))
	assert.True(t, ValidPricingBasis("LOOSE_CART"))
	assert.False(t, ValidPricingBasis("MINT"))

	assert.True(t, ValidCategory("Video Game Software"))
	assert.True(t, ValidCategory("Trading Cards"))
	assert.False(t, ValidCategory("video game software"))

	assert.True(t, ValidMatchConfidence("NONE"))
	assert.False(t, ValidMatchConfidence(""))
}

func TestFlagReview(t *testing.T) {
	t.Parallel()

	var a Analysis
	a.FlagReview("regional variant uncertain")
	assert.True(t, a.ManualReviewRecommended)
	assert.Equal(t, "regional variant uncertain", a.ManualReviewReason)

	// First reason sticks.
	a.FlagReview("something else")
	assert.Equal(t, "regional variant uncertain", a.ManualReviewReason)
	assert.Empty(t, a.Warnings)
}

func TestRecordSucceeded(t *testing.T) {
	t.Parallel()

	rec := InventoryRecord{Status: StatusSuccess, Analysis: &Analysis{}}
	assert.True(t, rec.Succeeded())

	// Status alone is not enough.
	rec.Analysis = nil
	assert.False(t, rec.Succeeded())

	rec = InventoryRecord{Status: StatusFailed, Analysis: &Analysis{}}
	assert.False(t, rec.Succeeded())
}

func TestEstimatedValue(t *testing.T) {
	t.Parallel()

	rec := InventoryRecord{Status: StatusSuccess, Analysis: &Analysis{EstimatedValueUSD: 89.99}}
	assert.InDelta(t, 89.99, rec.EstimatedValue(), 0.001)

	failed := InventoryRecord{Status: StatusFailed}
	assert.Zero(t, failed.EstimatedValue())
}

func TestGradeReadingFound(t *testing.T) {
	t.Parallel()

	var empty GradeReading
	assert.False(t, empty.Found())

	grade := 9.8
	withGrade := GradeReading{Grade: &grade}
	assert.True(t, withGrade.Found())

	withAuthority := GradeReading{GradingAuthority: "CGC"}
	assert.True(t, withAuthority.Found())
}
