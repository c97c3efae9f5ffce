package analysis

import (
	"math"

	"profilelens/internal/types"
)

// sectionRequirement awards full points from minLength characters on and a
// proportional share below it
type sectionRequirement struct {
	name      string
	field     func(types.ProfileInput) string
	minLength int
	points    float64
}

var sectionRequirements = []sectionRequirement{
	{name: "headline", field: headline, minLength: 10, points: 20},
	{name: "summary", field: summary, minLength: 200, points: 25},
	{name: "experience", field: experience, minLength: 100, points: 25},
	{name: "skills", field: skills, minLength: 50, points: 20},
	{name: "education", field: education, minLength: 50, points: 10},
}

const (
	maxScore              = 100
	pointsPerStrength     = 2
	pointsPerImprovement  = 2
	maxStrengthBonus      = 10
	maxImprovementPenalty = 10
)

// SectionScore returns the unrounded points one section contributes
func SectionScore(content string, minLength int, points float64) float64 {
	n := length(content)
	switch {
	case n == 0:
		return 0
	case n < minLength:
		return float64(n) / float64(minLength) * points
	default:
		return points
	}
}

// CalculateProfileScore sums section completeness points, adds 2 per strength
// (at most 10), subtracts 2 per improvement (at most 10), clamps to 0..100 and
// rounds half to even. A failure while scoring yields 0.
func CalculateProfileScore(profile types.ProfileInput, strengths, improvements []string) (score int) {
	defer func() {
		if r := recover(); r != nil {
			score = 0
		}
	}()

	total := 0.0
	for _, req := range sectionRequirements {
		total += SectionScore(req.field(profile), req.minLength, req.points)
	}

	total += float64(min(len(strengths)*pointsPerStrength, maxStrengthBonus))
	total -= float64(min(len(improvements)*pointsPerImprovement, maxImprovementPenalty))

	total = math.Max(0, math.Min(total, maxScore))
	return int(math.RoundToEven(total))
}
