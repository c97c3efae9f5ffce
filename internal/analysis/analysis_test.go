package analysis

import (
	"strings"
	"testing"

	"profilelens/internal/types"

	"github.com/stretchr/testify/assert"
)

func pad(s string, n int) string {
	return s + strings.Repeat(".", n-len(s))
}

// engineerProfile has a 250 character summary, 150 character experience and
// short skills and education sections.
func engineerProfile() types.ProfileInput {
	return types.ProfileInput{
		Headline:   "Senior Engineer",
		Summary:    pad("Engineering leader with leadership of a platform team", 250),
		Experience: pad("Delivered an achievement award winning payments platform", 150),
		Skills:     "Python, Go, distributed systems",
		Education:  "BS Computer Science",
	}
}

func TestAnalyzeStrengthsAndImprovements(t *testing.T) {
	strengths, improvements := AnalyzeStrengthsAndImprovements(engineerProfile(), 3.0)

	assert.Equal(t, []string{
		"Strong leadership and management experience",
		"Technical proficiency and development skills",
		"Team collaboration and interpersonal skills",
		"Track record of achievements and results",
	}, strengths)

	assert.Equal(t, []string{
		"Consider adding relevant professional certifications",
		"Include volunteer work or community involvement",
		"Add mentoring or teaching experience",
		"Add more specific skills and areas of expertise",
		"Highlight your professional network and connections",
		"Add your career goals and objectives",
		"Expand your skills section with more specific competencies",
		"Expand your education section with more relevant details",
	}, improvements)
}

func TestSentimentRules(t *testing.T) {
	tests := []struct {
		name              string
		sentiment         float64
		expectStrength    bool
		expectImprovement bool
	}{
		{name: "negative tone", sentiment: 2.0, expectImprovement: true},
		{name: "neutral fallback", sentiment: 3.0},
		{name: "exactly four", sentiment: 4.0},
		{name: "confident tone", sentiment: 4.5, expectStrength: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strengths, improvements := AnalyzeStrengthsAndImprovements(engineerProfile(), tt.sentiment)
			assert.Equal(t, tt.expectStrength, contains(strengths, PositiveToneStrength))
			assert.Equal(t, tt.expectImprovement, contains(improvements, PositiveLanguageAdvice))
		})
	}
}

func TestComprehensiveExperienceNeedsWordAndLength(t *testing.T) {
	profile := types.ProfileInput{Experience: pad("Ten years of experience", 101)}
	strengths, _ := AnalyzeStrengthsAndImprovements(profile, 3)
	assert.Contains(t, strengths, "Comprehensive work experience")

	profile.Experience = pad("Ten years of experience", 100)
	strengths, _ = AnalyzeStrengthsAndImprovements(profile, 3)
	assert.NotContains(t, strengths, "Comprehensive work experience")
}

func TestEmptyProfileHeuristics(t *testing.T) {
	strengths, improvements := AnalyzeStrengthsAndImprovements(types.ProfileInput{}, 3)
	assert.NotNil(t, strengths)
	assert.Empty(t, strengths)
	assert.Len(t, improvements, 11)
}

func TestSectionScore(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		minLength int
		points    float64
		expected  float64
	}{
		{name: "empty", length: 0, minLength: 10, points: 20, expected: 0},
		{name: "half headline", length: 5, minLength: 10, points: 20, expected: 10},
		{name: "full headline", length: 10, minLength: 10, points: 20, expected: 20},
		{name: "long headline", length: 80, minLength: 10, points: 20, expected: 20},
		{name: "summary one short", length: 199, minLength: 200, points: 25, expected: 24.875},
		{name: "summary at threshold", length: 200, minLength: 200, points: 25, expected: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Repeat("a", tt.length)
			assert.InDelta(t, tt.expected, SectionScore(content, tt.minLength, tt.points), 1e-9)
		})
	}
}

func TestSectionScoreCountsCharacters(t *testing.T) {
	assert.InDelta(t, 10.0, SectionScore("ééééé", 10, 20), 1e-9)
}

func TestCalculateProfileScore(t *testing.T) {
	full := types.ProfileInput{
		Headline:   strings.Repeat("h", 10),
		Summary:    strings.Repeat("s", 200),
		Experience: strings.Repeat("e", 100),
		Skills:     strings.Repeat("k", 50),
		Education:  strings.Repeat("d", 50),
	}
	many := []string{"a", "b", "c", "d", "e", "f", "g"}

	tests := []struct {
		name         string
		profile      types.ProfileInput
		strengths    []string
		improvements []string
		expected     int
	}{
		{name: "empty profile", profile: types.ProfileInput{}, expected: 0},
		{name: "clamped at zero", profile: types.ProfileInput{}, improvements: many, expected: 0},
		{name: "full sections", profile: full, expected: 100},
		{name: "clamped at hundred", profile: full, strengths: many, expected: 100},
		{name: "penalty capped at ten", profile: full, improvements: many, expected: 90},
		{name: "headline of five", profile: types.ProfileInput{Headline: "abcde"}, expected: 10},
		{name: "bonus per strength", profile: types.ProfileInput{Headline: "abcde"}, strengths: []string{"a", "b"}, expected: 14},
		{name: "half rounds down to even", profile: types.ProfileInput{Summary: strings.Repeat("s", 4)}, expected: 0},
		{name: "one and a half rounds up to even", profile: types.ProfileInput{Summary: strings.Repeat("s", 12)}, expected: 2},
		{name: "two and a half rounds down to even", profile: types.ProfileInput{Summary: strings.Repeat("s", 20)}, expected: 2},
		{name: "summary 199 in full profile", profile: withSummary(full, 199), expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := CalculateProfileScore(tt.profile, tt.strengths, tt.improvements)
			assert.Equal(t, tt.expected, score)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		})
	}
}

func withSummary(p types.ProfileInput, n int) types.ProfileInput {
	p.Summary = strings.Repeat("s", n)
	return p
}

func TestSummaryBoundaryInAggregate(t *testing.T) {
	profile := types.ProfileInput{Summary: strings.Repeat("s", 199)}
	// 24.875 rounds to 25 only at the aggregate level
	assert.Equal(t, 25, CalculateProfileScore(profile, nil, nil))

	profile.Summary = strings.Repeat("s", 200)
	assert.Equal(t, 25, CalculateProfileScore(profile, nil, nil))

	// 24.875 - 2 = 22.875
	profile.Summary = strings.Repeat("s", 199)
	assert.Equal(t, 23, CalculateProfileScore(profile, nil, []string{"x"}))
}

func TestEndToEndHeuristicScore(t *testing.T) {
	profile := engineerProfile()
	strengths, improvements := AnalyzeStrengthsAndImprovements(profile, 3.0)

	// sections 20 + 25 + 25 + 12.4 + 3.8, strengths +8, improvements -10
	assert.Equal(t, 84, CalculateProfileScore(profile, strengths, improvements))
}

func TestGenerateSuggestions(t *testing.T) {
	tests := []struct {
		name     string
		profile  types.ProfileInput
		keywords types.KeywordSet
		expected []string
	}{
		{
			name:     "empty profile",
			profile:  types.ProfileInput{},
			keywords: types.NewKeywordSet("a"),
			expected: []string{
				"Expand your professional summary to be more comprehensive",
				"Include more industry-specific keywords in your profile",
				"Add more quantifiable achievements to your experience",
				"Make your headline more descriptive and impactful",
				"Add more detail to your work experience section",
				"Expand your skills section with more specific competencies",
				"Consider adding relevant professional certifications",
				"Expand your education section with relevant details",
			},
		},
		{
			name: "complete profile with domain hints",
			profile: types.ProfileInput{
				Headline:   "Principal Data Engineer",
				Summary:    pad("Cloud data platform lead on an Agile software team; results-driven; certification holder; education advocate", 200),
				Experience: strings.Repeat("e", 100),
				Skills:     strings.Repeat("k", 50),
				Education:  strings.Repeat("d", 50),
			},
			keywords: types.NewKeywordSet("a", "b", "c", "d", "e"),
			expected: []string{
				"Consider adding data analytics experience if relevant",
				"Specify cloud platforms you're familiar with",
				"Mention specific agile methodologies you've used",
				"Include specific programming languages and frameworks",
			},
		},
		{
			name: "qualifiers silence domain hints",
			profile: types.ProfileInput{
				Headline:   "Sales and finance lead",
				Summary:    pad("Data analytics on AWS cloud with Agile Scrum; market results; accounting; certification; education", 200),
				Experience: strings.Repeat("e", 100),
				Skills:     strings.Repeat("k", 50),
				Education:  strings.Repeat("d", 49),
			},
			keywords: types.NewKeywordSet("a", "b", "c", "d", "e", "f"),
			expected: []string{
				"Add metrics about sales performance or market impact",
				"Mention financial software or tools you're familiar with",
				"Expand your education section with relevant details",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateSuggestions(tt.profile, tt.keywords))
		})
	}
}

func TestSuggestionsReadSummaryOnly(t *testing.T) {
	profile := types.ProfileInput{
		Headline:   "Achievement-oriented certification holder",
		Summary:    "short",
		Experience: "results",
	}
	suggestions := GenerateSuggestions(profile, types.NewKeywordSet())
	assert.Contains(t, suggestions, "Add more quantifiable achievements to your experience")
	assert.Contains(t, suggestions, "Consider adding relevant professional certifications")
}

func TestRuleEnginesAreDeterministic(t *testing.T) {
	profile := engineerProfile()
	keywords := types.NewKeywordSet("go", "python")

	s1, i1 := AnalyzeStrengthsAndImprovements(profile, 4.5)
	s2, i2 := AnalyzeStrengthsAndImprovements(profile, 4.5)
	assert.Equal(t, s1, s2)
	assert.Equal(t, i1, i2)

	assert.Equal(t, CalculateProfileScore(profile, s1, i1), CalculateProfileScore(profile, s2, i2))
	assert.Equal(t, GenerateSuggestions(profile, keywords), GenerateSuggestions(profile, keywords))
}

func TestRuleFailureFallbacks(t *testing.T) {
	boom := rule{applies: func(subject) bool { panic("boom") }, sentence: "never"}

	saved := strengthRules
	strengthRules = append([]rule{boom}, saved...)
	strengths, improvements := AnalyzeStrengthsAndImprovements(engineerProfile(), 3)
	strengthRules = saved
	assert.Equal(t, []string{}, strengths)
	assert.Equal(t, []string{}, improvements)

	savedSuggestions := suggestionRules
	suggestionRules = []rule{boom}
	suggestions := GenerateSuggestions(engineerProfile(), types.NewKeywordSet())
	suggestionRules = savedSuggestions
	assert.Equal(t, []string{SuggestionFailure}, suggestions)

	savedSections := sectionRequirements
	sectionRequirements = []sectionRequirement{{field: func(types.ProfileInput) string { panic("boom") }}}
	score := CalculateProfileScore(engineerProfile(), nil, nil)
	sectionRequirements = savedSections
	assert.Equal(t, 0, score)
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
