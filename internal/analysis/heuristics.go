package analysis

import "profilelens/internal/types"

// Sentiment rules
const (
	PositiveToneStrength   = "Strong positive and confident tone"
	PositiveLanguageAdvice = "Consider using more positive and confident language"
	LowSentimentThreshold  = 3.0
	HighSentimentThreshold = 4.0
)

var strengthRules = []rule{
	mentions("Strong leadership and management experience", "leadership", "manage", "direct"),
	mentions("Project and program management expertise", "project", "program"),
	mentions("Technical proficiency and development skills", "technical", "develop", "engineer"),
	mentions("Innovative and creative problem-solving abilities", "innov", "creativ"),
	mentions("Strong communication and presentation skills", "communicat", "present"),
	mentions("Team collaboration and interpersonal skills", "team", "collaborat"),
	mentions("Analytical and research capabilities", "analyt", "research"),
	mentions("Strategic planning and execution", "strateg", "plan"),
	mentions("Strong educational background", "degree", "bachelor", "master", "phd"),
	mentions("Professional certifications and qualifications", "certification", "certified"),
	{
		applies: func(s subject) bool {
			return containsAny(s.text, "experience") && length(s.profile.Experience) > 100
		},
		sentence: "Comprehensive work experience",
	},
	mentions("Track record of achievements and results", "achievement", "result"),
}

var improvementRules = []rule{
	lacks("Consider adding relevant professional certifications", "certification", "certified"),
	lacks("Include volunteer work or community involvement", "volunteer", "community"),
	lacks("Add mentoring or teaching experience", "mentor", "teach"),
	lacks("Include more quantifiable achievements and results", "achievement", "result"),
	lacks("Add more specific skills and areas of expertise", "skill", "expertise"),
	lacks("Highlight your professional network and connections", "network", "connect"),
	lacks("Add your career goals and objectives", "goal", "objective"),
	shorterThan("Make your headline more descriptive and impactful", headline, 10),
	shorterThan("Add more detail to your work experience section", experience, 100),
	shorterThan("Expand your skills section with more specific competencies", skills, 50),
	shorterThan("Expand your education section with more relevant details", education, 50),
}

// AnalyzeStrengthsAndImprovements infers strengths and improvement areas from
// keyword presence and section lengths across the whole profile, then folds in
// the sentiment rating: below 3 adds a tone improvement, above 4 a tone strength.
// A failure inside the rules yields two empty lists.
func AnalyzeStrengthsAndImprovements(profile types.ProfileInput, sentiment float64) (strengths, improvements []string) {
	defer func() {
		if r := recover(); r != nil {
			strengths, improvements = []string{}, []string{}
		}
	}()

	s := subject{profile: profile, text: profile.AnalysisText()}
	strengths = evaluate(strengthRules, s)
	improvements = evaluate(improvementRules, s)

	switch {
	case sentiment < LowSentimentThreshold:
		improvements = append(improvements, PositiveLanguageAdvice)
	case sentiment > HighSentimentThreshold:
		strengths = append(strengths, PositiveToneStrength)
	}

	return strengths, improvements
}
