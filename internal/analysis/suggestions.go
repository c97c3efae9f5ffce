package analysis

import (
	"strings"

	"profilelens/internal/types"
)

// SuggestionFailure is the only suggestion returned when generation fails
const SuggestionFailure = "Unable to generate suggestions"

// Suggestion rules read the lowercased summary only, except where a rule
// names another section.
var suggestionRules = []rule{
	shorterThan("Expand your professional summary to be more comprehensive", summary, 200),
	{
		applies:  func(s subject) bool { return s.keywords < 5 },
		sentence: "Include more industry-specific keywords in your profile",
	},
	lacks("Add more quantifiable achievements to your experience", "achievement", "result"),
	shorterThan("Make your headline more descriptive and impactful", headline, 10),
	shorterThan("Add more detail to your work experience section", experience, 100),
	shorterThan("Expand your skills section with more specific competencies", skills, 50),
	{
		applies:  func(s subject) bool { return containsAny(s.text, "data") && !containsAny(s.text, "analytics") },
		sentence: "Consider adding data analytics experience if relevant",
	},
	{
		applies:  func(s subject) bool { return containsAny(s.text, "cloud") && !containsAny(s.text, "aws", "azure") },
		sentence: "Specify cloud platforms you're familiar with",
	},
	{
		applies:  func(s subject) bool { return containsAny(s.text, "agile") && !containsAny(s.text, "scrum") },
		sentence: "Mention specific agile methodologies you've used",
	},
	mentions("Include specific programming languages and frameworks", "tech", "software"),
	mentions("Add metrics about sales performance or market impact", "market", "sales"),
	mentions("Mention financial software or tools you're familiar with", "finance", "account"),
	lacks("Consider adding relevant professional certifications", "certification"),
	{
		applies: func(s subject) bool {
			return !containsAny(s.text, "education") || length(s.profile.Education) < 50
		},
		sentence: "Expand your education section with relevant details",
	},
}

// GenerateSuggestions produces actionable advice from the summary text,
// section lengths and the number of extracted keywords.
func GenerateSuggestions(profile types.ProfileInput, keywords types.KeywordSet) (suggestions []string) {
	defer func() {
		if r := recover(); r != nil {
			suggestions = []string{SuggestionFailure}
		}
	}()

	return evaluate(suggestionRules, subject{
		profile:  profile,
		text:     strings.ToLower(profile.Summary),
		keywords: keywords.Len(),
	})
}
