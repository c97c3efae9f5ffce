package types

import (
	"encoding/json"
	"strings"
	"time"
)

// ProfileInput is the five-field professional profile submitted for analysis
type ProfileInput struct {
	Headline   string `json:"headline" yaml:"headline"`
	Summary    string `json:"summary" yaml:"summary"`
	Experience string `json:"experience" yaml:"experience"`
	Skills     string `json:"skills" yaml:"skills"`
	Education  string `json:"education" yaml:"education"`
}

// Section is one named profile field
type Section struct {
	Name string
	Text string
}

// Sections returns the profile fields in their fixed evaluation order
func (p ProfileInput) Sections() []Section {
	return []Section{
		{Name: "headline", Text: p.Headline},
		{Name: "summary", Text: p.Summary},
		{Name: "experience", Text: p.Experience},
		{Name: "skills", Text: p.Skills},
		{Name: "education", Text: p.Education},
	}
}

// CombinedText labels each section and joins them with newlines. This is the
// exact text the summary and sentiment models receive.
func (p ProfileInput) CombinedText() string {
	lines := []string{
		"Headline: " + p.Headline,
		"Summary: " + p.Summary,
		"Experience: " + p.Experience,
		"Skills: " + p.Skills,
		"Education: " + p.Education,
	}
	return strings.Join(lines, "\n")
}

// AnalysisText is every field joined by a space and lowercased, the haystack
// for the heuristic rules.
func (p ProfileInput) AnalysisText() string {
	return strings.ToLower(strings.Join([]string{
		p.Headline, p.Summary, p.Experience, p.Skills, p.Education,
	}, " "))
}

// KeywordSet is a deduplicated set of raw-case keywords. Insertion order is
// kept so that output is stable, but callers must not rely on it.
type KeywordSet struct {
	items []string
	index map[string]struct{}
}

// NewKeywordSet builds a set from words, dropping duplicates
func NewKeywordSet(words ...string) KeywordSet {
	var ks KeywordSet
	for _, w := range words {
		ks.Add(w)
	}
	return ks
}

// Add inserts word unless it is empty or already present. Reports whether the set changed.
func (ks *KeywordSet) Add(word string) bool {
	if word == "" {
		return false
	}
	if ks.index == nil {
		ks.index = make(map[string]struct{})
	}
	if _, ok := ks.index[word]; ok {
		return false
	}
	ks.index[word] = struct{}{}
	ks.items = append(ks.items, word)
	return true
}

// Len returns the number of distinct keywords
func (ks KeywordSet) Len() int {
	return len(ks.items)
}

// Contains reports whether word is in the set (case-sensitive)
func (ks KeywordSet) Contains(word string) bool {
	_, ok := ks.index[word]
	return ok
}

// Slice returns a copy of the keywords, never nil
func (ks KeywordSet) Slice() []string {
	out := make([]string, len(ks.items))
	copy(out, ks.items)
	return out
}

func (ks KeywordSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ks.Slice())
}

func (ks *KeywordSet) UnmarshalJSON(data []byte) error {
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return err
	}
	*ks = NewKeywordSet(words...)
	return nil
}

// AnalysisResult is the aggregate produced once per analyzed profile
type AnalysisResult struct {
	Score        int        `json:"score" validate:"min=0,max=100"`
	Summary      string     `json:"summary"`
	Keywords     KeywordSet `json:"keywords"`
	Strengths    []string   `json:"strengths"`
	Improvements []string   `json:"improvements"`
	Suggestions  []string   `json:"suggestions"`
}

// AnalysisReport is an AnalysisResult stamped with the time it was rendered
type AnalysisReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Analysis    AnalysisResult `json:"analysis"`
}
