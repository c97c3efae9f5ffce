// Package analysis holds the deterministic rule engines that judge a profile
// without calling any external service. Every function is pure and safe for
// concurrent use.
package analysis

import (
	"strings"
	"unicode/utf8"

	"profilelens/internal/types"
)

// subject is what a rule looks at: the profile plus one lowercased text view
type subject struct {
	profile  types.ProfileInput
	text     string
	keywords int
}

// rule appends sentence when applies holds. Tables of rules are evaluated in
// order so output order is stable for identical input.
type rule struct {
	applies  func(s subject) bool
	sentence string
}

func evaluate(rules []rule, s subject) []string {
	out := []string{}
	for _, r := range rules {
		if r.applies(s) {
			out = append(out, r.sentence)
		}
	}
	return out
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

// mentions matches when the text contains any needle
func mentions(sentence string, needles ...string) rule {
	return rule{
		applies:  func(s subject) bool { return containsAny(s.text, needles...) },
		sentence: sentence,
	}
}

// lacks matches when the text contains none of the needles
func lacks(sentence string, needles ...string) rule {
	return rule{
		applies:  func(s subject) bool { return !containsAny(s.text, needles...) },
		sentence: sentence,
	}
}

// shorterThan matches when the selected field has fewer than n characters
func shorterThan(sentence string, field func(types.ProfileInput) string, n int) rule {
	return rule{
		applies:  func(s subject) bool { return length(field(s.profile)) < n },
		sentence: sentence,
	}
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

func headline(p types.ProfileInput) string   { return p.Headline }
func summary(p types.ProfileInput) string    { return p.Summary }
func experience(p types.ProfileInput) string { return p.Experience }
func skills(p types.ProfileInput) string     { return p.Skills }
func education(p types.ProfileInput) string  { return p.Education }
