package common

import (
	"fmt"
	"io"

	"profilelens/internal/types"

	"github.com/manifoldco/promptui"
)

// profileField binds a prompt label to the ProfileInput field it fills
type profileField struct {
	label string
	set   func(*types.ProfileInput, string)
}

var profileFields = []profileField{
	{label: "Headline", set: func(p *types.ProfileInput, v string) { p.Headline = v }},
	{label: "Summary", set: func(p *types.ProfileInput, v string) { p.Summary = v }},
	{label: "Experience", set: func(p *types.ProfileInput, v string) { p.Experience = v }},
	{label: "Skills", set: func(p *types.ProfileInput, v string) { p.Skills = v }},
	{label: "Education", set: func(p *types.ProfileInput, v string) { p.Education = v }},
}

// PromptProfile asks for each profile section in order. Empty answers are
// allowed; the analysis reports missing sections as improvements.
func PromptProfile(stdin io.ReadCloser, stdout io.WriteCloser) (types.ProfileInput, error) {
	var profile types.ProfileInput

	for _, field := range profileFields {
		prompt := promptui.Prompt{
			Label:  field.label,
			Stdin:  stdin,
			Stdout: stdout,
		}

		value, err := prompt.Run()
		if err != nil {
			return types.ProfileInput{}, fmt.Errorf("reading %s: %w", field.label, err)
		}
		field.set(&profile, value)
	}

	return profile, nil
}
