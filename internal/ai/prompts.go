package ai

// llmTask is the inference task a generative backend emulates for a model ID
type llmTask int

const (
	llmSummary llmTask = iota
	llmSentiment
	llmKeywords
)

func (t llmTask) String() string {
	switch t {
	case llmSummary:
		return "summarization"
	case llmSentiment:
		return "sentiment"
	case llmKeywords:
		return "keyword_extraction"
	default:
		return "unknown"
	}
}

// SystemPrompt is shared by every generative backend
const SystemPrompt = `You are a careful career coach reviewing professional networking profiles.
You only use facts present in the provided text. You never invent employers, titles, skills or dates.
You always answer with a single JSON object and nothing else.`

// userPrompts hold one %s placeholder for the profile text
var userPrompts = map[llmTask]string{
	llmSummary: `Summarize the following professional profile in two to four sentences written in the third person.
Focus on seniority, domain, core skills and notable results.

Return JSON exactly of the form {"summary_text": "<summary>"}.

PROFILE TEXT:
%s`,

	llmSentiment: `Rate the overall tone of the following profile text on a scale of 1 to 5 stars,
where 1 is very negative or unsure and 5 is very positive and confident.

Return JSON exactly of the form {"stars": <integer 1-5>, "confidence": <number between 0 and 1>}.

PROFILE TEXT:
%s`,

	llmKeywords: `Extract up to ten keywords or short key phrases that best describe the professional
skills, roles and domains in the following text. Use lowercase and the wording found in the text.

Return JSON exactly of the form {"keywords": ["<keyword>", ...]}. Return an empty list if none apply.

TEXT:
%s`,
}
