package ai

import (
	"fmt"

	"github.com/go-openapi/strfmt"

	"github.com/light11014/Moodmate-Backend/internal/model"
)

var styleInstructions = map[model.FeedbackStyle]string{
	model.StyleEncouraging: "Respond warmly and encouragingly. Highlight what went well and cheer the writer on.",
	model.StyleHonest:      "Respond honestly and constructively. Point out patterns worth changing without being harsh.",
	model.StyleEmpathetic:  "Respond with deep empathy. Acknowledge the writer's feelings before anything else.",
}

// SummaryPrompt asks for a short neutral summary of one diary entry.
func SummaryPrompt(content string) string {
	return "Summarize the following diary entry in two or three sentences. " +
		"Capture the main events and the writer's dominant emotions.\n\nDiary:\n" + content
}

// FeedbackPrompt asks for a reply to the diary in the given style.
func FeedbackPrompt(content string, style model.FeedbackStyle) string {
	instr, ok := styleInstructions[style]
	if !ok {
		instr = styleInstructions[model.StyleEncouraging]
	}
	return "You are MoodMate, a supportive journaling companion. " + instr +
		" Keep the reply under 150 words.\n\nDiary:\n" + content
}

// PeriodSummaryPrompt asks for an overview of the summaries written between start and end.
func PeriodSummaryPrompt(combined string, start, end strfmt.Date) string {
	return fmt.Sprintf("The following are daily diary summaries written between %s and %s. "+
		"Write an overview of this period in one paragraph.\n\nSummaries:\n%s", start.String(), end.String(), combined)
}

// EmotionalPatternPrompt asks for recurring emotions across summaries.
func EmotionalPatternPrompt(combined string) string {
	return "Identify the recurring emotional patterns in these diary summaries, " +
		"including triggers and how the mood changes over time.\n\nSummaries:\n" + combined
}

// GrowthPatternPrompt asks for signs of personal growth across summaries.
func GrowthPatternPrompt(combined string) string {
	return "Describe signs of personal growth or change visible in these diary summaries.\n\nSummaries:\n" + combined
}

// RecommendationsPrompt asks for concrete suggestions.
func RecommendationsPrompt(combined string) string {
	return "Based on these diary summaries, suggest three concrete, gentle actions " +
		"the writer could take next.\n\nSummaries:\n" + combined
}
