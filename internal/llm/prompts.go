package llm

import (
	"fmt"
	"strings"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

const debateReplyPrompt = `You are debating as: %s

Topic: %s

%s
%s
User's argument: "%s"

Respond with a thoughtful debate response. Keep it concise but substantive (2-3 paragraphs max).
Make it conversational and engaging.`

const factCheckPrompt = `Fact-check this claim: "%s"

Respond ONLY with a JSON object. No markdown, no explanation:
{
  "verified": boolean,
  "confidence": number (0-1),
  "explanation": "brief explanation",
  "sources": [{"title": "source title", "url": "source url", "snippet": "brief quote"}]
}

Be maximally truth-seeking. If the claim is unverifiable, set verified to false.`

const sentimentPrompt = `Analyze this response for calmness in a debate context: "%s"

Respond ONLY with a JSON object. No markdown, no explanation:
{
  "calm_words": ["list", "of", "calm", "words", "found"],
  "aggressive_words": ["list", "of", "aggressive", "words", "found"],
  "score": 0.0 to 1.0 (1.0 = very calm, 0.0 = very aggressive)
}

Calm indicators: %s
Aggressive indicators: %s, "arrogant", "condescending"`

const trollPrompt = `You are an angry internet troll in a debate about %s. The user just responded: "%s"

Current user calm score: %.0f%% (lower = more agitated)
Your current mood: %s
%s
Respond as an internet troll who is getting increasingly frustrated. Make it provocative but not completely unhinged. Keep it 1-2 sentences. Your goal is to test the user's de-escalation skills.

Examples of troll responses:
- "That's literally the dumbest thing I've ever heard. Are you even trying?"
- "You clearly have no idea what you're talking about. Go back to school."
- "This is why I hate debating with idiots like you."`

func steelManInstruction(mode domain.SteelManMode) string {
	switch mode {
	case domain.SteelManStrong:
		return "Respond as a strong steel-manned version of this persona - acknowledge the user's strongest arguments and build upon them constructively."
	case domain.SteelManStraw:
		return "Respond as a straw-man version of this persona - use weaker arguments and logical fallacies."
	default:
		return "Respond authentically as this persona with balanced arguments."
	}
}

// DebateReplyPrompt builds the persona reply prompt. history is the debate so
// far, oldest first; it may be empty.
func DebateReplyPrompt(persona domain.Persona, topic string, steelManLevel float64, history []domain.DebateMessage, userText string) string {
	who := persona.Name
	if persona.Description != "" {
		who = fmt.Sprintf("%s. %s", who, persona.Description)
	}

	var transcript string
	if len(history) > 0 {
		var sb strings.Builder
		sb.WriteString("\nDebate so far:\n")
		for _, m := range history {
			speaker := "User"
			if m.SenderType == domain.SenderAI {
				speaker = "You"
			}
			fmt.Fprintf(&sb, "%s: %s\n", speaker, m.Content)
		}
		transcript = sb.String()
	}

	return fmt.Sprintf(debateReplyPrompt, who, topic, steelManInstruction(domain.SteelManTier(steelManLevel)), transcript, userText)
}

func FactCheckPrompt(claim string) string {
	return fmt.Sprintf(factCheckPrompt, claim)
}

func SentimentPrompt(text string) string {
	return fmt.Sprintf(sentimentPrompt, text, quoteList(domain.CalmWords), quoteList(domain.AggressiveWords))
}

// TrollPrompt builds the troll's next-line prompt. turns are the session's
// previous exchanges, oldest first.
func TrollPrompt(scenario string, calm float64, turns []domain.DeEscalationTurn, userText string) string {
	var history string
	if len(turns) > 0 {
		var sb strings.Builder
		sb.WriteString("\nConversation history:\n")
		for _, t := range turns {
			fmt.Fprintf(&sb, "Troll: %s\nUser: %s\n", t.PromptText, t.UserText)
		}
		history = sb.String()
	}
	return fmt.Sprintf(trollPrompt, scenario, userText, calm*100, domain.EscalationLevel(calm), history)
}

func quoteList(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + w + `"`
	}
	return strings.Join(quoted, ", ")
}
