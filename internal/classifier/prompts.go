package classifier

import (
	"fmt"
	"strings"

	"github.com/a1zap/webhook-relay/internal/catalog"
)

const (
	triageTemperature float32 = 0.1
	triageMaxTokens           = 10

	precheckTemperature float32 = 0.1
	precheckMaxTokens           = 10

	mentionTemperature float32 = 0.3
	mentionMaxTokens           = 500

	alternativeTemperature float32 = 0.4
	alternativeMaxTokens           = 500
)

// The alternatives prompt only carries a sample of the catalog to keep it
// within budget.
const maxAlternativePromptRows = 50

const topicTriageTemplate = `You are a topic classifier for a food/restaurant recommendation assistant.

Question: "%s"

Determine if this question could reasonably be answered by someone who reviews restaurants and food.

ANSWER "YES" if the question is about:
- Food, restaurants, cafes, dining experiences
- Travel recommendations (where to visit/eat)
- Menu items, dishes, cuisines
- Restaurant recommendations or reviews
- Places to visit (implies food/dining context)
- Food-related activities or experiences

ANSWER "NO" ONLY if the question is clearly about:
- Weather, sports, politics, general trivia
- Non-food topics with no connection to dining
- Technical support, math problems, coding
- Topics completely unrelated to food/travel/dining

Context: Assume the user is asking with the intent to learn about food and places to eat.

Answer with ONLY "YES" or "NO":`

const discussionPrecheckTemplate = `Analyze this response and determine if it discusses specific restaurant names or place names.

Response: "%s"

Does this response mention or discuss specific restaurants, cafes, or food places by name?
Answer ONLY "YES" or "NO".

YES = response talks about specific named restaurants/places
NO = response is generic, just a greeting, clarification, or doesn't mention specific places

Answer:`

const mentionTemplate = `You are analyzing a response about restaurants and places in Vietnam.

RESPONSE TEXT:
%s

AVAILABLE RESTAURANT/PLACE NAMES:
%s

Task: Analyze this response and provide two pieces of information:

1. Which restaurants/places are ACTUALLY DISCUSSED OR RECOMMENDED?
2. Does the response say "I don't have what you're looking for" but could benefit from suggesting alternatives?

Rules for MENTIONED restaurants:
- ONLY include names that are specifically mentioned, discussed, or recommended
- The restaurant/place must be a key subject of the response, not just a passing mention
- Match names even if slightly misspelled or abbreviated in the response
- DO NOT include names from generic statements

Rules for SUGGESTING ALTERNATIVES:
- If the response says something like "Brandon doesn't cover that type of place" or "I don't have high-end restaurants"
- BUT there ARE potentially relevant alternatives in the data that could be helpful
- Set this to true so we can suggest related options with context

Format your response as:
MENTIONED: [list restaurant names, one per line, or "NONE"]
SUGGEST_ALTERNATIVES: [YES or NO]

Examples:
- "Brandon loved the pho at Pho 24"
  MENTIONED: Pho 24
  SUGGEST_ALTERNATIVES: NO

- "You should try Banh Mi 25"
  MENTIONED: Banh Mi 25
  SUGGEST_ALTERNATIVES: NO

- "Brandon doesn't cover high-end fine dining, he focuses on street food"
  MENTIONED: NONE
  SUGGEST_ALTERNATIVES: YES

- "What restaurants do you want to know about?"
  MENTIONED: NONE
  SUGGEST_ALTERNATIVES: NO

- "I can help you find information"
  MENTIONED: NONE
  SUGGEST_ALTERNATIVES: NO

Analyze the response above:`

const alternativeTemplate = `A user asked for restaurant recommendations, but the response indicates Brandon doesn't cover that exact type.

RESPONSE TEXT:
%s

AVAILABLE RESTAURANTS:
%s

Task: Suggest 2-3 restaurants from the list that are the CLOSEST match to what the user wanted, even if not perfect.

Also write a short context message (1 sentence) explaining why these alternatives might still be relevant.

Rules:
- Pick restaurants that are as close as possible to the user's request
- Prioritize quality, popular spots, or interesting alternatives
- If the user wanted "high-end" but we only have street food, suggest the nicest street food spots
- If the user wanted a specific cuisine we don't have, suggest similar cuisines

Format your response as:
CONTEXT: [One sentence explaining why these alternatives are suggested]
ALTERNATIVES:
[Restaurant name 1]
[Restaurant name 2]
[Restaurant name 3]

Example:
CONTEXT: These are Brandon's most upscale dining spots, though they're still casual and under $50
ALTERNATIVES:
Restaurant A
Restaurant B
Restaurant C

Analyze and suggest:`

func topicTriagePrompt(question string) string {
	return fmt.Sprintf(topicTriageTemplate, question)
}

func discussionPrecheckPrompt(response string) string {
	return fmt.Sprintf(discussionPrecheckTemplate, response)
}

func mentionPrompt(response string, names []string) string {
	numbered := make([]string, 0, len(names))
	for i, name := range names {
		numbered = append(numbered, fmt.Sprintf("%d. %s", i+1, name))
	}

	return fmt.Sprintf(mentionTemplate, response, strings.Join(numbered, "\n"))
}

func alternativePrompt(response string, records []catalog.Record) string {
	rows := make([]string, 0, len(records))
	for i, rec := range records {
		rows = append(rows, fmt.Sprintf("%d. %s (%s, %s)", i+1, rec.Name, rec.Category, rec.Locale))
	}

	return fmt.Sprintf(alternativeTemplate, response, strings.Join(rows, "\n"))
}
