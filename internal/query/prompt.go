package query

import "strings"

// PromptKind selects a prompt template.
type PromptKind string

const (
	PromptPlayer     PromptKind = "player_query"
	PromptComparison PromptKind = "comparison"
	PromptStatistics PromptKind = "statistics"
	PromptGeneral    PromptKind = "general"
)

// SystemInstruction frames every generative call.
const SystemInstruction = `You are a FC26 Career Mode Analyzer AI assistant.

Your role:
- Analyze EA Sports FC 26 Career Mode save data
- Answer questions about players, teams, matches, and statistics
- Provide insights based on the provided context
- Respond in Portuguese (Brazilian)

Your capabilities:
- Access to player stats, contracts, match history, growth records
- Can compare players, analyze trends, identify patterns
- Understand soccer/football terminology

Your constraints:
- ONLY use information provided in the context
- If data is not in context, say "Não tenho esses dados no momento"
- Be concise but informative
- Use markdown formatting for readability
- When players appear as "Player #ID", acknowledge this limitation naturally

Response format:
- Direct answer first
- Supporting data/evidence
- Additional insights if relevant
- Markdown tables for comparisons`

var templates = map[PromptKind]string{
	PromptPlayer: `Context about players:
{context}

User question: {query}

Answer in Portuguese, using the context above:`,
	PromptComparison: `Context for comparison:
{context}

User wants to compare: {query}

Provide a detailed comparison in Portuguese with a markdown table:`,
	PromptStatistics: `Statistical data:
{context}

User asks: {query}

Analyze and respond in Portuguese with key statistics:`,
	PromptGeneral: `Career save data:
{context}

User question: {query}

Answer in Portuguese based on the data provided:`,
}

// BuildPrompt fills the template for kind. Unknown kinds use PromptGeneral.
func BuildPrompt(kind PromptKind, question, context string) string {
	tmpl, ok := templates[kind]
	if !ok {
		tmpl = templates[PromptGeneral]
	}
	// Single pass so placeholders inside the context are left alone.
	return strings.NewReplacer("{context}", context, "{query}", question).Replace(tmpl)
}
