package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// Templates use {{query}}, {{history}}, {{context}} and {{language}} placeholders.
const (
	// PromptQueryRewrite turns a follow-up into a standalone question.
	// Placeholders: history, query.
	PromptQueryRewrite = "query_rewrite"

	// PromptAnswerGrounded answers from retrieved context with citations.
	// Placeholders: history, context, query, language.
	PromptAnswerGrounded = "answer_grounded"

	// PromptAnswerNoContext tells the model nothing relevant was found.
	// Placeholders: history, query, language.
	PromptAnswerNoContext = "answer_no_context"
)
