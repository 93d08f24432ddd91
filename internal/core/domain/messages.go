package domain

// Fixed user-visible messages. The UI always shows an answer, one of
// these, or both.
const (
	// NoContextMessage is returned without calling the model when retrieval is empty.
	NoContextMessage = "I could not find any relevant information to answer your question."

	// ApologyMessage replaces a failed buffered generation.
	ApologyMessage = "I'm sorry, but I encountered an error while trying to generate an answer. Please try again later."

	// StreamErrorMessage terminates a stream that failed part way through.
	StreamErrorMessage = "\n\n[An error occurred while generating the answer. The response may be incomplete.]"

	// IndexNotBuiltMessage tells the user how to create the index.
	IndexNotBuiltMessage = "The knowledge base has not been built yet. Run 'faqrag index build' first."
)
