// Package domain defines the core business entities for faqrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A question/answer passage with its citation key
//   - IndexedEntry: A document and its embedding inside a collection
//   - RetrievedPassage: A passage selected as context for one question
//   - ConversationTurn: One message of a chat session
//   - AppSettings: Process configuration, built once at startup
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
