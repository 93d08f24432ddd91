// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Maps text to vectors, shared by ingestion and queries
//   - VectorStore: Persists collections of embedded passages
//   - LLMService: Generates answers and rewrites follow-up questions
//   - PromptStore: Supplies prompt templates
//   - ConfigStore: Application configuration
//   - CorpusLoader: Reads the question/answer corpus
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingCache: Memoises query embeddings. Without it every query is embedded.
//   - FeedbackSink: Records answer ratings. Without it feedback is rejected.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
