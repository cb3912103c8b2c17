// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Build Path
//
//   - RecordSource: Reads species records from the corpus
//   - EmbeddingService: Turns chunk text into vectors
//   - VectorIndex: Flat inner-product index built in chunk order
//   - IndexStore: Persists and loads the index/metadata pair
//
// # Query Path
//
//   - EmbeddingService: Embeds the question with the build-time model
//   - LLMService: Generates the grounded answer
//   - PromptStore: Supplies the answer prompt template
//   - HistoryStore: Records answered questions (optional)
//
// # Configuration
//
//   - ConfigStore: Application configuration
//   - AIConfigValidator: Pings configured providers
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
