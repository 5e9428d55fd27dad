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
//   - MediaSource: Browses and resolves media items
//   - BlobStore: Persistence for scan state and the index snapshot
//   - PageStore: Transcribed page persistence
//   - VisionService: Multimodal page transcription
//   - EmbeddingService: Vector embeddings for the search index
//   - PromptStore: User-customisable transcription prompts
//
// # Optional Interfaces
//
//   - MediaWatcher: Change notifications from the media source. Without
//     it, only interval and manual scans run.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
