// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Extractor: Converts a file of one format into plain text
//   - ExtractorRegistry: Selects an extractor by file extension
//   - Chunker: Splits extracted text into chunks
//   - MetadataStore: Document record persistence (JSON file or SQLite)
//   - SidecarStore: Per-document chunk sequence persistence
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
