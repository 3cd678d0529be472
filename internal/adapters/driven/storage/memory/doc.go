// Package memory provides in-memory implementations of the driven storage
// ports. They back tests and throwaway sessions; nothing is persisted.
package memory
