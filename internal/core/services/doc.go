// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Concurrency control for the
// document corpus lives here rather than in the adapters.
package services
