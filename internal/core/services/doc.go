// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The build path is IndexBuilder. The query path is Retriever, then
// AssembleContext, then Generator, tied together by AnswerService.
//
// Services are pure Go with no CGO or external dependencies.
package services
