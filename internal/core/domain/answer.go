package domain

import "time"

// Generation is the outcome of asking the generative model.
// Exactly one of Text or Err is meaningful. Err is already a human-readable
// message and is shown to the user as-is; it is never a Go error.
type Generation struct {
	Text string
	Err  string
}

// Failed reports whether generation failed.
func (g Generation) Failed() bool {
	return g.Err != ""
}

// Message returns what the user should see.
func (g Generation) Message() string {
	if g.Failed() {
		return g.Err
	}
	return g.Text
}

// Answer is the full result of answering a question.
type Answer struct {
	// Question is the question as asked, trimmed.
	Question string

	// Text is the user-visible answer, or the generation failure message.
	Text string

	// Failed is true when Text is a generation failure message.
	Failed bool

	// Context is the assembled context block sent to the model.
	Context string

	// Sources are the retrieved chunks, best first.
	Sources []SearchResult

	// Latency is the end-to-end time to answer.
	Latency time.Duration
}

// QueryRecord is one entry of the query history.
type QueryRecord struct {
	ID        string
	Question  string
	Answer    string
	Failed    bool
	SourceIDs []string
	Latency   time.Duration
	CreatedAt time.Time
}
