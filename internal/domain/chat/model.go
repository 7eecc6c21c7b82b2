package chat

import (
	"errors"
)

// Message is one parsed chat line.
type Message struct {
	MessageID  string `json:"message_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Sender     string `json:"sender"`
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	WordCount  int    `json:"word_count"`
}

// Row is a message as returned by the analytical engine.
type Row struct {
	MessageID string `json:"message_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// Filter narrows a chat query. Empty fields do not filter.
type Filter struct {
	Date   string
	Sender string
	Search string
	Limit  int
}

// Outcome labels for a transformer run.
const (
	OutcomeNothingToProcess = "nothing_to_process"
	OutcomeNoMessages       = "no_messages"
	OutcomeCompleted        = "completed"
	OutcomeFailed           = "failed"
)

// RunResult summarizes one transformer run.
type RunResult struct {
	RunID               string   `json:"run_id"`
	Outcome             string   `json:"outcome"`
	Files               int      `json:"files"`
	Messages            int      `json:"messages"`
	PartitionsWritten   int      `json:"partitions_written"`
	PartitionsUnchanged int      `json:"partitions_unchanged"`
	Partitions          []string `json:"partitions,omitempty"`
}

// Decision is the validator verdict for one uploaded object.
type Decision struct {
	SourceKey string `json:"source_key"`
	Accepted  bool   `json:"accepted"`
	BronzeKey string `json:"bronze_key,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

var (
	// ErrQueryFailed is returned when the engine reports a FAILED or CANCELLED query.
	ErrQueryFailed = errors.New("chat query failed")
	// ErrQueryTimeout is returned when the engine does not finish within the poll budget.
	ErrQueryTimeout = errors.New("chat query timed out")
)
