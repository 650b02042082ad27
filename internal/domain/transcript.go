package domain

import "fmt"

type TranscriptStatus string

const (
	TranscriptOK          TranscriptStatus = "ok"
	TranscriptUnavailable TranscriptStatus = "unavailable" // no usable Korean track
	TranscriptFailed      TranscriptStatus = "failed"      // retries exhausted on errors
)

// UnavailableTranscriptText is what the dashboard and the stored row show
// for any transcript that is not OK.
const UnavailableTranscriptText = "⚠️ 자막을 가져올 수 없습니다 (여러 번 시도했으나 실패)"

// TranscriptResult is the outcome of a transcript fetch. Text is set only
// when Status is TranscriptOK; Reason describes the last failure otherwise.
type TranscriptResult struct {
	Status TranscriptStatus `json:"status"`
	Text   string           `json:"text,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

func TranscriptOf(text string) TranscriptResult {
	return TranscriptResult{Status: TranscriptOK, Text: text}
}

func TranscriptUnavailableResult(reason string) TranscriptResult {
	return TranscriptResult{Status: TranscriptUnavailable, Reason: reason}
}

func TranscriptFailedResult(reason string) TranscriptResult {
	return TranscriptResult{Status: TranscriptFailed, Reason: reason}
}

func (r TranscriptResult) OK() bool {
	return r.Status == TranscriptOK && r.Text != ""
}

// DisplayText returns the transcript text, or the fixed notice when absent.
func (r TranscriptResult) DisplayText() string {
	if r.OK() {
		return r.Text
	}
	return UnavailableTranscriptText
}

func (r TranscriptResult) String() string {
	if r.OK() {
		return fmt.Sprintf("%s(%d chars)", r.Status, len([]rune(r.Text)))
	}
	return fmt.Sprintf("%s(%s)", r.Status, r.Reason)
}
