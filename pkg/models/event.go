package models

// ProgressEventType classifies live progress events
type ProgressEventType string

const (
	EventStart    ProgressEventType = "start"
	EventProgress ProgressEventType = "progress"
	EventComplete ProgressEventType = "complete"
	EventError    ProgressEventType = "error"
)

// IsTerminal reports whether no further events follow this one
func (t ProgressEventType) IsTerminal() bool {
	return t == EventComplete || t == EventError
}

// ProgressEvent is a throttled live update for one download. Events are
// ephemeral: they flow from the driver through the broadcaster to subscribers
// and are never stored.
type ProgressEvent struct {
	DownloadID int64             `json:"download_id"`
	Type       ProgressEventType `json:"type"`
	Filename   string            `json:"filename"`
	Status     DownloadStatus    `json:"status"`
	Progress   float64           `json:"progress"`
	SpeedBPS   float64           `json:"speed,omitempty"`
	ETASeconds int64             `json:"eta,omitempty"`
	Error      string            `json:"error,omitempty"`
}
