package daybook

// Result labels passed to a Recorder.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Recorder receives pipeline events for metrics.
type Recorder interface {
	DayCollected(result string)
	ImportRun(result string)
	Booking(result string)
	OpenDays(n int)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) DayCollected(string) {}
func (NopRecorder) ImportRun(string)    {}
func (NopRecorder) Booking(string)      {}
func (NopRecorder) OpenDays(int)        {}
