package proofread

// Completion is the text a Stream has assembled, with its stop metadata.
type Completion struct {
	Text          string
	StopReason    StopReason
	RawStopReason string
	Usage         Usage
}
