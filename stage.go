package secs

// Stage orders system execution within a tick. Stages run strictly in
// sequence; systems within a stage may run concurrently unless gated to the
// main thread.
//
// The bridge's own systems occupy First (event rotation, tree and signal
// drains), PreUpdate (transform read-back, collision application) and Last
// (transform write-back). Application systems normally go in Update.
type Stage int

const (
	// First runs before anything else. Host-originated queues are drained
	// here, so events published by the host during the previous frame are
	// visible to every later stage.
	First Stage = iota

	// PreUpdate prepares world state for application logic: host transforms
	// are imported, collision records updated.
	PreUpdate

	// Update is where application systems belong.
	Update

	// PostUpdate runs after application logic, before write-back.
	PostUpdate

	// Last flushes world state back to the host.
	Last

	stageCount
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case First:
		return "First"
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	case Last:
		return "Last"
	default:
		return "Unknown"
	}
}
