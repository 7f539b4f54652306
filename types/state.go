package types

// LifecycleState represents the sharding-awareness lifecycle of the process.
//
// States follow a one-way progression:
//
//	StateNew → StateInitialized
//	StateNew → StateError
//
// StateInitialized and StateError are terminal. StateError is permanent for
// the life of the process; recovery requires an operator-driven restart, never
// an in-process retry.
type LifecycleState int32

const (
	// StateNew is the initial state before sharding awareness is established.
	StateNew LifecycleState = iota

	// StateInitialized indicates the node is a fully-initialized cluster member.
	StateInitialized

	// StateError indicates first-time initialization failed permanently.
	StateError
)

// String returns the string representation of the state.
func (s LifecycleState) String() string {
	switch s {
	case StateNew:
		return "New"
	case StateInitialized:
		return "Initialized"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}
