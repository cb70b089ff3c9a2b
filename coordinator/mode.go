package coordinator

// Mode is what the screen currently shows. Exactly one mode is active at a time.
type Mode int

const (
	Normal Mode = iota
	ManualEntryOpen
	CameraOpen
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case ManualEntryOpen:
		return "manual_entry_open"
	case CameraOpen:
		return "camera_open"
	default:
		return "unknown"
	}
}
