package outline

// Kind classifies a section by the content found in its directory.
type Kind int

const (
	// KindLecture is descriptive content with no runnable code.
	KindLecture Kind = iota
	// KindLab is runnable code with no descriptive content.
	KindLab
	// KindLesson is descriptive content plus at least one visible code fragment.
	KindLesson
	// KindDemo is descriptive content whose code fragments are all hidden.
	// Demos execute automatically when shown.
	KindDemo
)

// String returns the display name for the kind.
func (k Kind) String() string {
	switch k {
	case KindLecture:
		return "Lecture"
	case KindLab:
		return "Lab"
	case KindLesson:
		return "Lesson"
	case KindDemo:
		return "Demo"
	default:
		return "Unknown"
	}
}

// Runnable reports whether sections of this kind carry executable code.
func (k Kind) Runnable() bool {
	return k != KindLecture
}

// AutoRun reports whether sections of this kind execute as soon as they
// are shown.
func (k Kind) AutoRun() bool {
	return k == KindDemo
}
