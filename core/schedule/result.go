package schedule

// Kind classifies why a slot was rejected.
type Kind string

const (
	MissingField    Kind = "missing_field"
	InvalidTime     Kind = "invalid_time"
	InvalidOrdering Kind = "invalid_ordering"
	FacultyConflict Kind = "faculty_conflict"
	RoomConflict    Kind = "room_conflict"
	LocalConflict   Kind = "local_conflict"
	SectionConflict Kind = "section_conflict"
)

var messages = map[Kind]string{
	MissingField:    "All fields are required",
	InvalidTime:     "Time must be in HH:MM format",
	InvalidOrdering: "Start time must be less than end time",
	FacultyConflict: "Faculty is not available at this time",
	RoomConflict:    "Room is not available at this time",
	LocalConflict:   "Schedule conflicts with existing schedule",
	SectionConflict: "Section conflicts with another section",
}

// Message returns the user facing message of k.
func (k Kind) Message() string { return messages[k] }

// Result is the outcome of a validation. Rejections are data, not errors.
type Result struct {
	OK    bool   `json:"success"`
	Kind  Kind   `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

func Success() Result { return Result{OK: true} }

func Failure(kind Kind) Result {
	return Result{Kind: kind, Error: kind.Message()}
}

// Err returns nil on success, a *ConflictError otherwise.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return &ConflictError{Kind: r.Kind, Message: r.Error}
}

type ConflictError struct {
	Kind    Kind
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
