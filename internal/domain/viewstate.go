package domain

// Phase is the single tagged view state of a panel instance. Using one
// variant instead of independent booleans rules out impossible
// combinations such as submitting-and-succeeded at the same time.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}
