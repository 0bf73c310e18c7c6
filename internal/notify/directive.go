package notify

import "time"

type Category string

const (
	CategoryBanner     Category = "banner"
	CategoryMotivation Category = "motivation"
	CategoryPopup      Category = "popup"
)

type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Directive is the single output contract the rendering layer consumes.
// The scheduler emits at most one per evaluation.
type Directive struct {
	Message  string
	Category Category
	Urgency  Urgency
	Duration time.Duration
	Closable bool
}

type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// TimeOfDayAt buckets the local hour: morning [6,12), afternoon [12,18),
// evening [18,22), night otherwise.
func TimeOfDayAt(now time.Time) TimeOfDay {
	hour := now.Hour()
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	case hour >= 18 && hour < 22:
		return Evening
	default:
		return Night
	}
}
