package notify

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/taskpulse/internal/model"
	"github.com/sandeepkv93/taskpulse/internal/storage"
)

const defaultBannerDuration = 30 * time.Second

// Classify picks the status banner for the current task state. Rules apply
// in declared order; the night rule fires before the important rule even
// when both hold.
func Classify(tasks []model.Task, now time.Time) (Directive, bool) {
	pending := storage.Pending(tasks)
	if len(pending) == 0 {
		return Directive{}, false
	}

	tod := TimeOfDayAt(now)
	if tod == Night {
		return Directive{
			Message:  fmt.Sprintf("It's late, %d %s still pending. Wrap up and rest.", len(pending), pluralTask(len(pending))),
			Category: CategoryBanner,
			Urgency:  UrgencyHigh,
			Duration: defaultBannerDuration,
			Closable: true,
		}, true
	}

	important := storage.ByPriority(pending, model.PriorityImportant)
	if len(important) > 0 {
		return Directive{
			Message:  fmt.Sprintf("%d important %s pending", len(important), pluralTask(len(important))),
			Category: CategoryBanner,
			Urgency:  UrgencyMedium,
			Duration: defaultBannerDuration,
			Closable: true,
		}, true
	}

	return Directive{
		Message:  fmt.Sprintf("%s! %d %s pending.", greeting(tod), len(pending), pluralTask(len(pending))),
		Category: CategoryBanner,
		Urgency:  UrgencyNormal,
		Duration: defaultBannerDuration,
		Closable: true,
	}, true
}

func greeting(tod TimeOfDay) string {
	switch tod {
	case Morning:
		return "Good morning"
	case Afternoon:
		return "Good afternoon"
	case Evening:
		return "Good evening"
	default:
		return "Hello"
	}
}

func pluralTask(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}
