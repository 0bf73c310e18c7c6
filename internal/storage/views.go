package storage

import (
	"sort"
	"time"

	"github.com/sandeepkv93/taskpulse/internal/model"
)

// Pure derived views over a task snapshot. None of these mutate their input.

func ByPriority(tasks []model.Task, p model.Priority) []model.Task {
	out := make([]model.Task, 0)
	for _, task := range tasks {
		if task.Priority == p {
			out = append(out, task)
		}
	}
	return out
}

func Completed(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0)
	for _, task := range tasks {
		if task.Completed {
			out = append(out, task)
		}
	}
	return out
}

func Pending(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0)
	for _, task := range tasks {
		if !task.Completed {
			out = append(out, task)
		}
	}
	return out
}

// GroupedByPriority partitions into the four buckets. Within a bucket,
// incomplete tasks sort before completed ones; ties sort by CreatedAt
// descending.
func GroupedByPriority(tasks []model.Task) map[model.Priority][]model.Task {
	out := make(map[model.Priority][]model.Task, 4)
	for _, p := range model.Priorities() {
		out[p] = make([]model.Task, 0)
	}
	for _, task := range tasks {
		out[task.Priority] = append(out[task.Priority], task)
	}
	for p := range out {
		bucket := out[p]
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].Completed != bucket[j].Completed {
				return !bucket[i].Completed
			}
			return bucket[i].CreatedAt.After(bucket[j].CreatedAt)
		})
		out[p] = bucket
	}
	return out
}

// CompletedSection orders completed tasks for the done list: CompletedAt
// descending, falling back to CreatedAt when CompletedAt is missing.
func CompletedSection(tasks []model.Task) []model.Task {
	out := Completed(tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return sectionTime(out[i]).After(sectionTime(out[j]))
	})
	return out
}

func sectionTime(task model.Task) time.Time {
	if task.CompletedAt != nil {
		return *task.CompletedAt
	}
	return task.CreatedAt
}
