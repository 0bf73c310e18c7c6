package model

import "time"

// Settings is the sidecar record persisted next to the task collection.
// The notification core never reads it; the host UI does.
type Settings struct {
	Theme         string     `json:"theme"`
	Autosave      bool       `json:"autosave"`
	ShowCompleted bool       `json:"showCompleted"`
	LastBackupAt  *time.Time `json:"lastBackupAt,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:         "dark",
		Autosave:      true,
		ShowCompleted: true,
	}
}
