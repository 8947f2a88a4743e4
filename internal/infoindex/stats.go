package infoindex

import (
	"time"

	"github.com/starford/laguz/internal/duedate"
)

// Stats holds global counters over a full built index, independent of any
// active query.
type Stats struct {
	OpenTasks    int `json:"open_tasks"`
	DoneTasks    int `json:"done_tasks"`
	OverdueTasks int `json:"overdue_tasks"`
	StarredNotes int `json:"starred_notes"`
}

// BuildStats computes summary counters in a single pass over the unfiltered
// task and note lists. Only open tasks count toward the overdue total.
func BuildStats(tasks []TaskItem, notes []NoteItem, now time.Time) Stats {
	var s Stats
	for _, item := range tasks {
		if item.Done {
			s.DoneTasks++
			continue
		}
		s.OpenTasks++
		if duedate.IsOverdue(item.DueAt, item.DueTime, item.DuePrecision, now) {
			s.OverdueTasks++
		}
	}
	for _, note := range notes {
		if note.IsStarred {
			s.StarredNotes++
		}
	}
	return s
}
