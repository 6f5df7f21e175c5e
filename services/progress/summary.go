package progress

import (
	"math"

	courseModels "lms/models/course"
)

// ModuleSummary is the derived completion state of one module
type ModuleSummary struct {
	ModuleID         uint   `json:"module_id"`
	Title            string `json:"title"`
	TotalLessons     int    `json:"total_lessons"`
	CompletedLessons int    `json:"completed_lessons"`
	Completed        bool   `json:"completed"`
}

// Summary is the derived completion state of a course for one enrollment
type Summary struct {
	TotalLessons     int
	CompletedLessons int
	Progress         int
	Completed        bool
	Modules          []ModuleSummary
}

// Summarize derives module and course completion. A module is complete when it
// has at least one lesson and all of them are complete; a course when it has
// at least one module and all of them are complete.
func Summarize(modules []courseModels.Module, lessons []courseModels.Lesson, completedLessonIDs []uint) *Summary {
	done := make(map[uint]bool, len(completedLessonIDs))
	for _, id := range completedLessonIDs {
		done[id] = true
	}

	s := &Summary{Modules: make([]ModuleSummary, 0, len(modules))}
	index := make(map[uint]int, len(modules))
	for i, m := range modules {
		index[m.ID] = i
		s.Modules = append(s.Modules, ModuleSummary{ModuleID: m.ID, Title: m.Title})
	}

	for _, l := range lessons {
		s.TotalLessons++
		if done[l.ID] {
			s.CompletedLessons++
		}
		i, ok := index[l.ModuleID]
		if !ok {
			continue
		}
		s.Modules[i].TotalLessons++
		if done[l.ID] {
			s.Modules[i].CompletedLessons++
		}
	}

	s.Completed = len(s.Modules) > 0
	for i := range s.Modules {
		m := &s.Modules[i]
		m.Completed = m.TotalLessons > 0 && m.CompletedLessons == m.TotalLessons
		if !m.Completed {
			s.Completed = false
		}
	}

	if s.TotalLessons > 0 {
		s.Progress = int(math.Round(100 * float64(s.CompletedLessons) / float64(s.TotalLessons)))
	}
	return s
}
