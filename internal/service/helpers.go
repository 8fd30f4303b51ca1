package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
	"github.com/smartstudy/companion/internal/repository"
	"github.com/smartstudy/companion/internal/timekit"
)

// newOpaqueToken returns a 32-byte URL-safe random token for calendar feeds
// and plan shares.
func newOpaqueToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// userLocation resolves the user's IANA timezone, falling back to UTC when
// the stored name does not load.
func userLocation(u *domain.User) *time.Location {
	loc, err := timekit.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// focusIndex loads the task titles and subject names needed to label a set
// of sessions.
type focusIndex struct {
	taskTitles   map[string]string
	taskSubjects map[string]*string
	subjectNames map[string]string
}

func buildFocusIndex(ctx context.Context, tasks repository.TaskRepo, subjects repository.SubjectRepo, userID string) (*focusIndex, error) {
	idx := &focusIndex{
		taskTitles:   make(map[string]string),
		taskSubjects: make(map[string]*string),
		subjectNames: make(map[string]string),
	}
	taskList, err := tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, t := range taskList {
		idx.taskTitles[t.ID] = t.Title
		idx.taskSubjects[t.ID] = t.SubjectID
	}
	subjectList, err := subjects.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, s := range subjectList {
		idx.subjectNames[s.ID] = s.Name
	}
	return idx, nil
}

// Focus resolves the display label for a session: its task's title, then its
// subject's name, then its notes, then a generic fallback.
func (idx *focusIndex) Focus(s *domain.StudySession) string {
	if s.TaskID != nil {
		if title, ok := idx.taskTitles[*s.TaskID]; ok {
			return title
		}
	}
	if s.SubjectID != nil {
		if name, ok := idx.subjectNames[*s.SubjectID]; ok {
			return name
		}
	}
	if s.Notes != "" {
		return s.Notes
	}
	return "Study session"
}

// SubjectName resolves a session's subject label for analytics grouping:
// the session's own subject, then its task's subject, then "General".
func (idx *focusIndex) SubjectName(s *domain.StudySession) string {
	if s.SubjectID != nil {
		if name, ok := idx.subjectNames[*s.SubjectID]; ok {
			return name
		}
	}
	if s.TaskID != nil {
		if subjectID := idx.taskSubjects[*s.TaskID]; subjectID != nil {
			if name, ok := idx.subjectNames[*subjectID]; ok {
				return name
			}
		}
	}
	return "General"
}

func sessionView(s *domain.StudySession, focus string) contract.SessionView {
	return contract.SessionView{
		ID:          s.ID,
		UserID:      s.UserID,
		SubjectID:   s.SubjectID,
		TaskID:      s.TaskID,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Status:      s.Status,
		EnergyLevel: s.EnergyLevel,
		GeneratedBy: s.GeneratedBy,
		IsPinned:    s.IsPinned,
		Notes:       s.Notes,
		Focus:       focus,
	}
}

func sessionViews(sessions []*domain.StudySession, idx *focusIndex) []contract.SessionView {
	views := make([]contract.SessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, sessionView(s, idx.Focus(s)))
	}
	return views
}

// overlaps reports strict interval overlap.
func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
