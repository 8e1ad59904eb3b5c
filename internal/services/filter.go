package services

import "github.com/qiqi-070707/council-ai/internal/models"

// ToggleRole focuses the transcript on role, or clears the focus when role is
// already selected. Playback state is not touched. It returns the new selection.
func ToggleRole(s *models.Session, role models.Role) *models.Role {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.Selected != nil && *s.Selected == role {
		s.Selected = nil
	} else {
		r := role
		s.Selected = &r
	}

	e := models.Event{Type: models.EventSelection, Index: len(s.Revealed)}
	if s.Selected != nil {
		e.Role = *s.Selected
	}
	publish(s, e)
	return s.Selected
}

// VisibleMessages is the revealed transcript narrowed by the current selection.
// Callers hold s.Mu.
func VisibleMessages(s *models.Session) models.Transcript {
	return s.Revealed.Filter(s.Selected)
}
