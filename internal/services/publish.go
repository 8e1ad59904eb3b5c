package services

import (
	"time"

	"github.com/qiqi-070707/council-ai/internal/models"
)

// publish queues e for every viewer of s. Callers hold s.Mu, which keeps the
// event order identical to the order of state changes. Viewers that cannot keep
// up are closed and dropped.
func publish(s *models.Session, e models.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	role := e.Role
	if e.Message != nil {
		role = e.Message.Role
	}
	e.Visible = s.Selected == nil || role == "" || *s.Selected == role
	for id, v := range s.Viewers {
		if !v.Enqueue(e) {
			v.Close()
			delete(s.Viewers, id)
		}
	}
}
