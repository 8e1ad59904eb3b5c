package models

type DebateMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the complete, ordered debate produced by one synthesis call.
type Transcript []DebateMessage

// Filter returns the messages spoken by role, or all of them when role is nil.
// The receiver is never modified.
func (t Transcript) Filter(role *Role) Transcript {
	if role == nil {
		out := make(Transcript, len(t))
		copy(out, t)
		return out
	}
	out := make(Transcript, 0, len(t))
	for _, m := range t {
		if m.Role == *role {
			out = append(out, m)
		}
	}
	return out
}
