package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qiqi-070707/council-ai/internal/models"
)

type participantView struct {
	models.Participant
	Active   bool
	Selected bool
}

type messageView struct {
	models.Participant
	Content string
	Visible bool
}

type solutionView struct {
	models.DesignSolution
	Index    int
	Selected bool
}

// page snapshots everything a template needs so rendering happens without
// the session lock.
func (h *Handler) page(sess *models.Session) (string, fiber.Map) {
	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	data := fiber.Map{
		"ID":          sess.ID.String(),
		"Stage":       sess.Stage,
		"Prompt":      sess.Prompt,
		"Constraints": sess.Constraints,
		"Notice":      sess.Notice,
		"Finished":    sess.Finished,
		"Roster":      h.Roster.Participants(),
	}

	switch sess.Stage {
	case models.StageInput:
		imageURL := sess.Image.DataURI()
		data["ImageURL"] = imageURL
		data["CanSubmit"] = sess.Prompt != "" || imageURL != ""
		return "input", data

	case models.StageDebating:
		var participants []participantView
		for _, p := range h.Roster.Participants() {
			participants = append(participants, participantView{
				Participant: p,
				Active:      sess.Active != nil && *sess.Active == p.Role,
				Selected:    sess.Selected != nil && *sess.Selected == p.Role,
			})
		}
		var messages []messageView
		for _, m := range sess.Revealed {
			p := h.Roster.Lookup(m.Role)
			messages = append(messages, messageView{
				Participant: p,
				Content:     m.Content,
				Visible:     sess.Selected == nil || *sess.Selected == m.Role,
			})
		}
		data["Participants"] = participants
		data["Messages"] = messages
		return "debate", data

	case models.StageResult:
		var solutions []solutionView
		if sess.Result != nil {
			for i, s := range sess.Result.Solutions {
				solutions = append(solutions, solutionView{DesignSolution: s, Index: i, Selected: i == sess.SelectedSolution})
			}
		}
		data["Solutions"] = solutions
		if cur, ok := sess.CurrentSolution(); ok {
			data["Current"] = cur
		}
		return "result", data
	}

	return "index", data
}
