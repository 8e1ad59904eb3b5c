package services

import (
	"fmt"
	"strings"

	"github.com/qiqi-070707/council-ai/internal/models"
)

const roleBriefing = `1. Chief Product Officer (CPO) - Final decision maker, controls product and business direction. Focus: Business value, brand consistency, feasibility. Influence: High (Level 3).
2. Senior Industrial Designer (DESIGN) - Responsible for aesthetics, form, and CMF. Focus: Visual language, ergonomics, aesthetic trends. Influence: Medium (Level 2).
3. Technical Director (TECH) - Evaluates technical implementation and cost. Focus: Structural feasibility, cost control, production processes. Influence: Medium (Level 2).
4. UX Researcher (UX) - Simulates user perspective, provides critical feedback. Focus: User pain points, usability, emotional connection. Influence: Low (Level 1).
5. Market Researcher (MARKET) - Competitor analysis and trend forecasting. Focus: Differentiation, market entry, trending colors/elements. Influence: Low (Level 1).`

const outputShape = `Output JSON structure (all text fields in English):
{
  "debateHistory": [ { "role": "Full Agent Role Name", "content": "..." }, ... ],
  "solutions": [
    {
      "title": "Solution Name",
      "consensusSummary": "Refined design details...",
      "highlights": ["Word1", "Word2", "Word3"],
      "evaluation": { "technicalFeasibility": 0-100, "marketCompetitiveness": 0-100, "aesthetics": 0-100, "usability": 0-100, "innovation": 0-100 },
      "refinedVisualPrompt": "Detailed prompt for industrial design image generation"
    }
  ]
}
Return exactly 2 solutions, each with exactly 3 highlights.`

// SystemInstruction briefs the backend on the roles, the rounds and the constraints.
func SystemInstruction(c models.Constraints) string {
	var b strings.Builder
	b.WriteString("You are simulating an elite collaborative product design workshop between 5 specialist agents with specific roles. All communication MUST be in English.\n\n")
	b.WriteString(roleBriefing)
	b.WriteString("\n\nThe debate MUST feature multiple rounds in English:\n")
	b.WriteString("- Round 1: Each agent provides initial reactions based on their specific focus points.\n")
	b.WriteString("- Round 2: Agents challenge each other (e.g., TECH questions DESIGN's form, MARKET questions CPO's direction).\n")
	if c.Mode == models.ModeDeep {
		b.WriteString("- Round 3: A second challenge round where every agent answers the objections raised against them.\n")
		b.WriteString("- Round 4: CPO synthesizes the discussion into two clear strategic design solutions.\n")
	} else {
		b.WriteString("- Round 3: CPO synthesizes the discussion into two clear strategic design solutions.\n")
	}
	fmt.Fprintf(&b, "\nConstraints:\n- Purpose: %s\n- Brand Tone: %s\n- Target Audience: %s\n- Price Point: %s\n\n",
		c.Purpose, c.BrandTone, c.TargetAudience, c.PricePoint)
	b.WriteString("Use the full role names listed above in the \"role\" field.\n\n")
	b.WriteString(outputShape)
	return b.String()
}

func UserPrompt(idea string) string {
	return fmt.Sprintf("User Idea: %s\nConduct the design meeting in English and provide the synthesized solutions in JSON.", idea)
}

// ImagePrompt wraps a solution's visual prompt for the image model.
func ImagePrompt(visualPrompt, brandTone string) string {
	return fmt.Sprintf("Professional industrial design studio photography: %s. High-end, minimal, %s aesthetic, studio lighting, clear background, 8k.",
		visualPrompt, brandTone)
}

// RefinePrompt pre-fills the next session after "refine".
func RefinePrompt(title string) string {
	return fmt.Sprintf("Optimize the %s further based on the feedback provided in the meeting...", title)
}
