package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSolution(title string) DesignSolution {
	return DesignSolution{
		Title:            title,
		ConsensusSummary: "summary",
		Highlights:       []string{"Modular", "Quiet", "Warm"},
		Evaluation: Evaluation{
			TechnicalFeasibility:  80,
			MarketCompetitiveness: 70,
			Aesthetics:            90,
			Usability:             60,
			Innovation:            100,
		},
	}
}

func TestEvaluationAverage(t *testing.T) {
	e := validSolution("x").Evaluation
	assert.InDelta(t, 80.0, e.Average(), 1e-9)
	assert.Equal(t, "80.0", e.AverageLabel())

	e = Evaluation{TechnicalFeasibility: 81, MarketCompetitiveness: 72, Aesthetics: 90, Usability: 66, Innovation: 99}
	assert.Equal(t, "81.6", e.AverageLabel())
}

func TestEvaluationBars(t *testing.T) {
	bars := validSolution("x").Evaluation.Bars()
	require.Len(t, bars, 4)
	assert.Equal(t, ScoreBar{Name: "Feasibility", Score: 80}, bars[0])
	assert.Equal(t, ScoreBar{Name: "Usability", Score: 60}, bars[3])
}

func TestDesignResultValidate(t *testing.T) {
	good := func() *DesignResult {
		return &DesignResult{
			Solutions: []DesignSolution{validSolution("A"), validSolution("B")},
			Transcript: Transcript{
				{Role: RoleCPO, Content: "hello"},
				{Role: RoleTech, Content: "cost"},
			},
		}
	}

	t.Run("accepts a well formed result", func(t *testing.T) {
		assert.NoError(t, good().Validate())
	})

	t.Run("rejects nil", func(t *testing.T) {
		var r *DesignResult
		assert.ErrorIs(t, r.Validate(), ErrInvalidResult)
	})

	t.Run("rejects wrong solution count", func(t *testing.T) {
		r := good()
		r.Solutions = r.Solutions[:1]
		assert.ErrorIs(t, r.Validate(), ErrInvalidResult)
	})

	for _, n := range []int{0, 2, 4} {
		r := good()
		r.Solutions[1].Highlights = make([]string, n)
		err := r.Validate()
		assert.ErrorIs(t, err, ErrInvalidResult, "highlights=%d", n)
		assert.Contains(t, err.Error(), "highlights")
	}

	t.Run("rejects out of range score", func(t *testing.T) {
		r := good()
		r.Solutions[0].Evaluation.Innovation = 101
		assert.ErrorIs(t, r.Validate(), ErrInvalidResult)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		r := good()
		r.Transcript[1].Role = "Intern"
		assert.ErrorIs(t, r.Validate(), ErrInvalidResult)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		r := good()
		r.Solutions[0].Title = "  "
		assert.ErrorIs(t, r.Validate(), ErrInvalidResult)
	})
}
