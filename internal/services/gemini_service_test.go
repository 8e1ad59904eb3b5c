package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qiqi-070707/council-ai/internal/models"
)

const sampleReply = `{
  "debateHistory": [
    {"role": "Chief Product Officer", "content": "Premium brewing at home."},
    {"role": "TECH", "content": "Modular bays raise cost."}
  ],
  "solutions": [
    {"title": "Modular Brew Station", "consensusSummary": "Swappable modules.",
     "highlights": ["Modular", "Steel", "Quiet"],
     "evaluation": {"technicalFeasibility": 80, "marketCompetitiveness": 70, "aesthetics": 90, "usability": 60, "innovation": 100},
     "refinedVisualPrompt": "a modular coffee station"},
    {"title": "Compact Pour", "consensusSummary": "Small footprint.",
     "highlights": ["Compact", "Matte", "Simple"],
     "evaluation": {"technicalFeasibility": 90, "marketCompetitiveness": 60, "aesthetics": 70, "usability": 85, "innovation": 50},
     "refinedVisualPrompt": "a compact pour over"}
  ]
}`

// fakeGemini serves generateContent for the text and image models.
type fakeGemini struct {
	mu        sync.Mutex
	textReply string
	textCode  int
	imageFail bool
	requests  map[string][]RequestPayload
	apiKeys   []string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var payload RequestPayload
	_ = json.Unmarshal(body, &payload)

	model := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/models/"), ":generateContent")
	f.mu.Lock()
	f.requests[model] = append(f.requests[model], payload)
	f.apiKeys = append(f.apiKeys, r.Header.Get("x-goog-api-key"))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if model == DefaultGeminiImageModel {
		if f.imageFail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"overloaded","status":"UNAVAILABLE"}}`))
			return
		}
		data := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/png","data":"` + data + `"}}]}}]}`))
		return
	}

	if f.textCode != 0 {
		w.WriteHeader(f.textCode)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad key","status":"INVALID_ARGUMENT"}}`))
		return
	}
	reply, _ := json.Marshal(f.textReply)
	_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + string(reply) + `}]}}]}`))
}

func setupGemini(t *testing.T, f *fakeGemini) *GeminiService {
	t.Helper()
	f.requests = make(map[string][]RequestPayload)
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	g, err := NewGeminiService(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL}, srv.Client(), nil)
	require.NoError(t, err)
	return g
}

func TestNewGeminiServiceRequiresKey(t *testing.T) {
	_, err := NewGeminiService(GeminiConfig{}, nil, nil)
	assert.Error(t, err)
}

func TestGeminiSynthesize(t *testing.T) {
	f := &fakeGemini{textReply: sampleReply}
	g := setupGemini(t, f)

	req := SynthesisRequest{
		Prompt: "a coffee machine",
		Image:  &models.InlineImage{MIMEType: "image/jpeg", Data: []byte("jpeg")},
		Constraints: models.Constraints{
			Purpose:   "Revolutionize coffee",
			BrandTone: "Minimalist",
			Mode:      models.ModeDeep,
		},
	}
	result, err := g.Synthesize(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Transcript, 2)
	assert.Equal(t, models.RoleCPO, result.Transcript[0].Role)
	assert.Equal(t, models.RoleTech, result.Transcript[1].Role)

	require.Len(t, result.Solutions, 2)
	assert.Equal(t, "Modular Brew Station", result.Solutions[0].Title)
	assert.Equal(t, "80.0", result.Solutions[0].Evaluation.AverageLabel())
	wantImage := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	assert.Equal(t, wantImage, result.Solutions[0].ImageURL)
	assert.Equal(t, wantImage, result.Solutions[1].ImageURL)

	text := f.requests[DefaultGeminiTextModel]
	require.Len(t, text, 1)
	assert.Equal(t, "application/json", text[0].GenerationConfig.ResponseMimeType)
	assert.Contains(t, text[0].SystemInstruction.Parts[0].Text, "Purpose: Revolutionize coffee")
	assert.Contains(t, text[0].SystemInstruction.Parts[0].Text, "Round 4")
	parts := text[0].Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, "User Idea: a coffee machine")
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MimeType)

	images := f.requests[DefaultGeminiImageModel]
	require.Len(t, images, 2)
	for _, p := range images {
		assert.Contains(t, p.Contents[0].Parts[0].Text, "Minimalist aesthetic")
		assert.Equal(t, "16:9", p.GenerationConfig.ImageConfig.AspectRatio)
	}
	for _, k := range f.apiKeys {
		assert.Equal(t, "test-key", k)
	}
}

func TestGeminiSynthesizeImageFailureDegrades(t *testing.T) {
	f := &fakeGemini{textReply: sampleReply, imageFail: true}
	g := setupGemini(t, f)

	result, err := g.Synthesize(context.Background(), SynthesisRequest{Prompt: "x"})
	require.NoError(t, err)
	for _, s := range result.Solutions {
		assert.Empty(t, s.ImageURL)
	}
}

func TestGeminiSynthesizeRejectsBrokenReplies(t *testing.T) {
	wrongHighlights := strings.Replace(sampleReply, `["Modular", "Steel", "Quiet"]`, `["Modular", "Steel"]`, 1)
	unknownRole := strings.Replace(sampleReply, `"TECH"`, `"Intern"`, 1)
	oneSolution := `{"debateHistory": [], "solutions": [{"title": "A", "highlights": ["a","b","c"], "evaluation": {}}]}`

	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "I could not do that"},
		{"empty", ""},
		{"missing fields", `{"solutions": []}`},
		{"two highlights", wrongHighlights},
		{"unknown role", unknownRole},
		{"one solution", oneSolution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeGemini{textReply: tt.reply}
			g := setupGemini(t, f)
			_, err := g.Synthesize(context.Background(), SynthesisRequest{Prompt: "x"})
			assert.ErrorIs(t, err, models.ErrInvalidResult)
			assert.Empty(t, f.requests[DefaultGeminiImageModel], "no image calls for a rejected reply")
		})
	}
}

func TestGeminiSynthesizeBackendError(t *testing.T) {
	f := &fakeGemini{textCode: http.StatusBadRequest}
	g := setupGemini(t, f)
	_, err := g.Synthesize(context.Background(), SynthesisRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestNewHTTPClient(t *testing.T) {
	c, err := NewHTTPClient("", 0)
	require.NoError(t, err)
	assert.NotNil(t, c.Transport)

	_, err = NewHTTPClient("http://127.0.0.1:8080", 0)
	assert.NoError(t, err)

	_, err = NewHTTPClient("socks://127.0.0.1:1080", 0)
	assert.NoError(t, err)

	_, err = NewHTTPClient("ftp://127.0.0.1", 0)
	assert.Error(t, err)
}

func TestSystemInstructionQuickMode(t *testing.T) {
	s := SystemInstruction(models.Constraints{PricePoint: "Premium", Mode: models.ModeQuick})
	assert.Contains(t, s, "Round 3: CPO synthesizes")
	assert.NotContains(t, s, "Round 4")
	assert.Contains(t, s, "Price Point: Premium")
}
