package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sourcegraph/conc/iter"

	"github.com/qiqi-070707/council-ai/internal/models"
)

const (
	DefaultGeminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiTextModel  = "gemini-3-pro-preview"
	DefaultGeminiImageModel = "gemini-2.5-flash-image"
)

type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
}

// GeminiService synthesizes workshops through the Gemini generateContent API:
// one structured call for the debate and solutions, then one image call per
// solution.
type GeminiService struct {
	cfg    GeminiConfig
	client *http.Client
	logger *slog.Logger
}

func NewGeminiService(cfg GeminiConfig, client *http.Client, logger *slog.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultGeminiTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultGeminiImageModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiService{cfg: cfg, client: client, logger: logger}, nil
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
	MinItems   int64              `json:"minItems,omitempty,string"`
	MaxItems   int64              `json:"maxItems,omitempty,string"`
}

type ImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type GenerationConfig struct {
	ResponseMimeType   string       `json:"responseMimeType,omitempty"`
	ResponseSchema     *Schema      `json:"responseSchema,omitempty"`
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *ImageConfig `json:"imageConfig,omitempty"`
}

type RequestPayload struct {
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Contents          []Content         `json:"contents"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type ApiResponse struct {
	Candidates []struct {
		Content      Content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// wire shape of the structured reply
type rawResult struct {
	DebateHistory []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"debateHistory"`
	Solutions []rawSolution `json:"solutions"`
}

type rawSolution struct {
	Title               string            `json:"title"`
	ConsensusSummary    string            `json:"consensusSummary"`
	Highlights          []string          `json:"highlights"`
	Evaluation          models.Evaluation `json:"evaluation"`
	RefinedVisualPrompt string            `json:"refinedVisualPrompt"`
}

func designSchema() *Schema {
	str := func() *Schema { return &Schema{Type: "STRING"} }
	num := func() *Schema { return &Schema{Type: "NUMBER"} }
	return &Schema{
		Type: "OBJECT",
		Properties: map[string]*Schema{
			"debateHistory": {
				Type: "ARRAY",
				Items: &Schema{
					Type:       "OBJECT",
					Properties: map[string]*Schema{"role": str(), "content": str()},
					Required:   []string{"role", "content"},
				},
			},
			"solutions": {
				Type:     "ARRAY",
				MinItems: models.SolutionCount,
				MaxItems: models.SolutionCount,
				Items: &Schema{
					Type: "OBJECT",
					Properties: map[string]*Schema{
						"title":            str(),
						"consensusSummary": str(),
						"highlights": {
							Type:     "ARRAY",
							Items:    str(),
							MinItems: models.HighlightCount,
							MaxItems: models.HighlightCount,
						},
						"evaluation": {
							Type: "OBJECT",
							Properties: map[string]*Schema{
								"technicalFeasibility":  num(),
								"marketCompetitiveness": num(),
								"aesthetics":            num(),
								"usability":             num(),
								"innovation":            num(),
							},
							Required: []string{"technicalFeasibility", "marketCompetitiveness", "aesthetics", "usability", "innovation"},
						},
						"refinedVisualPrompt": str(),
					},
					Required: []string{"title", "consensusSummary", "evaluation", "refinedVisualPrompt", "highlights"},
				},
			},
		},
		Required: []string{"debateHistory", "solutions"},
	}
}

// Synthesize runs the workshop. Any failure of the structured call, or a reply
// that breaks the data contract, fails the whole call. A failed image call only
// leaves that solution without an image.
func (g *GeminiService) Synthesize(ctx context.Context, req SynthesisRequest) (*models.DesignResult, error) {
	parts := []Part{{Text: UserPrompt(req.Prompt)}}
	if req.Image != nil && len(req.Image.Data) > 0 {
		mime := req.Image.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, Part{InlineData: &InlineData{
			MimeType: mime,
			Data:     base64.StdEncoding.EncodeToString(req.Image.Data),
		}})
	}

	payload := RequestPayload{
		SystemInstruction: &Content{Parts: []Part{{Text: SystemInstruction(req.Constraints)}}},
		Contents:          []Content{{Role: "user", Parts: parts}},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   designSchema(),
		},
	}

	g.logger.InfoContext(ctx, "synthesizing workshop", "model", g.cfg.TextModel, "mode", req.Constraints.Mode, "has_image", req.Image != nil)
	resp, err := g.generate(ctx, g.cfg.TextModel, payload)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, p := range firstParts(resp) {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: empty reply", models.ErrInvalidResult)
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(text.String()), &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse reply: %v", models.ErrInvalidResult, err)
	}
	if raw.DebateHistory == nil || raw.Solutions == nil {
		return nil, fmt.Errorf("%w: reply is missing debateHistory or solutions", models.ErrInvalidResult)
	}

	result := &models.DesignResult{Transcript: make(models.Transcript, 0, len(raw.DebateHistory))}
	for i, m := range raw.DebateHistory {
		role, err := models.ParseRole(m.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: message %d: %v", models.ErrInvalidResult, i, err)
		}
		result.Transcript = append(result.Transcript, models.DebateMessage{Role: role, Content: m.Content})
	}
	for _, s := range raw.Solutions {
		result.Solutions = append(result.Solutions, models.DesignSolution{
			Title:            s.Title,
			ConsensusSummary: s.ConsensusSummary,
			Evaluation:       s.Evaluation,
			Highlights:       s.Highlights,
		})
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}

	images := iter.Map(raw.Solutions, func(s *rawSolution) string {
		return g.renderImage(ctx, *s, req.Constraints.BrandTone)
	})
	for i := range result.Solutions {
		result.Solutions[i].ImageURL = images[i]
	}
	return result, nil
}

// renderImage returns a data URI, or "" if the image could not be produced.
func (g *GeminiService) renderImage(ctx context.Context, s rawSolution, brandTone string) string {
	if strings.TrimSpace(s.RefinedVisualPrompt) == "" {
		g.logger.WarnContext(ctx, "solution has no visual prompt", "title", s.Title)
		return ""
	}
	payload := RequestPayload{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: ImagePrompt(s.RefinedVisualPrompt, brandTone)}}}},
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &ImageConfig{AspectRatio: "16:9"},
		},
	}
	resp, err := g.generate(ctx, g.cfg.ImageModel, payload)
	if err != nil {
		g.logger.WarnContext(ctx, "image generation failed", "title", s.Title, "error", err)
		return ""
	}
	for _, p := range firstParts(resp) {
		if p.InlineData == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			g.logger.WarnContext(ctx, "image payload is not base64", "title", s.Title, "error", err)
			return ""
		}
		img := models.InlineImage{MIMEType: p.InlineData.MimeType, Data: data}
		if img.MIMEType == "" {
			img.MIMEType = "image/png"
		}
		return img.DataURI()
	}
	g.logger.WarnContext(ctx, "image reply had no inline data", "title", s.Title)
	return ""
}

func (g *GeminiService) generate(ctx context.Context, model string, payload RequestPayload) (*ApiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.cfg.BaseURL, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", model, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s reply: %w", model, err)
	}

	var apiResponse ApiResponse
	if err := json.Unmarshal(data, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse %s reply (status %d): %w", model, resp.StatusCode, err)
	}
	if apiResponse.Error != nil {
		return nil, fmt.Errorf("%s returned %s: %s", model, apiResponse.Error.Status, apiResponse.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned HTTP %d", model, resp.StatusCode)
	}
	return &apiResponse, nil
}

func firstParts(resp *ApiResponse) []Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}
