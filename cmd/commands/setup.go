package commands

import (
	"log/slog"

	"github.com/qiqi-070707/council-ai/internal/config"
	"github.com/qiqi-070707/council-ai/internal/models"
	"github.com/qiqi-070707/council-ai/internal/printer"
	"github.com/qiqi-070707/council-ai/internal/services"
)

// newSynthesizer builds the Gemini client, routed through the configured proxy.
func newSynthesizer(cfg *config.Config, logger *slog.Logger) (*services.GeminiService, error) {
	client, err := services.NewHTTPClient(cfg.Proxy.Addr, cfg.Gemini.Timeout)
	if err != nil {
		return nil, printer.Error("Invalid proxy", err.Error(), []string{
			"Use an http://, https:// or socks5:// address in proxy.addr",
		})
	}
	synth, err := services.NewGeminiService(cfg.GeminiService(), client, logger)
	if err != nil {
		return nil, printer.Error("Gemini is not configured", err.Error(), []string{
			"Set GEMINI_API_KEY in the environment or in .env",
			"Set gemini.api_key in council.yaml",
		})
	}
	return synth, nil
}

func newSessionService(cfg *config.Config, synth services.Synthesizer, logger *slog.Logger) *services.SessionService {
	seq := services.NewSequencer(cfg.Pacing(), logger)
	return services.NewSessionService(models.NewSessionManager(), synth, seq, logger)
}
