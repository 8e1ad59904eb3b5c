package commands

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qiqi-070707/council-ai/internal/config"
	"github.com/qiqi-070707/council-ai/internal/logging"
)

func TestNewAppServesStudio(t *testing.T) {
	cfg := config.Default()
	log := logging.Discard()
	app := newApp(newSessionService(cfg, nil, log), log)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Council AI")

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/session", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
}

func TestNewSynthesizerRejectsBadProxy(t *testing.T) {
	quietPrinter(t)
	cfg := config.Default()
	cfg.Gemini.APIKey = "key"
	cfg.Proxy.Addr = "ftp://proxy:21"

	_, err := newSynthesizer(cfg, logging.Discard())
	assert.EqualError(t, err, "Invalid proxy")

	cfg.Proxy.Addr = "socks5://127.0.0.1:1080"
	synth, err := newSynthesizer(cfg, logging.Discard())
	require.NoError(t, err)
	assert.NotNil(t, synth)
}
