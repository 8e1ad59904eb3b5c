package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/cobra"

	"github.com/qiqi-070707/council-ai/internal/handlers"
	"github.com/qiqi-070707/council-ai/internal/models"
	"github.com/qiqi-070707/council-ai/internal/printer"
	"github.com/qiqi-070707/council-ai/internal/services"
	"github.com/qiqi-070707/council-ai/internal/views"
)

var serveAddr string

const sweepInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browser design studio",
	Long: `Start the web server hosting the design studio.

Configuration is read from ./council.yaml (or --config), .env and COUNCIL_*
environment variables. GEMINI_API_KEY must be set.

Examples:
  # Serve on the configured address (default :3000)
  council serve

  # Serve on another port with a config file
  council serve --addr :8080 --config studio.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	synth, err := newSynthesizer(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := newSessionService(cfg, synth, log).WithContext(ctx)
	app := newApp(sessions, log)
	go sessions.EvictIdle(ctx, cfg.Server.SessionTTL, sweepInterval)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	printer.Success("Council AI studio running on %s\n", cfg.Server.Addr)
	log.Info("server starting", "addr", cfg.Server.Addr, "text_model", cfg.Gemini.TextModel, "image_model", cfg.Gemini.ImageModel)
	if err := app.Listen(cfg.Server.Addr); err != nil {
		return printer.Error("Server stopped", err.Error(), []string{
			"Check that " + cfg.Server.Addr + " is free",
		})
	}
	return nil
}

// newApp wires the page and websocket routes.
func newApp(sessions *services.SessionService, log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:                 views.NewEngine(),
		DisableStartupMessage: true,
		BodyLimit:             handlers.MaxImageBytes + 1<<20,
	})
	app.Use(logger.New())

	roster := models.DefaultRoster()
	handlers.NewHandler(sessions, roster, log).Register(app)
	handlers.NewWebSocketHandler(sessions, log).Register(app)
	return app
}

