package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/qiqi-070707/council-ai/internal/models"
	"github.com/qiqi-070707/council-ai/internal/services"
)

const layout = "layouts/main"

// MaxImageBytes bounds uploaded prototype images.
const MaxImageBytes = 10 << 20

type Handler struct {
	Sessions *services.SessionService
	Roster   *models.Roster
	logger   *slog.Logger
}

func NewHandler(sessions *services.SessionService, roster *models.Roster, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Sessions: sessions, Roster: roster, logger: logger}
}

// Register mounts the page routes on app.
func (h *Handler) Register(app fiber.Router) {
	app.Get("/", h.LandingPage)
	app.Post("/session", h.CreateSession)
	app.Get("/session/:id", h.SessionPage)
	app.Get("/session/:id/state", h.SessionState)
	app.Post("/session/:id/home", h.Home)
	app.Post("/session/:id/input", h.Input)
	app.Post("/session/:id/start", h.Start)
	app.Post("/session/:id/select-role", h.SelectRole)
	app.Post("/session/:id/results", h.Results)
	app.Post("/session/:id/solution/:idx", h.SelectSolution)
	app.Get("/session/:id/download", h.Download)
	app.Post("/session/:id/refine", h.Refine)
}

func (h *Handler) LandingPage(c *fiber.Ctx) error {
	return c.Render("index", nil, layout)
}

// CreateSession opens a workshop and sends the user straight to its input form.
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	sess := h.Sessions.CreateSession()
	if err := h.Sessions.Navigate(sess, models.StageInput); err != nil {
		return h.fail(err)
	}
	return h.redirect(c, sess)
}

func (h *Handler) SessionPage(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	name, data := h.page(sess)
	return c.Render(name, data, layout)
}

type stateResponse struct {
	ID               string               `json:"id"`
	Stage            models.Stage         `json:"stage"`
	Notice           string               `json:"notice,omitempty"`
	Revealed         models.Transcript    `json:"revealed"`
	Visible          models.Transcript    `json:"visible"`
	Active           *models.Role         `json:"active,omitempty"`
	Selected         *models.Role         `json:"selected,omitempty"`
	Finished         bool                 `json:"finished"`
	Result           *models.DesignResult `json:"result,omitempty"`
	SelectedSolution int                  `json:"selectedSolution"`
}

// SessionState serves the session as JSON, for scripts and the replay client.
func (h *Handler) SessionState(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	sess.Mu.Lock()
	resp := stateResponse{
		ID:               sess.ID.String(),
		Stage:            sess.Stage,
		Notice:           sess.Notice,
		Revealed:         append(models.Transcript{}, sess.Revealed...),
		Visible:          services.VisibleMessages(sess),
		Active:           sess.Active,
		Selected:         sess.Selected,
		Finished:         sess.Finished,
		Result:           sess.Result,
		SelectedSolution: sess.SelectedSolution,
	}
	sess.Mu.Unlock()
	return c.JSON(resp)
}

func (h *Handler) Home(c *fiber.Ctx) error {
	return h.navigate(c, models.StageLanding)
}

func (h *Handler) Input(c *fiber.Ctx) error {
	return h.navigate(c, models.StageInput)
}

func (h *Handler) navigate(c *fiber.Ctx, stage models.Stage) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	if err := h.Sessions.Navigate(sess, stage); err != nil {
		return h.fail(err)
	}
	if stage == models.StageLanding {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return h.redirect(c, sess)
}

// Start submits the input form and begins the workshop.
func (h *Handler) Start(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	mode, err := models.ParseMode(c.FormValue("mode"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	constraints := models.Constraints{
		Purpose:        c.FormValue("purpose"),
		BrandTone:      c.FormValue("brandTone"),
		TargetAudience: c.FormValue("targetAudience"),
		PricePoint:     c.FormValue("pricePoint", models.DefaultConstraints().PricePoint),
		Mode:           mode,
	}

	image, err := uploadedImage(c)
	if err != nil {
		return err
	}
	if image == nil && c.FormValue("keepImage") != "" {
		sess.Mu.Lock()
		image = sess.Image
		sess.Mu.Unlock()
	}

	_, err = h.Sessions.Start(sess, services.Submission{
		Prompt:      c.FormValue("prompt"),
		Image:       image,
		Constraints: constraints,
	})
	if err != nil {
		return h.fail(err)
	}
	return h.redirect(c, sess)
}

// uploadedImage reads the optional "image" file field. A request without the
// field yields nil.
func uploadedImage(c *fiber.Ctx) (*models.InlineImage, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// no multipart body or no file field
		return nil, nil
	}
	if fh.Size == 0 {
		return nil, nil
	}
	if fh.Size > MaxImageBytes {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "image is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	mime := fh.Header.Get(fiber.HeaderContentType)
	if mime == "" || mime == fiber.MIMEOctetStream {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, fiber.NewError(fiber.StatusUnsupportedMediaType, "upload is not an image")
	}
	return &models.InlineImage{MIMEType: mime, Data: data}, nil
}

func (h *Handler) SelectRole(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	role, err := models.ParseRole(c.FormValue("role"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	h.Sessions.SelectRole(sess, role)
	return h.redirect(c, sess)
}

func (h *Handler) Results(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	if err := h.Sessions.ShowResults(sess); err != nil {
		return h.fail(err)
	}
	return h.redirect(c, sess)
}

func (h *Handler) SelectSolution(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	idx, err := strconv.Atoi(c.Params("idx"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "solution index must be a number")
	}
	if err := h.Sessions.SelectSolution(sess, idx); err != nil {
		return h.fail(err)
	}
	return h.redirect(c, sess)
}

// Download sends the selected solution's render as an attachment.
func (h *Handler) Download(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	filename, img, err := h.Sessions.Download(sess)
	if err != nil {
		return h.fail(err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, img.MIMEType)
	return c.Send(img.Data)
}

func (h *Handler) Refine(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	if err := h.Sessions.Refine(sess); err != nil {
		return h.fail(err)
	}
	return h.redirect(c, sess)
}

func (h *Handler) session(c *fiber.Ctx) (*models.Session, error) {
	sess, err := h.Sessions.GetSession(c.Params("id"))
	if err != nil {
		return nil, h.fail(err)
	}
	return sess, nil
}

func (h *Handler) redirect(c *fiber.Ctx, sess *models.Session) error {
	return c.Redirect("/session/"+sess.ID.String(), fiber.StatusSeeOther)
}

// fail maps service errors to HTTP errors.
func (h *Handler) fail(err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmptyInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFinished):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoSolution), errors.Is(err, models.ErrNoImage):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	h.logger.Error("request failed", "error", err)
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
