package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/qiqi-070707/council-ai/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyInput      = errors.New("a prompt or an image is required")
	ErrNotFinished     = errors.New("playback has not finished")
	ErrNoSolution      = errors.New("no such solution")
)

// FailureNotice is shown when a synthesis call fails.
const FailureNotice = "Workshop connection interrupted. Retrying is recommended."

// Submission is the input form as posted by the user.
type Submission struct {
	Prompt      string
	Image       *models.InlineImage
	Constraints models.Constraints
}

type SessionService struct {
	Manager   *models.SessionManager
	Synth     Synthesizer
	Sequencer *Sequencer

	baseCtx context.Context
	logger  *slog.Logger
}

func NewSessionService(manager *models.SessionManager, synth Synthesizer, seq *Sequencer, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		Manager:   manager,
		Synth:     synth,
		Sequencer: seq,
		baseCtx:   context.Background(),
		logger:    logger,
	}
}

// WithContext sets the parent of every run's context, usually the server's
// lifetime context.
func (s *SessionService) WithContext(ctx context.Context) *SessionService {
	s.baseCtx = ctx
	return s
}

func (s *SessionService) CreateSession() *models.Session {
	sess := models.NewSession()

	s.Manager.Mu.Lock()
	s.Manager.Sessions[sess.ID] = sess
	s.Manager.Mu.Unlock()

	s.logger.Info("session created", "session_id", sess.ID)
	return sess
}

func (s *SessionService) GetSession(id string) (*models.Session, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	s.Manager.Mu.Lock()
	defer s.Manager.Mu.Unlock()
	sess, ok := s.Manager.Sessions[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, uid)
	}
	sess.Mu.Lock()
	sess.LastSeen = time.Now()
	sess.Mu.Unlock()
	return sess, nil
}

// Sweep removes sessions without viewers that have not been touched for
// longer than ttl, stopping their runs. It returns how many were removed.
func (s *SessionService) Sweep(now time.Time, ttl time.Duration) int {
	s.Manager.Mu.Lock()
	defer s.Manager.Mu.Unlock()

	removed := 0
	for id, sess := range s.Manager.Sessions {
		sess.Mu.Lock()
		idle := len(sess.Viewers) == 0 && now.Sub(sess.LastSeen) > ttl
		if idle {
			sess.Stop()
		}
		sess.Mu.Unlock()
		if idle {
			delete(s.Manager.Sessions, id)
			removed++
		}
	}
	return removed
}

// EvictIdle sweeps idle sessions every interval until ctx is done. A
// non-positive ttl disables eviction.
func (s *SessionService) EvictIdle(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now, ttl); n > 0 {
				s.logger.Info("evicted idle sessions", "count", n, "ttl", ttl)
			}
		}
	}
}

// Navigate moves between the landing and input stages. Leaving a run this way
// stops its playback.
func (s *SessionService) Navigate(sess *models.Session, stage models.Stage) error {
	if stage != models.StageLanding && stage != models.StageInput {
		return fmt.Errorf("cannot navigate to %s", stage)
	}
	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if sess.Stage == models.StageDebating {
		sess.Stop()
	}
	sess.Stage = stage
	return nil
}

// Start begins a new run: it resets the session, cancelling any earlier run,
// and synthesizes and replays in the background. The returned channel is closed
// when the run ends for any reason.
func (s *SessionService) Start(sess *models.Session, sub Submission) (<-chan struct{}, error) {
	hasImage := sub.Image != nil && len(sub.Image.Data) > 0
	if strings.TrimSpace(sub.Prompt) == "" && !hasImage {
		return nil, ErrEmptyInput
	}
	if !hasImage {
		sub.Image = nil
	}

	epoch, ctx := s.begin(sess, sub)
	logger := s.logger.With("session_id", sess.ID, "epoch", epoch)
	logger.Info("workshop started", "mode", sub.Constraints.Mode, "has_image", hasImage)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.run(ctx, sess, epoch, sub, logger)
	}()
	return done, nil
}

// Replay plays a saved result without calling the synthesizer. A result
// without solutions can be replayed but never reaches the result stage.
func (s *SessionService) Replay(sess *models.Session, result *models.DesignResult) <-chan struct{} {
	epoch, ctx := s.begin(sess, Submission{Constraints: sess.Constraints})
	logger := s.logger.With("session_id", sess.ID, "epoch", epoch)
	logger.Info("replay started", "messages", len(result.Transcript))

	sess.Mu.Lock()
	if len(result.Solutions) > 0 {
		sess.Result = result
	}
	sess.Mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.Sequencer.Play(ctx, sess, epoch, result.Transcript); err != nil {
			logger.Debug("playback stopped", "error", err)
		}
	}()
	return done
}

// begin resets sess for a new run and announces it to viewers.
func (s *SessionService) begin(sess *models.Session, sub Submission) (uint64, context.Context) {
	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	epoch, ctx := sess.Reset(s.baseCtx)
	sess.Prompt = sub.Prompt
	sess.Image = sub.Image
	sess.Constraints = sub.Constraints
	sess.Stage = models.StageDebating
	publish(sess, models.Event{Type: models.EventReset})
	return epoch, ctx
}

func (s *SessionService) run(ctx context.Context, sess *models.Session, epoch uint64, sub Submission, logger *slog.Logger) {
	result, err := s.Synth.Synthesize(ctx, SynthesisRequest{
		Prompt:      sub.Prompt,
		Image:       sub.Image,
		Constraints: sub.Constraints,
	})
	if err == nil {
		err = result.Validate()
	}
	if err != nil {
		sess.Mu.Lock()
		defer sess.Mu.Unlock()
		if sess.Epoch != epoch {
			logger.Debug("discarding result of superseded run", "error", err)
			return
		}
		logger.Error("synthesis failed", "error", err)
		sess.Result = nil
		sess.Revealed = nil
		sess.Active = nil
		sess.Typing = nil
		sess.Stage = models.StageInput
		sess.Notice = FailureNotice
		publish(sess, models.Event{Type: models.EventFailed, Text: FailureNotice})
		return
	}

	sess.Mu.Lock()
	if sess.Epoch != epoch {
		sess.Mu.Unlock()
		return
	}
	sess.Result = result
	sess.SelectedSolution = 0
	sess.Mu.Unlock()

	logger.Info("synthesis complete", "messages", len(result.Transcript))
	if err := s.Sequencer.Play(ctx, sess, epoch, result.Transcript); err != nil {
		logger.Debug("playback stopped", "error", err)
	}
}

// SelectRole toggles the role filter.
func (s *SessionService) SelectRole(sess *models.Session, role models.Role) *models.Role {
	return ToggleRole(sess, role)
}

// ShowResults moves a finished debate to the result stage.
func (s *SessionService) ShowResults(sess *models.Session) error {
	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if !sess.Finished || sess.Result == nil {
		return ErrNotFinished
	}
	sess.Stage = models.StageResult
	return nil
}

func (s *SessionService) SelectSolution(sess *models.Session, index int) error {
	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if sess.Result == nil || index < 0 || index >= len(sess.Result.Solutions) {
		return ErrNoSolution
	}
	sess.SelectedSolution = index
	return nil
}

// Download returns the current solution's image and the name to save it under.
func (s *SessionService) Download(sess *models.Session) (string, *models.InlineImage, error) {
	sess.Mu.Lock()
	sol, ok := sess.CurrentSolution()
	sess.Mu.Unlock()
	if !ok {
		return "", nil, ErrNoSolution
	}
	img, err := models.ParseDataURI(sol.ImageURL)
	if err != nil {
		return "", nil, fmt.Errorf("solution %q: %w", sol.Title, err)
	}
	return DownloadFilename(sol.Title), img, nil
}

// Refine hands the current solution back to the input stage as the starting
// point of the next run.
func (s *SessionService) Refine(sess *models.Session) error {
	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	sol, ok := sess.CurrentSolution()
	if !ok {
		return ErrNoSolution
	}
	img, err := models.ParseDataURI(sol.ImageURL)
	if err != nil && !errors.Is(err, models.ErrNoImage) {
		return fmt.Errorf("solution %q: %w", sol.Title, err)
	}
	sess.Image = img
	sess.Prompt = RefinePrompt(sol.Title)
	sess.Stage = models.StageInput
	return nil
}

func (s *SessionService) AddViewer(sess *models.Session, v *models.Viewer) {
	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	sess.Viewers[v.Id] = v

	// bring the newcomer up to date before live events arrive
	v.Enqueue(models.Event{Type: models.EventReset})
	for i := range sess.Revealed {
		m := sess.Revealed[i]
		shown := utf8.RuneCountInString(m.Content)
		if sess.Typing != nil && sess.Typing.Index == i {
			shown = sess.Typing.Shown
		}
		v.Enqueue(models.Event{
			Type:    models.EventReveal,
			Role:    m.Role,
			Index:   i,
			Message: &m,
			Shown:   shown,
			Visible: sess.Selected == nil || *sess.Selected == m.Role,
		})
	}
	if sess.Active != nil {
		v.Enqueue(models.Event{Type: models.EventActive, Role: *sess.Active, Index: len(sess.Revealed)})
	}
	if sess.Finished {
		v.Enqueue(models.Event{Type: models.EventFinished, Index: len(sess.Revealed)})
	}
	s.logger.Debug("viewer joined", "session_id", sess.ID, "viewer_id", v.Id)
}

func (s *SessionService) RemoveViewer(sess *models.Session, v *models.Viewer) {
	sess.Mu.Lock()
	delete(sess.Viewers, v.Id)
	sess.LastSeen = time.Now()
	sess.Mu.Unlock()
	v.Close()
	s.logger.Debug("viewer left", "session_id", sess.ID, "viewer_id", v.Id)
}

// Command is an action sent by a viewer over its connection.
type Command struct {
	Type string `json:"type"` // "select"
	Role string `json:"role"`
}

// Reader is the read side of a viewer connection.
type Reader interface {
	ReadMessage() (messageType int, p []byte, err error)
}

// LoopCommands handles viewer commands until the connection closes.
func (s *SessionService) LoopCommands(sess *models.Session, conn Reader, v *models.Viewer) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.logger.Warn("ignoring malformed command", "session_id", sess.ID, "viewer_id", v.Id, "error", err)
			continue
		}

		switch cmd.Type {
		case "select":
			role, err := models.ParseRole(cmd.Role)
			if err != nil {
				s.logger.Warn("ignoring selection", "session_id", sess.ID, "error", err)
				continue
			}
			s.SelectRole(sess, role)
		default:
			s.logger.Warn("unknown command", "session_id", sess.ID, "type", cmd.Type)
		}
	}
}
