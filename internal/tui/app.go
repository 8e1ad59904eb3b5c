// Package tui replays a workshop in the terminal. It attaches to a session as
// one more viewer, so it sees exactly the events a browser would.
package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qiqi-070707/council-ai/internal/models"
	"github.com/qiqi-070707/council-ai/internal/services"
)

// viewerBuffer is larger than the websocket default since typing events
// queue up while the program starts.
const viewerBuffer = 4096

// programSender forwards viewer events into a running program.
type programSender struct {
	program *tea.Program
}

func (s programSender) WriteJSON(v interface{}) error {
	e, ok := v.(models.Event)
	if !ok {
		return fmt.Errorf("unexpected viewer payload %T", v)
	}
	s.program.Send(eventMsg(e))
	return nil
}

type Options struct {
	// ExitOnFinish quits when playback completes or fails.
	ExitOnFinish bool
	Input        io.Reader
	Output       io.Writer
}

type App struct {
	model    *Model
	sessions *services.SessionService
	sess     *models.Session
	opts     Options
}

func NewApp(sessions *services.SessionService, sess *models.Session, roster *models.Roster, opts Options) *App {
	model := NewModel(sessions, sess, roster)
	model.exitOnFinish = opts.ExitOnFinish
	return &App{model: model, sessions: sessions, sess: sess, opts: opts}
}

// Run attaches to the session, calls start once the viewer is registered and
// blocks until the user quits.
func (a *App) Run(ctx context.Context, start func() error) (*Model, error) {
	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if a.opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(a.opts.Input))
	}
	if a.opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(a.opts.Output))
	}
	program := tea.NewProgram(a.model, progOpts...)

	viewer := models.NewViewer(programSender{program: program}, viewerBuffer)
	a.sessions.AddViewer(a.sess, viewer)
	defer a.sessions.RemoveViewer(a.sess, viewer)
	go func() { _ = viewer.Pump() }()

	if err := start(); err != nil {
		return a.model, err
	}

	final, err := program.Run()
	if m, ok := final.(*Model); ok {
		a.model = m
	}
	return a.model, err
}
