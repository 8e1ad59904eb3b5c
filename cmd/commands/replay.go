package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qiqi-070707/council-ai/internal/models"
	"github.com/qiqi-070707/council-ai/internal/printer"
	"github.com/qiqi-070707/council-ai/internal/services"
	"github.com/qiqi-070707/council-ai/internal/tui"
)

var (
	replayPrompt string
	replayRole   string
	replaySave   string
	replayMode   string
	replayExit   bool
)

var replayCmd = &cobra.Command{
	Use:   "replay [RESULT_FILE]",
	Short: "Watch a workshop debate in the terminal",
	Long: `Replay a workshop debate in the terminal with the same pacing as the studio.

With RESULT_FILE, a saved result is replayed. The file holds either a full
result ({"debateHistory": [...], "solutions": [...]}) or a bare list of
messages. With --prompt, a new workshop is synthesized first.

Keys:
  1-5  focus one participant (press again to show everyone)
  0    show everyone
  q    quit

Examples:
  # Replay a saved workshop focusing on the designer
  council replay workshop.json --role DESIGN

  # Run a new workshop and keep the result
  council replay --prompt "A modular coffee machine" --save workshop.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&replayPrompt, "prompt", "p", "", "Product idea to synthesize instead of replaying a file")
	replayCmd.Flags().StringVar(&replayMode, "mode", string(models.ModeQuick), "Workshop mode for --prompt: quick or deep")
	replayCmd.Flags().StringVarP(&replayRole, "role", "r", "", "Start focused on one role (full or short name)")
	replayCmd.Flags().StringVar(&replaySave, "save", "", "Write the synthesized result to this file")
	replayCmd.Flags().BoolVar(&replayExit, "exit", false, "Quit when playback completes")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (replayPrompt == "") {
		return printer.Error("Nothing to replay", "Pass either a RESULT_FILE or --prompt.", nil)
	}

	var focus *models.Role
	if replayRole != "" {
		role, err := models.ParseRole(replayRole)
		if err != nil {
			return printer.Error("Unknown role", err.Error(), []string{"Use one of CPO, DESIGN, TECH, UX, MARKET"})
		}
		focus = &role
	}

	cfg, log, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	var synth services.Synthesizer
	var saved *models.DesignResult
	var mode models.Mode
	if len(args) == 1 {
		saved, err = loadResult(args[0])
		if err != nil {
			return printer.Error("Cannot read result file", err.Error(), nil)
		}
		if len(saved.Solutions) == 0 {
			printer.Warning("%s has no solutions, only the debate will be replayed\n", args[0])
		}
	} else {
		mode, err = models.ParseMode(replayMode)
		if err != nil {
			return printer.Error("Invalid mode", err.Error(), []string{"Use quick or deep"})
		}
		synth, err = newSynthesizer(cfg, log)
		if err != nil {
			return err
		}
		printer.Step("Convening the board, this can take a minute...\n")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := newSessionService(cfg, synth, log).WithContext(ctx)
	sess := sessions.CreateSession()

	app := tui.NewApp(sessions, sess, models.DefaultRoster(), tui.Options{ExitOnFinish: replayExit})
	model, err := app.Run(ctx, func() error {
		if saved != nil {
			sessions.Replay(sess, saved)
		} else {
			constraints := models.DefaultConstraints()
			constraints.Mode = mode
			if _, err := sessions.Start(sess, services.Submission{Prompt: replayPrompt, Constraints: constraints}); err != nil {
				return err
			}
		}
		if focus != nil {
			sessions.SelectRole(sess, *focus)
		}
		return nil
	})
	if err != nil {
		return printer.Error("Replay failed", err.Error(), nil)
	}

	if notice := model.Failure(); notice != "" {
		return printer.Error("Workshop failed", notice, nil)
	}
	if replaySave != "" && saved == nil {
		if err := saveResult(sess, replaySave); err != nil {
			return printer.Error("Cannot save result", err.Error(), nil)
		}
		printer.Success("Saved workshop to %s\n", replaySave)
	}
	return nil
}

// loadResult reads a saved result, accepting a bare message list too.
func loadResult(path string) (*models.DesignResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var transcript models.Transcript
	if err := json.Unmarshal(data, &transcript); err == nil {
		return checkRoles(&models.DesignResult{Transcript: transcript})
	}

	var result models.DesignResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(result.Solutions) > 0 {
		if err := result.Validate(); err != nil {
			return nil, err
		}
		return &result, nil
	}
	return checkRoles(&result)
}

func checkRoles(r *models.DesignResult) (*models.DesignResult, error) {
	for i := range r.Transcript {
		role, err := models.ParseRole(string(r.Transcript[i].Role))
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		r.Transcript[i].Role = role
	}
	return r, nil
}

func saveResult(sess *models.Session, path string) error {
	sess.Mu.Lock()
	result := sess.Result
	sess.Mu.Unlock()
	if result == nil {
		return fmt.Errorf("the workshop produced no result")
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
