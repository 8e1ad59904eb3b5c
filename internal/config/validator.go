package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found.
// A missing API key is not an error here; only commands that call the backend need it.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Server.Addr == "" {
		errs = append(errs, ValidationError{Field: "server.addr", Value: c.Server.Addr, Message: "must not be empty"})
	}
	if c.Server.SessionTTL < 0 {
		errs = append(errs, ValidationError{Field: "server.session_ttl", Value: c.Server.SessionTTL, Message: "must not be negative"})
	}
	if c.Gemini.TextModel == "" {
		errs = append(errs, ValidationError{Field: "gemini.text_model", Value: c.Gemini.TextModel, Message: "must not be empty"})
	}
	if c.Gemini.ImageModel == "" {
		errs = append(errs, ValidationError{Field: "gemini.image_model", Value: c.Gemini.ImageModel, Message: "must not be empty"})
	}
	if c.Gemini.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "gemini.timeout", Value: c.Gemini.Timeout, Message: "must not be negative"})
	}

	durations := map[string]time.Duration{
		"playback.base_delay":     c.Playback.BaseDelay,
		"playback.per_char_delay": c.Playback.PerCharDelay,
		"playback.pause":          c.Playback.Pause,
		"playback.typing_tick":    c.Playback.TypingTick,
	}
	for _, field := range []string{"playback.base_delay", "playback.per_char_delay", "playback.pause", "playback.typing_tick"} {
		if durations[field] < 0 {
			errs = append(errs, ValidationError{Field: field, Value: durations[field], Message: "must not be negative"})
		}
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "must be one of " + strings.Join(ValidLogLevels(), ", "),
		})
	}
	return errs
}
