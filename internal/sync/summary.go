package sync

import (
	"fmt"
	"log/slog"
)

// ActionKind identifies a filesystem mutation performed by the engine
type ActionKind string

const (
	ActionCreateDir   ActionKind = "create-dir"
	ActionSynchronize ActionKind = "synchronize"
	ActionCopy        ActionKind = "copy"
	ActionDelete      ActionKind = "delete"
)

// Action records one create, rewrite, copy or delete
type Action struct {
	Kind   ActionKind
	Source string // empty for create-dir and delete
	Target string
	DryRun bool
}

// String renders the action as a progress line
func (a Action) String() string {
	var s string
	switch a.Kind {
	case ActionCreateDir:
		s = fmt.Sprintf("Creating directory %s", a.Target)
	case ActionSynchronize:
		s = fmt.Sprintf("Synchronizing %s to %s", a.Source, a.Target)
	case ActionCopy:
		s = fmt.Sprintf("Copying %s to %s", a.Source, a.Target)
	case ActionDelete:
		s = fmt.Sprintf("Deleting %s", a.Target)
	default:
		s = fmt.Sprintf("%s %s", a.Kind, a.Target)
	}
	if a.DryRun {
		return "[dry-run] " + s
	}
	return s
}

// Summary collects what a run did
type Summary struct {
	Actions   []Action
	Templates int // text files left for hand authoring
	Unchanged int // files already up to date
}

// Count returns the number of actions of the given kind
func (s *Summary) Count(kind ActionKind) int {
	n := 0
	for _, a := range s.Actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// Changed reports whether the run mutated (or would mutate) the target tree
func (s *Summary) Changed() bool {
	return len(s.Actions) > 0
}

// LogValue implements slog.LogValuer
func (s *Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("created_dirs", s.Count(ActionCreateDir)),
		slog.Int("synchronized", s.Count(ActionSynchronize)),
		slog.Int("copied", s.Count(ActionCopy)),
		slog.Int("deleted", s.Count(ActionDelete)),
		slog.Int("unchanged", s.Unchanged),
		slog.Int("templates", s.Templates),
	)
}

// Notifier receives every action as it happens
type Notifier interface {
	Notify(Action)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Action)

// Notify calls f(a)
func (f NotifierFunc) Notify(a Action) { f(a) }

// LogNotifier writes actions to a structured logger
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs each action at info level
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the action
func (n *LogNotifier) Notify(a Action) {
	attrs := []any{"action", string(a.Kind), "target", a.Target}
	if a.Source != "" {
		attrs = append(attrs, "source", a.Source)
	}
	if a.DryRun {
		attrs = append(attrs, "dry_run", true)
	}
	n.logger.Info(a.String(), attrs...)
}
