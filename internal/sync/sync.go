package sync

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/tmclass/exsync/internal/rules"
)

var (
	// ErrNotFile is returned when a path expected to be a regular file is not one
	ErrNotFile = errors.New("not a regular file")
	// ErrNotDir is returned when a path expected to be a directory is not one
	ErrNotDir = errors.New("not a directory")
	// ErrUnsupportedEntry is returned for symlinks, devices, pipes and sockets
	// found in the source tree
	ErrUnsupportedEntry = errors.New("unsupported file type")
)

const tmpPattern = ".exsync-tmp-*"

// Engine mirrors a source tree into a target tree
type Engine struct {
	fs       afero.Fs
	rules    *rules.Set
	logger   *slog.Logger
	notifier Notifier
	dryRun   bool
	summary  *Summary
}

// NewEngine creates a new sync engine. A nil notifier logs actions through logger.
func NewEngine(fsys afero.Fs, ruleSet *rules.Set, logger *slog.Logger, notifier Notifier, dryRun bool) *Engine {
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Engine{
		fs:       fsys,
		rules:    ruleSet,
		logger:   logger,
		notifier: notifier,
		dryRun:   dryRun,
		summary:  &Summary{},
	}
}

// Run reconciles source into targetParent/targetName and returns what was done.
// An empty targetName means the source directory name goes through the rename
// table like any other directory.
func (e *Engine) Run(source, targetParent, targetName string) (*Summary, error) {
	e.summary = &Summary{}

	e.logger.Info("starting sync",
		"source", source,
		"target_parent", targetParent,
		"target_name", targetName,
		"dry_run", e.dryRun)

	if err := e.SyncDir(source, targetParent, targetName); err != nil {
		return e.summary, err
	}

	if e.summary.Changed() {
		e.logger.Info("sync completed", "summary", e.summary)
	} else {
		e.logger.Info("sync completed, target already up to date", "summary", e.summary)
	}
	return e.summary, nil
}

// Summary returns the actions recorded since the last Run
func (e *Engine) Summary() *Summary {
	return e.summary
}

// SyncDir makes targetParent/<name> match source recursively, where name is
// targetName if set, or the renamed base name of source otherwise.
func (e *Engine) SyncDir(source, targetParent, targetName string) error {
	if err := e.requireDir(source); err != nil {
		return err
	}
	if err := e.requireDir(targetParent); err != nil {
		return err
	}
	return e.syncDir(source, targetParent, targetName, false)
}

// SyncFile reconciles one source file into targetDir
func (e *Engine) SyncFile(source, targetDir string) error {
	info, err := e.lstat(source)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", source, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", source, ErrNotFile)
	}
	if err := e.requireDir(targetDir); err != nil {
		return err
	}
	return e.syncFile(source, info, targetDir, false)
}

// syncDir does the work of SyncDir. fresh means targetParent was (or, in a dry
// run, would have been) created during this run and is known to be empty.
func (e *Engine) syncDir(source, targetParent, targetName string, fresh bool) error {
	if targetName == "" {
		targetName = e.rules.Renames.Forward(filepath.Base(source))
	}
	target := filepath.Join(targetParent, targetName)

	exists := false
	if !fresh {
		var err error
		if exists, err = e.prepareTarget(target, true); err != nil {
			return err
		}
	}
	if !exists {
		e.record(Action{Kind: ActionCreateDir, Target: target})
		if !e.dryRun {
			if err := e.fs.Mkdir(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		}
	}

	sourceChildren, err := afero.ReadDir(e.fs, source)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", source, err)
	}
	sourceNames := make(map[string]bool, len(sourceChildren))
	for _, child := range sourceChildren {
		sourceNames[child.Name()] = true
	}

	// Deletion pass first, so a rename that swaps names never collides.
	if exists {
		if err := e.deleteOrphans(target, sourceNames); err != nil {
			return err
		}
	}

	kept := lo.Filter(sourceChildren, func(child os.FileInfo, _ int) bool {
		return !e.rules.Ignores.Ignore(child.Name())
	})
	for _, child := range kept {
		childPath := filepath.Join(source, child.Name())
		switch mode := child.Mode(); {
		case mode.IsDir():
			if err := e.syncDir(childPath, target, "", !exists); err != nil {
				return err
			}
		case mode.IsRegular():
			if err := e.syncFile(childPath, child, target, !exists); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s (%s): %w", childPath, mode.Type(), ErrUnsupportedEntry)
		}
	}

	return nil
}

// deleteOrphans removes every non-ignored child of target whose source-side
// identity is missing from sourceNames
func (e *Engine) deleteOrphans(target string, sourceNames map[string]bool) error {
	children, err := afero.ReadDir(e.fs, target)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", target, err)
	}

	for _, child := range children {
		name := child.Name()
		if e.rules.Ignores.Ignore(name) {
			continue
		}
		if sourceNames[e.rules.Renames.Inverse(name)] {
			continue
		}
		if err := e.remove(filepath.Join(target, name)); err != nil {
			return err
		}
	}
	return nil
}

// syncFile applies the file decision policy: skip templates, rewrite text
// files through the substitutions, copy everything else byte for byte.
func (e *Engine) syncFile(source string, info os.FileInfo, targetDir string, fresh bool) error {
	name := info.Name()
	target := filepath.Join(targetDir, name)
	policy := e.rules.Templates

	switch {
	case policy.IsTemplate(name):
		e.logger.Debug("skipping template", "source", source)
		e.summary.Templates++
		return nil

	case policy.IsText(name):
		data, err := afero.ReadFile(e.fs, source)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", source, err)
		}
		rewritten := []byte(e.rules.Substitutions.Apply(string(data)))

		stale, err := e.isStale(target, contentHash(rewritten), fresh)
		if err != nil {
			return err
		}
		if !stale {
			e.logger.Debug("up to date", "target", target)
			e.summary.Unchanged++
			return nil
		}

		e.record(Action{Kind: ActionSynchronize, Source: source, Target: target})
		if e.dryRun {
			return nil
		}
		if err := e.writeFile(target, bytes.NewReader(rewritten), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		return nil

	default:
		hash, err := fileHash(e.fs, source)
		if err != nil {
			return fmt.Errorf("failed to compute hash for %s: %w", source, err)
		}

		stale, err := e.isStale(target, hash, fresh)
		if err != nil {
			return err
		}
		if !stale {
			e.logger.Debug("up to date", "target", target)
			e.summary.Unchanged++
			return nil
		}

		e.record(Action{Kind: ActionCopy, Source: source, Target: target})
		if e.dryRun {
			return nil
		}
		if err := e.copyFile(source, target, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to copy %s: %w", source, err)
		}
		return nil
	}
}

// isStale reports whether target is missing or its content hash differs from want
func (e *Engine) isStale(target, want string, fresh bool) (bool, error) {
	if fresh {
		return true, nil
	}
	exists, err := e.prepareTarget(target, false)
	if err != nil || !exists {
		return true, err
	}

	have, err := fileHash(e.fs, target)
	if err != nil {
		return false, fmt.Errorf("failed to compute hash for %s: %w", target, err)
	}
	return have != want, nil
}

// prepareTarget checks whether target exists with the expected kind. An entry
// of the wrong kind is removed, since the source side wins.
func (e *Engine) prepareTarget(target string, wantDir bool) (bool, error) {
	info, err := e.lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", target, err)
	}

	if wantDir && info.IsDir() || !wantDir && info.Mode().IsRegular() {
		return true, nil
	}

	e.logger.Debug("replacing target of a different kind", "target", target, "mode", info.Mode().Type())
	return false, e.remove(target)
}

func (e *Engine) remove(target string) error {
	e.record(Action{Kind: ActionDelete, Target: target})
	if e.dryRun {
		return nil
	}
	if err := e.fs.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to delete %s: %w", target, err)
	}
	return nil
}

func (e *Engine) record(a Action) {
	a.DryRun = e.dryRun
	e.summary.Actions = append(e.summary.Actions, a)
	e.notifier.Notify(a)
}

func (e *Engine) requireDir(path string) error {
	info, err := e.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotDir)
	}
	return nil
}

// lstat does not follow symlinks when the filesystem supports it
func (e *Engine) lstat(path string) (os.FileInfo, error) {
	if l, ok := e.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return e.fs.Stat(path)
}

// copyFile copies a file from src to dst with atomic write
func (e *Engine) copyFile(src, dst string, perm os.FileMode) error {
	srcFile, err := e.fs.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	return e.writeFile(dst, srcFile, perm)
}

// writeFile writes r to a temp file next to dst and renames it into place
func (e *Engine) writeFile(dst string, r io.Reader, perm os.FileMode) error {
	tmpFile, err := afero.TempFile(e.fs, filepath.Dir(dst), tmpPattern)
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = e.fs.Remove(tmpPath)
	}() // cleanup on error

	if _, err := io.Copy(tmpFile, r); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := e.fs.Chmod(tmpPath, perm); err != nil {
		return err
	}

	// Atomic rename
	return e.fs.Rename(tmpPath, dst)
}

// fileHash computes the SHA256 hash of a file
func fileHash(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// contentHash computes the SHA256 hash of in-memory content
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
