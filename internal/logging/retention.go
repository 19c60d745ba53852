package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a directory and a glob of files eligible for pruning.
// Keep lists absolute paths that must survive even when they are old, such as
// the live log file.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Keep    []string
}

// Prune removes files older than retentionDays from every target and returns
// how many were deleted. Zero or negative retention disables pruning.
func Prune(logger *slog.Logger, retentionDays int, now time.Time, targets ...RetentionTarget) int {
	if retentionDays <= 0 {
		return 0
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	removed := 0
	for _, target := range targets {
		removed += pruneTarget(logger, cutoff, target)
	}
	return removed
}

func pruneTarget(logger *slog.Logger, cutoff time.Time, target RetentionTarget) int {
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	keep := make(map[string]struct{}, len(target.Keep))
	for _, path := range target.Keep {
		if abs, err := filepath.Abs(path); err == nil {
			keep[abs] = struct{}{}
		}
	}
	pattern := strings.TrimSpace(target.Pattern)

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern != "" {
			if ok, err := filepath.Match(pattern, entry.Name()); err != nil || !ok {
				continue
			}
		}
		path, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if _, skip := keep[path]; skip {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "retention prune failed", "retention_prune_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions on the data directory"),
				String(FieldImpact, "old file remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("file pruned", String("path", path), String(FieldEventType, "file_pruned"))
		}
	}
	return removed
}
