package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"edaproxy/internal/config"
	"edaproxy/internal/invocation"
	"edaproxy/internal/logger"
	"edaproxy/internal/state"
)

// Report summarizes one SyncLinks run. Every tool lands in exactly one of
// Linked, Skipped or Failed; Removed lists links dropped because the tool left the config.
type Report struct {
	Linked  []string
	Skipped []string
	Failed  []string
	Removed []string
}

// LinkNames returns the link names for a registry: delegate first, then each
// recognized tool once, in configured order.
func LinkNames(tools config.ToolRegistry) []string {
	names := []string{invocation.DelegateTool}
	seen := map[string]bool{invocation.DelegateTool: true}
	for _, cmd := range tools.Commands {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" || seen[cmd] {
			continue
		}
		if strings.ContainsRune(cmd, filepath.Separator) {
			logger.Warn("[WARN] Skipping %q: tool names cannot contain a path separator\n", cmd)
			continue
		}
		seen[cmd] = true
		names = append(names, cmd)
	}
	return names
}

// SyncLinks creates or repairs one symlink per registered tool (plus delegate) in
// paths.BinDir, all pointing at paths.WrapperPath. Existing symlinks are replaced;
// regular files occupying a link path are left alone. Per-link failures are logged
// and reported without aborting the batch. Links recorded in st for tools no longer
// registered are removed when they still point at the wrapper.
func SyncLinks(paths config.Paths, tools config.ToolRegistry, st *state.State) (Report, error) {
	var report Report

	wrapper, err := filepath.Abs(paths.WrapperPath)
	if err != nil {
		return report, fmt.Errorf("resolve wrapper path %s: %w", paths.WrapperPath, err)
	}
	if _, err := os.Stat(wrapper); err != nil {
		return report, fmt.Errorf("wrapper does not exist: %w", err)
	}

	binDir, err := filepath.Abs(paths.BinDir)
	if err != nil {
		return report, fmt.Errorf("resolve bin dir %s: %w", paths.BinDir, err)
	}
	if _, err := os.Stat(binDir); errors.Is(err, fs.ErrNotExist) {
		logger.Info("[INFO] bin_dir does not exist. Creating: %s\n", binDir)
		if err := os.MkdirAll(binDir, 0755); err != nil {
			return report, fmt.Errorf("create bin dir %s: %w", binDir, err)
		}
	}

	logger.Info("[INFO] Setting up EDA symlinks in %s\n", binDir)

	desired := make(map[string]bool)
	for _, name := range LinkNames(tools) {
		desired[name] = true
		link := filepath.Join(binDir, name)

		if link == wrapper {
			logger.Warn("[WARN] Skipping %s: link path is the wrapper itself\n", name)
			report.Skipped = append(report.Skipped, name)
			continue
		}

		switch err := linkOne(wrapper, link); {
		case err == nil:
			logger.Info("[INFO] Linked: %s -> %s\n", name, wrapper)
			report.Linked = append(report.Linked, name)
			st.Links[name] = state.LinkState{Path: link, Target: wrapper}
		case errors.Is(err, errOccupied):
			logger.Warn("[WARN] Skipping %s: file exists and is not a symlink\n", name)
			report.Skipped = append(report.Skipped, name)
		case errors.Is(err, fs.ErrPermission):
			logger.Warn("[WARN] Permission denied creating symlink: %s\n", link)
			report.Failed = append(report.Failed, name)
		default:
			logger.Warn("[WARN] Failed to link %s: %v\n", name, err)
			report.Failed = append(report.Failed, name)
		}
	}

	report.Removed = pruneLinks(st, desired)

	logger.Info("[INFO] Done. Created/Updated %d symlinks.\n", len(report.Linked))
	return report, nil
}

var errOccupied = errors.New("path occupied by a non-symlink file")

// linkOne replaces any symlink at link with one pointing at wrapper.
func linkOne(wrapper, link string) error {
	info, err := os.Lstat(link)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		if err := os.Remove(link); err != nil {
			return err
		}
	case err == nil:
		return errOccupied
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return os.Symlink(wrapper, link)
}

// pruneLinks removes managed links whose tool is no longer desired. A link that was
// replaced by something else is forgotten but left in place.
func pruneLinks(st *state.State, desired map[string]bool) []string {
	var stale []string
	for name := range st.Links {
		if !desired[name] {
			stale = append(stale, name)
		}
	}
	sort.Strings(stale)

	var removed []string
	for _, name := range stale {
		managed := st.Links[name]
		target, err := os.Readlink(managed.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("[DEBUG] Managed link %s already gone\n", managed.Path)
		case err != nil || target != managed.Target:
			logger.Warn("[WARN] %s no longer points at the wrapper, leaving it in place\n", managed.Path)
		default:
			if err := os.Remove(managed.Path); err != nil {
				logger.Warn("[WARN] Failed to remove %s: %v\n", managed.Path, err)
				continue
			}
			logger.Warn("[WARN] %s removed from config. Unlinked %s\n", name, managed.Path)
			removed = append(removed, name)
		}
		delete(st.Links, name)
	}
	return removed
}

// LinkState describes what occupies a tool's link path.
type LinkState string

const (
	LinkOK      LinkState = "ok"
	LinkMissing LinkState = "missing"
	LinkForeign LinkState = "foreign"
	LinkStale   LinkState = "stale"
)

// Status is the observed state of one tool link.
type Status struct {
	Tool   string
	Path   string
	State  LinkState
	Target string
}

// LinkStatus inspects every link SyncLinks would manage without changing anything.
func LinkStatus(paths config.Paths, tools config.ToolRegistry) []Status {
	wrapper, _ := filepath.Abs(paths.WrapperPath)
	binDir, _ := filepath.Abs(paths.BinDir)

	var out []Status
	for _, name := range LinkNames(tools) {
		link := filepath.Join(binDir, name)
		s := Status{Tool: name, Path: link}

		info, err := os.Lstat(link)
		switch {
		case err != nil:
			s.State = LinkMissing
		case info.Mode()&os.ModeSymlink == 0:
			s.State = LinkForeign
		default:
			s.Target, _ = os.Readlink(link)
			if s.Target == wrapper {
				s.State = LinkOK
			} else {
				s.State = LinkStale
			}
		}
		out = append(out, s)
	}
	return out
}
