package workspace

import (
	berrors "git.home.luguber.info/inful/bookbinder/internal/errors"
	"git.home.luguber.info/inful/bookbinder/internal/fsutil"
)

// CheckOverwriteViolation fails when target equals or is a descendant of the
// entry context directory (would clobber authored manuscripts) or of the
// workspace directory (would corrupt pipeline assumptions about workspace
// layout). label names the configured destination in the error message.
//
// This runs for every configured output destination before any entry is
// compiled; it is distinct from the workspace-vs-context containment check
// in Cleanup.
func CheckOverwriteViolation(target, contextDir, workspaceDir, label string) error {
	if fsutil.Contains(contextDir, target) {
		return berrors.NewConfigErrorf("%s %s overwrites the entry context directory %s", label, target, contextDir).
			WithContext("target", target)
	}
	if fsutil.Contains(workspaceDir, target) {
		return berrors.NewConfigErrorf("%s %s overwrites the workspace directory %s", label, target, workspaceDir).
			WithContext("target", target)
	}
	return nil
}
