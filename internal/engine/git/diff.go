package git

import (
	"strings"
)

// SplitDiffs splits a unified diff into per-file FileDiff entries.
// Each entry begins with "diff --git a/..." header. Text before the first
// header is ignored.
func SplitDiffs(rawDiff string) []FileDiff {
	if strings.TrimSpace(rawDiff) == "" {
		return nil
	}

	const diffPrefix = "diff --git "
	var diffs []FileDiff

	parts := strings.Split(rawDiff, "\n"+diffPrefix)
	for i, part := range parts {
		if i == 0 {
			if !strings.HasPrefix(part, diffPrefix) {
				continue
			}
			part = strings.TrimPrefix(part, diffPrefix)
		}
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		diffs = append(diffs, FileDiff{
			Path:    extractFilePath(part),
			Content: diffPrefix + part,
		})
	}

	return diffs
}

// ChangedFiles lists the destination paths a diff touches, in order of first
// appearance. It understands git headers ("diff --git a/x b/x") and plain
// unified headers ("+++ b/x"). Deleted files are reported by their old path.
func ChangedFiles(rawDiff string) []string {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if p != "" && p != "/dev/null" && !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, d := range SplitDiffs(rawDiff) {
		add(d.Path)
	}

	var minus string
	for _, line := range strings.Split(rawDiff, "\n") {
		switch {
		case strings.HasPrefix(line, "--- "):
			minus = headerPath(line[4:])
		case strings.HasPrefix(line, "+++ "):
			plus := headerPath(line[4:])
			if plus == "/dev/null" {
				plus = minus
			}
			add(plus)
		}
	}

	return files
}

// headerPath strips the a/ or b/ prefix and any trailing timestamp from a
// ---/+++ header value.
func headerPath(v string) string {
	if idx := strings.IndexByte(v, '\t'); idx >= 0 {
		v = v[:idx]
	}
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "a/") || strings.HasPrefix(v, "b/") {
		return v[2:]
	}
	return v
}

// extractFilePath parses the file path from a diff header line.
// Format: "a/<path> b/<path>\n..."
func extractFilePath(diffBlock string) string {
	firstLine := diffBlock
	if idx := strings.IndexByte(diffBlock, '\n'); idx >= 0 {
		firstLine = diffBlock[:idx]
	}

	// Parse "a/<path> b/<path>" and take the b/ (destination) path.
	parts := strings.SplitN(firstLine, " ", 2)
	if len(parts) == 2 {
		bPath := parts[1]
		if strings.HasPrefix(bPath, "b/") {
			return bPath[2:]
		}
		return bPath
	}

	if strings.HasPrefix(parts[0], "a/") {
		return parts[0][2:]
	}
	return parts[0]
}
