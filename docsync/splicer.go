// Package docsync performs idempotent, marker-delimited splicing of
// generated content into documents the tool does not own.
package docsync

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRegionNotFound reports that a region has no markers, no recognizable
// heading and no insertion anchor; the document is left untouched.
var ErrRegionNotFound = errors.New("region not found")

// Region names an independently replaceable span of a document and the
// cues used to locate it when explicit markers are absent.
type Region struct {
	// Name appears in the start/end marker comments.
	Name string

	// Heading locates the region in legacy documents without markers,
	// e.g. "## Recent Activity".
	Heading string

	// TrailerPrefix marks the last line of a legacy region,
	// e.g. "*Last scan:".
	TrailerPrefix string

	// InsertBefore is the anchor heading a new region is inserted
	// before when AllowInsert is set.
	InsertBefore string

	// AllowInsert permits creating the region when it does not exist.
	AllowInsert bool
}

// StartMarker returns the verbatim start marker line for a region name.
func StartMarker(name string) string {
	return fmt.Sprintf("<!-- AUTO-GENERATED:%s:START -->", name)
}

// EndMarker returns the verbatim end marker line for a region name.
func EndMarker(name string) string {
	return fmt.Sprintf("<!-- AUTO-GENERATED:%s:END -->", name)
}

// Splice replaces the content of the named region inside document,
// preserving every byte outside it. Resolution order: explicit markers,
// heading heuristics, insertion. Splicing twice with the same content
// yields the same document as splicing once.
func Splice(document string, region Region, content string) (string, error) {
	if spliced, ok := spliceMarked(document, region.Name, content); ok {
		return spliced, nil
	}
	if spliced, ok := spliceHeuristic(document, region, content); ok {
		return spliced, nil
	}
	if region.AllowInsert {
		return insert(document, region, content), nil
	}
	return document, fmt.Errorf("region %s: %w", region.Name, ErrRegionNotFound)
}

// spliceMarked replaces everything strictly between the start and end
// markers. Both markers must be present.
func spliceMarked(document, name, content string) (string, bool) {
	start := StartMarker(name)
	end := EndMarker(name)
	startIdx := strings.Index(document, start)
	if startIdx == -1 {
		return "", false
	}
	endIdx := strings.Index(document, end)
	if endIdx == -1 || endIdx < startIdx+len(start) {
		return "", false
	}
	return document[:startIdx+len(start)] + "\n" + content + "\n" + document[endIdx:], true
}

// spliceHeuristic replaces a legacy region located by its heading. The
// region ends at the nearest of: the next heading at the same or higher
// level, or the end of the trailer line.
func spliceHeuristic(document string, region Region, content string) (string, bool) {
	if region.Heading == "" {
		return "", false
	}
	headingIdx := lineIndex(document, region.Heading)
	if headingIdx == -1 {
		return "", false
	}

	end := len(document)
	searchFrom := headingIdx + 1
	if idx := nextHeading(document, searchFrom, headingLevel(region.Heading)); idx != -1 && idx < end {
		end = idx
	}
	if region.TrailerPrefix != "" {
		if idx := trailerEnd(document, searchFrom, region.TrailerPrefix); idx != -1 && idx < end {
			end = idx
		}
	}
	return document[:headingIdx] + content + document[end:], true
}

// insert adds a new marker-delimited block, before the anchor heading
// when present, appended at the end otherwise.
func insert(document string, region Region, content string) string {
	block := StartMarker(region.Name) + "\n" + content + "\n" + EndMarker(region.Name)
	if region.InsertBefore != "" {
		if idx := lineIndex(document, region.InsertBefore); idx != -1 {
			return document[:idx] + block + "\n\n" + document[idx:]
		}
	}
	if document != "" && !strings.HasSuffix(document, "\n") {
		document += "\n"
	}
	return document + "\n" + block + "\n"
}

// lineIndex returns the offset of the first line starting with prefix.
func lineIndex(document, prefix string) int {
	if strings.HasPrefix(document, prefix) {
		return 0
	}
	idx := strings.Index(document, "\n"+prefix)
	if idx == -1 {
		return -1
	}
	return idx + 1
}

// headingLevel counts leading '#' characters.
func headingLevel(heading string) int {
	level := 0
	for level < len(heading) && heading[level] == '#' {
		level++
	}
	return level
}

// nextHeading returns the offset of the newline preceding the next
// heading of at most maxLevel '#' characters at or after from.
func nextHeading(document string, from, maxLevel int) int {
	for i := from; i < len(document); {
		nl := strings.IndexByte(document[i:], '\n')
		if nl == -1 {
			return -1
		}
		lineStart := i + nl + 1
		level := 0
		for lineStart+level < len(document) && document[lineStart+level] == '#' {
			level++
		}
		if level > 0 && level <= maxLevel &&
			lineStart+level < len(document) && document[lineStart+level] == ' ' {
			return i + nl
		}
		i = lineStart
	}
	return -1
}

// trailerEnd returns the offset just past the trailer line's newline, or
// -1 when no complete trailer line exists after from.
func trailerEnd(document string, from int, prefix string) int {
	idx := strings.Index(document[from:], "\n"+prefix)
	if idx == -1 {
		return -1
	}
	lineStart := from + idx + 1
	nl := strings.IndexByte(document[lineStart:], '\n')
	if nl == -1 {
		return -1
	}
	return lineStart + nl + 1
}
