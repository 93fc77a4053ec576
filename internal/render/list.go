// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"
)

// =============================================================================
// STAGE 5: LISTS
// =============================================================================

var (
	orderedItemRegex   = regexp.MustCompile(`^[ \t]*\d+\.[ \t]+(.*)$`)
	unorderedItemRegex = regexp.MustCompile(`^[ \t]*[-*][ \t]+(.*)$`)
)

type listKind int

const (
	notListItem listKind = iota
	orderedItem
	unorderedItem
)

const (
	orderedItemOpen   = `<li class="ml-6 list-decimal">`
	unorderedItemOpen = `<li class="ml-6 list-disc">`
	orderedListOpen   = `<ol class="list-decimal pl-4 my-2">`
	unorderedListOpen = `<ul class="list-disc pl-4 my-2">`
)

func classifyListLine(line string) (listKind, string) {
	if m := orderedItemRegex.FindStringSubmatch(line); m != nil {
		return orderedItem, m[1]
	}
	if m := unorderedItemRegex.FindStringSubmatch(line); m != nil {
		return unorderedItem, m[1]
	}
	return notListItem, ""
}

// lists turns "1." and "-"/"*" lines into list items and wraps each run of
// consecutive same-kind items in one <ol> or <ul>. A run is emitted as a
// single line; runs of different kinds never share a container.
func lists(_ *state, s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))

	var run strings.Builder
	runKind := notListItem

	flush := func() {
		if runKind == notListItem {
			return
		}
		if runKind == orderedItem {
			out = append(out, orderedListOpen+run.String()+"</ol>")
		} else {
			out = append(out, unorderedListOpen+run.String()+"</ul>")
		}
		run.Reset()
		runKind = notListItem
	}

	for _, line := range lines {
		kind, content := classifyListLine(line)
		if kind == notListItem {
			flush()
			out = append(out, line)
			continue
		}
		if kind != runKind {
			flush()
			runKind = kind
		}
		if kind == orderedItem {
			run.WriteString(orderedItemOpen)
		} else {
			run.WriteString(unorderedItemOpen)
		}
		run.WriteString(content)
		run.WriteString("</li>")
	}
	flush()

	return strings.Join(out, "\n")
}
