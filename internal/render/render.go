// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// PIPELINE
// =============================================================================

// stage is one rewriting step. fn receives the per-call state so stages can
// shield finished markup from the stages after them.
type stage struct {
	name string
	fn   func(st *state, s string) string
}

// pipeline is the fixed stage order. Do not reorder.
var pipeline = []stage{
	{"normalize", normalize},
	{"fences", fencedCode},
	{"inline-code", inlineCode},
	{"tables", tables},
	{"headers", headers},
	{"lists", lists},
	{"emphasis", emphasis},
	{"links", links},
	{"breaks", breaks},
}

// state carries shielded fragments for a single Render call.
type state struct {
	shields []string
}

// shield stores markup and returns a placeholder for it. Placeholders are
// delimited by NUL, which normalize strips from the input, so they cannot
// collide with reply text.
func (st *state) shield(markup string) string {
	st.shields = append(st.shields, markup)
	return "\x00" + strconv.Itoa(len(st.shields)-1) + "\x00"
}

var placeholderRegex = regexp.MustCompile("\x00([0-9]+)\x00")

func (st *state) restore(s string) string {
	return placeholderRegex.ReplaceAllStringFunc(s, func(m string) string {
		i, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || i >= len(st.shields) {
			return ""
		}
		return st.shields[i]
	})
}

// Render converts raw assistant text to HTML.
func Render(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	st := &state{}
	out := raw
	for _, stg := range pipeline {
		out = stg.fn(st, out)
	}
	return out
}

// Stages returns the stage names in execution order.
func Stages() []string {
	names := make([]string, len(pipeline))
	for i, stg := range pipeline {
		names[i] = stg.name
	}
	return names
}

// Step is the output of one stage, as reported by Trace.
type Step struct {
	Stage  string
	Output string
}

// Trace runs the pipeline and records the output after every stage.
// Shielded fragments show up as placeholders until the final stage.
func Trace(raw string) []Step {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	st := &state{}
	out := raw
	steps := make([]Step, 0, len(pipeline))
	for _, stg := range pipeline {
		out = stg.fn(st, out)
		steps = append(steps, Step{Stage: stg.name, Output: visiblePlaceholders(out)})
	}
	return steps
}

func visiblePlaceholders(s string) string {
	return placeholderRegex.ReplaceAllString(s, "{{code:$1}}")
}

// =============================================================================
// STAGE 0: NORMALIZE
// =============================================================================

var angleEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// normalize unifies line endings, drops NUL bytes and escapes angle brackets
// so no reply text can become markup.
func normalize(_ *state, s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	return angleEscaper.Replace(s)
}

// =============================================================================
// STAGE 1-2: CODE
// =============================================================================

var (
	fenceRegex      = regexp.MustCompile("(?s)```([A-Za-z0-9_+#-]*)[ \t]*\n(.*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
)

// fencedCode turns ```lang blocks into <pre><code>. Contents were escaped by
// normalize and keep their newlines.
func fencedCode(st *state, s string) string {
	return fenceRegex.ReplaceAllStringFunc(s, func(m string) string {
		parts := fenceRegex.FindStringSubmatch(m)
		lang := strings.ToLower(parts[1])
		if lang == "" {
			lang = "plaintext"
		}
		return st.shield(fmt.Sprintf(
			`<pre class="bg-slate-100 p-3 rounded-md overflow-x-auto"><code class="language-%s">%s</code></pre>`,
			lang, parts[2]))
	})
}

func inlineCode(st *state, s string) string {
	return inlineCodeRegex.ReplaceAllStringFunc(s, func(m string) string {
		code := m[1 : len(m)-1]
		return st.shield(`<code class="bg-slate-100 px-1 py-0.5 rounded text-sm">` + code + `</code>`)
	})
}

// =============================================================================
// STAGE 4: HEADERS
// =============================================================================

var (
	h3Regex = regexp.MustCompile(`(?m)^### (.*)$`)
	h2Regex = regexp.MustCompile(`(?m)^## (.*)$`)
	h1Regex = regexp.MustCompile(`(?m)^# (.*)$`)
)

func headers(_ *state, s string) string {
	s = h3Regex.ReplaceAllString(s, `<h3 class="text-lg font-semibold mt-4 mb-2">$1</h3>`)
	s = h2Regex.ReplaceAllString(s, `<h2 class="text-xl font-semibold mt-5 mb-3">$1</h2>`)
	return h1Regex.ReplaceAllString(s, `<h1 class="text-2xl font-bold mt-6 mb-4">$1</h1>`)
}

// =============================================================================
// STAGE 6: EMPHASIS
// =============================================================================

var (
	boldStarRegex       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderscoreRegex = regexp.MustCompile(`__(.+?)__`)
	italicStarRegex     = regexp.MustCompile(`\*([^*\n]+)\*`)

	// Underscore italics need a non-word character (or an edge) on both
	// sides so identifiers like snake_case_name stay intact.
	italicUnderscoreRegex = regexp.MustCompile(`(^|[^\w])_([^_\n]+)_($|[^\w])`)
)

func emphasis(_ *state, s string) string {
	s = boldStarRegex.ReplaceAllString(s, "<strong>$1</strong>")
	s = boldUnderscoreRegex.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicStarRegex.ReplaceAllString(s, "<em>$1</em>")

	// Adjacent matches share their boundary character, so run twice.
	for i := 0; i < 2; i++ {
		s = italicUnderscoreRegex.ReplaceAllString(s, "$1<em>$2</em>$3")
	}
	return s
}

// =============================================================================
// STAGE 7: LINKS
// =============================================================================

var linkRegex = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s]+)\)`)

var hrefEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "'", "&#39;")

// links turns [label](url) into anchors that open in a new tab without an
// opener or referrer. Targets with any scheme other than http, https or
// mailto are not linked; only the label is kept.
func links(_ *state, s string) string {
	return linkRegex.ReplaceAllStringFunc(s, func(m string) string {
		parts := linkRegex.FindStringSubmatch(m)
		label, target := parts[1], parts[2]
		if !safeLinkTarget(target) {
			return label
		}
		return fmt.Sprintf(
			`<a href="%s" target="_blank" rel="noopener noreferrer" class="text-blue-500 hover:underline">%s</a>`,
			hrefEscaper.Replace(target), label)
	})
}

// safeLinkTarget accepts http, https and mailto URLs and relative references.
func safeLinkTarget(target string) bool {
	end := strings.IndexAny(target, "/?#")
	if end < 0 {
		end = len(target)
	}
	colon := strings.IndexByte(target[:end], ':')
	if colon < 0 {
		return true
	}
	switch strings.ToLower(target[:colon]) {
	case "http", "https", "mailto":
		return true
	default:
		return false
	}
}

// =============================================================================
// STAGE 8: BREAKS
// =============================================================================

// breaks converts the remaining newlines and restores shielded code. It must
// run last.
func breaks(st *state, s string) string {
	s = strings.ReplaceAll(s, "\n", "<br>")
	return st.restore(s)
}
