package preprocess

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/cupcake-policy/cupcake/internal/event"
)

// interpreters is the set of interpreter names whose `-c <body>` form is
// inspected.
var interpreters = map[string]bool{
	"bash": true, "sh": true, "zsh": true, "dash": true,
	"python": true, "python3": true, "node": true, "ruby": true, "perl": true,
}

// inspectScript extracts the <body> from a `<interp> -c <body>` command and
// exposes it at preprocessing.inspected_script, without ever executing it
//. It handles single-, double-, and unquoted bodies.
func inspectScript(log zerolog.Logger, pp *event.Preprocessing, toolInput map[string]interface{}) {
	cmd, ok := stringField(toolInput, "command")
	if !ok {
		return
	}

	body, ok := extractDashCBody(cmd)
	if !ok {
		return
	}

	pp.InspectedScript = body
	log.Debug().Str("inspected_script", body).Msg("preprocess: extracted -c script body")
}

// extractDashCBody parses `<interp> -c <body>` where interp is a known
// shell/language interpreter name (optionally path-qualified, e.g.
// /usr/bin/bash or /usr/bin/env bash). It returns the unquoted body and true
// on success.
func extractDashCBody(cmd string) (string, bool) {
	fields := tokenize(cmd)
	if len(fields) < 3 {
		return "", false
	}

	idx := 0
	interp := baseName(fields[0])
	if interp == "env" && len(fields) > 1 {
		idx = 1
		interp = baseName(fields[1])
	}
	if !interpreters[interp] {
		return "", false
	}

	// Find "-c" after the interpreter token.
	for i := idx + 1; i < len(fields)-1; i++ {
		if fields[i] == "-c" {
			rest := strings.TrimSpace(cmd[indexOfField(cmd, fields, i+1):])
			return unquote(rest), true
		}
	}
	return "", false
}

// tokenize performs a minimal whitespace-aware split that respects a single
// level of quoting, just enough to find the "-c" flag position. It is not
// a shell parser and does not interpret any other shell semantics.
func tokenize(s string) []string {
	var fields []string
	var cur strings.Builder
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

// indexOfField returns the byte offset in s where the i-th tokenized field
// begins, so the remainder of the original string (including everything
// after "-c", unsplit) can be taken as the script body.
func indexOfField(s string, fields []string, i int) int {
	pos := 0
	for j := 0; j < i; j++ {
		idx := strings.Index(s[pos:], fields[j])
		if idx < 0 {
			return len(s)
		}
		pos += idx + len(fields[j])
	}
	// Skip any whitespace between the previous field and this one.
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	return pos
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// unquote strips one layer of enclosing single or double quotes, if present.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
