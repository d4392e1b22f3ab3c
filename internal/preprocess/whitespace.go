package preprocess

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/cupcake-policy/cupcake/internal/event"
)

// normalizeWhitespace collapses runs of tabs and spaces in a shell-command
// string to single spaces and trims leading/trailing whitespace, recording
// the as-submitted value at preprocessing.original_command.
//
// This defeats substring checks defeated by `rm  -rf` (double space) while
// leaving the normalized form at the original field so policies see a
// canonical shape without losing the original for audit.
func normalizeWhitespace(log zerolog.Logger, pp *event.Preprocessing, toolInput map[string]interface{}) {
	cmd, ok := stringField(toolInput, "command")
	if !ok {
		return
	}

	normalized := collapseWhitespace(cmd)
	if normalized == cmd {
		return
	}

	pp.OriginalCommand = cmd
	toolInput["command"] = normalized
	log.Debug().Str("original", cmd).Str("normalized", normalized).Msg("preprocess: whitespace normalized")
}

// collapseWhitespace collapses runs of tabs/spaces to a single space and
// trims the result. It is idempotent: collapseWhitespace(collapseWhitespace(x))
// == collapseWhitespace(x), since the output never contains a run of
// whitespace longer than one space nor leading/trailing whitespace.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
