package preprocess

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/cupcake-policy/cupcake/internal/event"
)

// filePathFields lists the tool_input keys that carry a path, in priority
// order.
var filePathFields = []string{"file_path", "path", "notebook_path"}

// resolveSymlink canonicalizes the first path-bearing field it finds against
// the event's cwd, setting resolved_file_path/is_symlink/original_file_path.
//
// resolved_file_path is always set for file-operation events, even when the
// path does not exist yet: on lstat failure the field falls back to the
// absolute cwd-joined path with is_symlink=false. A dangling symlink (one
// whose target does not exist) instead reports the target's own read-link
// value, not the symlink's path.
//
// If canonicalization resolves outside the project root, this function does
// not reject or rewrite the result — it is not the preprocessor's job to
// enforce containment, only to expose the true resolved path so a policy can
// decide.
func resolveSymlink(log zerolog.Logger, pp *event.Preprocessing, toolInput map[string]interface{}, cwd string) {
	var field, raw string
	for _, f := range filePathFields {
		if v, ok := stringField(toolInput, f); ok && v != "" {
			field, raw = f, v
			break
		}
	}
	if field == "" {
		return
	}

	pp.OriginalFilePath = raw

	joined := raw
	if !filepath.IsAbs(joined) {
		joined = filepath.Join(cwd, raw)
	}

	info, lerr := os.Lstat(joined)
	if lerr != nil {
		abs, aerr := filepath.Abs(joined)
		if aerr != nil {
			log.Warn().Err(aerr).Str("path", joined).Msg("preprocess: could not make path absolute")
			return
		}
		pp.ResolvedFilePath = abs
		pp.IsSymlink = false
		return
	}

	resolved, rerr := filepath.EvalSymlinks(joined)
	if rerr != nil {
		pp.IsSymlink = info.Mode()&os.ModeSymlink != 0
		if pp.IsSymlink {
			// Dangling symlink: EvalSymlinks fails because the target
			// doesn't exist, but the link itself is readable. Report the
			// target's read-link value rather than the symlink's own path.
			if target, lerr := os.Readlink(joined); lerr == nil {
				if !filepath.IsAbs(target) {
					target = filepath.Join(filepath.Dir(joined), target)
				}
				pp.ResolvedFilePath = filepath.Clean(target)
				return
			}
		}
		// Unreadable ancestor directory, or the readlink itself failed:
		// fall back to the absolute as-submitted path rather than leaving
		// the field unset.
		abs, aerr := filepath.Abs(joined)
		if aerr == nil {
			pp.ResolvedFilePath = abs
		}
		return
	}

	pp.ResolvedFilePath = resolved
	pp.IsSymlink = info.Mode()&os.ModeSymlink != 0
}
