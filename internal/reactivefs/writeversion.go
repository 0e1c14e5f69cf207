package reactivefs

import (
	"fmt"
	"os"

	"github.com/jsreactor/engine/internal/fspath"
	"github.com/jsreactor/engine/internal/helpers"
)

// writeVersionEnabled mirrors internal/fs's read-once-at-startup pattern for
// NEXT_TURBOPACK_IO_CONCURRENCY: TURBO_ENGINE_WRITE_VERSION is read exactly
// once, into a package-level var, and never re-read (spec §9 "Global
// state").
var writeVersionEnabled = readWriteVersionEnabled()

func readWriteVersionEnabled() bool {
	v := os.Getenv("TURBO_ENGINE_WRITE_VERSION")
	return v == "1" || v == "true"
}

// maybeWriteSidecar emits "<stem>.<hex16 of content hash>[.<ext>]" next to a
// successful write, when TURBO_ENGINE_WRITE_VERSION is enabled. The sidecar
// lets an external watcher distinguish "the same write landed twice" from "a
// new write landed" without re-reading the primary file.
func (f *FS) maybeWriteSidecar(p fspath.FsPath, content []byte, perm os.FileMode) {
	if !writeVersionEnabled {
		return
	}
	name := p.FileStem() + "." + contentHashHex16(content) + p.Extension()
	parent, ok := p.Parent()
	if !ok {
		return
	}
	sidecar, ok := parent.Join(name)
	if !ok {
		return
	}
	_ = f.raw.WriteFile(f.sysPath(sidecar), content, perm)
}

// contentHashHex16 widens helpers.HashCombine (32 bits) into a 64-bit,
// 16-hex-digit fingerprint by running it twice with different seeds and
// multipliers, avoiding a second hashing dependency for what is purely a
// content-identifying filename suffix, not a security-sensitive digest.
func contentHashHex16(content []byte) string {
	var h1, h2 uint32
	h1 = helpers.HashCombine(h1, uint32(len(content)))
	h2 = helpers.HashCombine(1, uint32(len(content)))
	for _, b := range content {
		h1 = helpers.HashCombine(h1, uint32(b))
		h2 = helpers.HashCombine(h2, uint32(b)*2654435761)
	}
	return fmt.Sprintf("%08x%08x", h1, h2)
}
