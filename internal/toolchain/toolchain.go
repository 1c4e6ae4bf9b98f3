// Package toolchain models the external image compressors: which ones exist
// on the host, and how to invoke one against a scratch file.
package toolchain

import (
	"os/exec"
	"sort"

	"imgcrush/internal/config"
)

// Name identifies a compression capability.
type Name string

const (
	Mozjpeg   Name = "mozjpeg"
	Pngquant  Name = "pngquant"
	Optipng   Name = "optipng"
	Zopflipng Name = "zopflipng"
	Cwebp     Name = "cwebp"
	Gifsicle  Name = "gifsicle"
)

// All lists every capability probed at startup, in report order.
var All = []Name{Mozjpeg, Optipng, Pngquant, Zopflipng, Cwebp, Gifsicle}

// InstallHint is shown when tools are missing.
const InstallHint = "brew install mozjpeg optipng pngquant zopfli webp gifsicle"

// Set records which capabilities are available. It is built once by Probe
// and only read afterwards, so concurrent readers need no locking.
type Set struct {
	available map[Name]bool
}

// NewSet builds a Set from an explicit availability map.
func NewSet(available map[Name]bool) Set {
	m := make(map[Name]bool, len(All))
	for _, n := range All {
		m[n] = false
	}
	for n, ok := range available {
		m[n] = ok
	}
	return Set{available: m}
}

// Has reports whether the capability is available.
func (s Set) Has(n Name) bool {
	return s.available[n]
}

// Missing returns unavailable capabilities, sorted.
func (s Set) Missing() []Name {
	var out []Name
	for n, ok := range s.available {
		if !ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Map returns a copy of the availability map, keyed by tool name.
func (s Set) Map() map[string]bool {
	out := make(map[string]bool, len(s.available))
	for n, ok := range s.available {
		out[string(n)] = ok
	}
	return out
}

// Binary returns the configured executable for a capability.
func Binary(paths config.ToolPaths, n Name) string {
	switch n {
	case Mozjpeg:
		return paths.Mozjpeg
	case Pngquant:
		return paths.Pngquant
	case Optipng:
		return paths.Optipng
	case Zopflipng:
		return paths.Zopflipng
	case Cwebp:
		return paths.Cwebp
	case Gifsicle:
		return paths.Gifsicle
	default:
		return ""
	}
}

// LookupFunc resolves an executable name; exec.LookPath in production.
type LookupFunc func(file string) (string, error)

// Probe checks each capability's binary exactly once. A missing binary is a
// normal outcome, never an error.
func Probe(paths config.ToolPaths) Set {
	return ProbeWith(paths, exec.LookPath)
}

// ProbeWith is Probe with an injectable lookup.
func ProbeWith(paths config.ToolPaths, lookup LookupFunc) Set {
	available := make(map[Name]bool, len(All))
	for _, n := range All {
		bin := Binary(paths, n)
		if bin == "" {
			available[n] = false
			continue
		}
		_, err := lookup(bin)
		available[n] = err == nil
	}
	return NewSet(available)
}
