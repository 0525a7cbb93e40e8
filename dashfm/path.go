package dashfm

import (
	"net/url"
	"strings"
)

// DefaultSeparator is the separator front ends use when building raw paths
const DefaultSeparator = `\`

// RemotePath locates a file in the dashboard file manager
type RemotePath struct {
	Dir  []string // Containing directory, outermost first
	Leaf string   // File name including extension
}

// Ext returns the substring after the last dot of the leaf.
// A leading dot (".hidden") does not start an extension.
func (p RemotePath) Ext() string {
	return Ext(p.Leaf)
}

// Base returns the leaf with its extension removed
func (p RemotePath) Base() string {
	ext := p.Ext()
	if ext == "" {
		return p.Leaf
	}
	return strings.TrimSuffix(p.Leaf, "."+ext)
}

// DirString returns the containing directory joined with /
func (p RemotePath) DirString() string {
	return strings.Join(p.Dir, "/")
}

// String returns dir/leaf, or just the leaf at the top level
func (p RemotePath) String() string {
	if len(p.Dir) == 0 {
		return p.Leaf
	}
	return p.DirString() + "/" + p.Leaf
}

// Ext returns the extension of a file name, without the dot
func Ext(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return ""
	}
	return name[idx+1:]
}

// SplitDir splits a directory string on both / and the given separator,
// dropping empty segments
func SplitDir(dir, sep string) []string {
	if sep != "" && sep != "/" {
		dir = strings.ReplaceAll(dir, sep, "/")
	}
	var segments []string
	for _, s := range strings.Split(dir, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// ContainingDir computes the directory part of a raw path as produced by the
// front end: the raw path is split on sep and its trailing leaf segment is
// dropped. "scripts\test.sk" and "scripts\" both yield ["scripts"].
func ContainingDir(rawPath, sep string) []string {
	if sep == "" {
		sep = DefaultSeparator
	}
	parts := strings.Split(rawPath, sep)
	parts = parts[:len(parts)-1]

	var segments []string
	for _, part := range parts {
		segments = append(segments, SplitDir(part, "/")...)
	}
	return segments
}

// dirParam renders the dir query value: /<base>/<segments...>, optionally
// with a trailing slash. Segments are query-escaped, separators are kept.
func dirParam(base string, segments []string, trailing bool) string {
	all := append(SplitDir(base, "/"), segments...)
	escaped := make([]string, len(all))
	for i, s := range all {
		escaped[i] = escapeSegment(s)
	}
	p := "/" + strings.Join(escaped, "/")
	if trailing && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

func escapeSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SplitLocalPath turns a local relative file path into the file name and the
// raw path the orchestrator expects, joined with sep
func SplitLocalPath(local, sep string) (name, rawPath string) {
	if sep == "" {
		sep = DefaultSeparator
	}
	segments := SplitDir(strings.ReplaceAll(local, `\`, "/"), "/")
	if len(segments) == 0 {
		return "", ""
	}
	return segments[len(segments)-1], strings.Join(segments, sep)
}
