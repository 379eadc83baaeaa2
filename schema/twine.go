package schema

import "strings"

// Twine is a lazily concatenated string: a binary tree whose leaves are
// string fragments. Building one composes structure only; bytes are copied
// once, when [Twine.String] materializes the result. The validator uses
// twines for object paths so that deep recursion does not rebuild path
// prefixes at every level; diagnostic messages are plain strings.
type Twine struct {
	left  fragment
	right fragment
}

// fragment is one side of a Twine: either a string or a nested twine.
type fragment struct {
	str   string
	twine *Twine
}

// NewTwine creates a twine holding a single string fragment.
func NewTwine(s string) *Twine {
	return &Twine{left: fragment{str: s}}
}

// Append returns a new twine representing t followed by s. t is unchanged.
func (t *Twine) Append(s string) *Twine {
	return &Twine{
		left:  fragment{twine: t},
		right: fragment{str: s},
	}
}

// AppendTwine returns a new twine representing t followed by other.
func (t *Twine) AppendTwine(other *Twine) *Twine {
	return &Twine{
		left:  fragment{twine: t},
		right: fragment{twine: other},
	}
}

// Len returns the total byte length of the materialized string.
func (t *Twine) Len() int {
	if t == nil {
		return 0
	}

	return t.left.len() + t.right.len()
}

func (f fragment) len() int {
	if f.twine != nil {
		return f.twine.Len()
	}

	return len(f.str)
}

// String materializes the twine into a single string.
func (t *Twine) String() string {
	var sb strings.Builder

	sb.Grow(t.Len())
	t.appendTo(&sb)

	return sb.String()
}

func (t *Twine) appendTo(sb *strings.Builder) {
	if t == nil {
		return
	}

	t.left.appendTo(sb)
	t.right.appendTo(sb)
}

func (f fragment) appendTo(sb *strings.Builder) {
	if f.twine != nil {
		f.twine.appendTo(sb)

		return
	}

	sb.WriteString(f.str)
}

// EndsWith reports whether the materialized string ends with suffix. The
// common case is answered from the last non-empty leaf without
// materializing the whole twine.
func (t *Twine) EndsWith(suffix string) bool {
	if t == nil {
		return suffix == ""
	}

	last := t.lastLeaf()
	if len(last) >= len(suffix) {
		return strings.HasSuffix(last, suffix)
	}

	return strings.HasSuffix(t.String(), suffix)
}

// lastLeaf returns the rightmost non-empty string fragment.
func (t *Twine) lastLeaf() string {
	if t == nil {
		return ""
	}

	for _, f := range []fragment{t.right, t.left} {
		if f.twine != nil {
			if leaf := f.twine.lastLeaf(); leaf != "" {
				return leaf
			}

			continue
		}

		if f.str != "" {
			return f.str
		}
	}

	return ""
}

// appendPath extends an object path with one component, inserting a slash
// separator unless the path already ends with one.
func appendPath(path *Twine, component string) *Twine {
	if path.EndsWith("/") {
		return path.Append(component)
	}

	return path.Append("/").Append(component)
}
