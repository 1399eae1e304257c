package vine

import (
	"strconv"
	"strings"
)

// PathRef is an immutable JSON Pointer under construction. Extending a path
// never modifies the receiver, so sibling branches may share a prefix.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
}

// Root returns the empty path ("/").
func Root() PathRef { return (*pathRef)(nil) }

// pathRef links each segment to its parent; a nil *pathRef is the root.
type pathRef struct {
	parent *pathRef
	token  string
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Field appends an object key, escaped per RFC 6901. An empty name leaves
// the path unchanged.
func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	return &pathRef{parent: p, token: pointerEscaper.Replace(name)}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parent: p, token: strconv.Itoa(i)}
}

func (p *pathRef) Pointer() string {
	if p == nil {
		return "/"
	}
	var segs []string
	for n := p; n != nil; n = n.parent {
		segs = append(segs, n.token)
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segs[i])
	}
	return b.String()
}
