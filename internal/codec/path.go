package codec

import (
	"strconv"
	"strings"
)

// PathSeg addresses one step into a nested Value: either a map key or an
// array index.
type PathSeg struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is an ordered list of PathSeg from the document root to a leaf.
type Path []PathSeg

// key returns a canonical string encoding of the path suitable for use as
// a Go map key. "\x00" cannot appear in a BSON field name or be produced
// by strconv.Itoa, so it is a safe segment separator.
func (p Path) key() string {
	var b strings.Builder
	for _, seg := range p {
		if seg.IsIndex {
			b.WriteString("i:")
			b.WriteString(strconv.Itoa(seg.Index))
		} else {
			b.WriteString("k:")
			b.WriteString(seg.Key)
		}
		b.WriteByte(0)
	}
	return b.String()
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

func appendKey(p Path, key string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = PathSeg{Key: key}
	return out
}

func appendIndex(p Path, idx int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = PathSeg{Index: idx, IsIndex: true}
	return out
}
