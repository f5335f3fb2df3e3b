// Package options decodes the path-encoded option list used by the /message
// endpoints, e.g. /message/key/sensor1/time_gt/10.
//
// The segments after the route prefix alternate name, value, name, value.
// Names may repeat; lookups return the first occurrence and later duplicates
// are ignored rather than merged or rejected.
package options

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/KhaledSharif/rocket/internal/errors"
)

// Pair is one decoded name/value option.
type Pair struct {
	Name  string
	Value string
}

// Set is the ordered list of options decoded from one request.
type Set struct {
	pairs []Pair
}

// Decode pairs up tokens in encounter order. An odd number of tokens fails
// with ErrMalformedOptions; nothing is returned in that case.
func Decode(tokens []string) (Set, error) {
	if len(tokens)%2 != 0 {
		return Set{}, errors.ErrMalformedOptions
	}

	pairs := make([]Pair, 0, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		pairs = append(pairs, Pair{Name: tokens[i], Value: tokens[i+1]})
	}
	return Set{pairs: pairs}, nil
}

// DecodePath splits an already unescaped path and decodes the resulting
// tokens. Request paths go through DecodeEscapedPath instead.
func DecodePath(path string) (Set, error) {
	return Decode(SplitPath(path))
}

// DecodeEscapedPath decodes a path as it appears on the wire. It splits on
// literal slashes first and unescapes each segment afterwards, so "%2F"
// stays inside its token: "value/a%2Fb" yields value="a/b".
func DecodeEscapedPath(path string) (Set, error) {
	segments := SplitPath(path)
	tokens := make([]string, len(segments))
	for i, seg := range segments {
		tok, err := url.PathUnescape(seg)
		if err != nil {
			return Set{}, fmt.Errorf("%w: %v", errors.ErrMalformedOptions, err)
		}
		tokens[i] = tok
	}
	return Decode(tokens)
}

// SplitPath splits a slash separated path into tokens. Empty segments are
// dropped, so "a//b/" yields ["a", "b"].
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

// Get returns the value of the first option named name.
func (s Set) Get(name string) (string, bool) {
	for _, p := range s.pairs {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether an option named name is present.
func (s Set) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Len returns the number of decoded pairs, duplicates included.
func (s Set) Len() int {
	return len(s.pairs)
}

// Pairs returns a copy of the decoded pairs in encounter order.
func (s Set) Pairs() []Pair {
	out := make([]Pair, len(s.pairs))
	copy(out, s.pairs)
	return out
}
