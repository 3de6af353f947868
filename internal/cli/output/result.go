package output

import (
	"strconv"
	"strings"
)

// Kind classifies a reply.
type Kind string

const (
	KindNil     Kind = "nil"
	KindInteger Kind = "integer"
	KindString  Kind = "string"
	KindError   Kind = "error"
)

// Result is a parsed reply line.
type Result struct {
	Kind    Kind    `json:"kind" yaml:"kind"`
	Integer *uint64 `json:"integer,omitempty" yaml:"integer,omitempty"`
	Value   string  `json:"value,omitempty" yaml:"value,omitempty"`
	Code    string  `json:"code,omitempty" yaml:"code,omitempty"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// IsError reports whether the server returned an error reply.
func (r Result) IsError() bool {
	return r.Kind == KindError
}

// Parse classifies a reply line stripped of its delimiter.
func Parse(reply string) Result {
	switch {
	case reply == "":
		return Result{Kind: KindNil}
	case strings.HasPrefix(reply, "-"):
		return parseError(reply[1:])
	case strings.HasPrefix(reply, ":"):
		if n, err := strconv.ParseUint(reply[1:], 10, 64); err == nil {
			return Result{Kind: KindInteger, Integer: &n}
		}
	}
	return Result{Kind: KindString, Value: reply}
}

// parseError splits "ERR <code> <message>".
func parseError(s string) Result {
	s = strings.TrimPrefix(s, "ERR ")
	code, msg, found := strings.Cut(s, " ")
	if !found || !strings.HasPrefix(code, "KV-") {
		return Result{Kind: KindError, Message: s}
	}
	return Result{Kind: KindError, Code: code, Message: msg}
}
