package kvserver

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/levkk/kvstore/internal/core/domain"
)

const (
	// Delimiter terminates every request and reply line.
	Delimiter byte = '\r'

	// OpMaxLen caps the length of the operation token.
	OpMaxLen = 24

	// ErrorPrefix starts an error reply.
	ErrorPrefix byte = '-'
)

// Op is a supported operation.
type Op uint8

const (
	OpInvalid Op = iota
	OpPing
	OpGet
	OpSet
	OpDel
	OpQuit
)

var opNames = [...]string{
	OpInvalid: "INVALID",
	OpPing:    "PING",
	OpGet:     "GET",
	OpSet:     "SET",
	OpDel:     "DEL",
	OpQuit:    "QUIT",
}

// opArity is the number of arguments each operation takes.
var opArity = [...]int{
	OpPing: 0,
	OpGet:  1,
	OpSet:  2,
	OpDel:  1,
	OpQuit: 0,
}

var opsByName = map[string]Op{
	"PING": OpPing,
	"GET":  OpGet,
	"SET":  OpSet,
	"DEL":  OpDel,
	"QUIT": OpQuit,
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "INVALID"
}

// Request is a decoded request line.
type Request struct {
	Op    Op
	Key   string
	Value []byte // encoded value argument of SET
}

// ReplyKind distinguishes the reply variants.
type ReplyKind uint8

const (
	ReplyNil ReplyKind = iota
	ReplyValue
	ReplyError
)

// Reply is the result of executing a request.
type Reply struct {
	Kind    ReplyKind
	Value   domain.Value
	Message string
}

// NilReply acknowledges a request without a payload.
func NilReply() Reply {
	return Reply{Kind: ReplyNil}
}

// ValueReply carries a value back to the client.
func ValueReply(v domain.Value) Reply {
	return Reply{Kind: ReplyValue, Value: v}
}

// ErrorReply converts err into an error reply.
func ErrorReply(err error) Reply {
	return Reply{Kind: ReplyError, Message: formatError(err)}
}

// IsError reports whether r is an error reply.
func (r Reply) IsError() bool {
	return r.Kind == ReplyError
}

// formatError renders "ERR <code> <message>[: details]" for domain errors
// and "ERR <message>" otherwise.
func formatError(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		msg := "ERR " + de.Code + " " + de.Message
		if de.Details != "" {
			msg += ": " + de.Details
		}
		return msg
	}
	return "ERR " + err.Error()
}

// IsComplete reports whether buf holds at least one full request line.
func IsComplete(buf []byte) bool {
	return bytes.IndexByte(buf, Delimiter) >= 0
}

// Decode parses one request line, without its delimiter.
func Decode(line []byte) (Request, error) {
	tokens := splitTokens(bytes.TrimSpace(line))
	if len(tokens) == 0 {
		return Request{}, domain.ErrEmptyRequest
	}

	name := tokens[0]
	if len(name) > OpMaxLen {
		return Request{}, domain.ErrOperationTooLong.WithDetails(
			fmt.Sprintf("%d bytes exceeds limit %d", len(name), OpMaxLen))
	}

	op, ok := opsByName[normalizeOpName(name)]
	if !ok {
		return Request{}, domain.ErrUnknownOperation.WithDetails(strconv.Quote(string(name)))
	}

	args := tokens[1:]
	if want := opArity[op]; len(args) != want {
		return Request{}, domain.ErrWrongArity.WithDetails(
			fmt.Sprintf("'%s' takes %d, got %d", op, want, len(args)))
	}

	req := Request{Op: op}
	switch op {
	case OpGet, OpDel:
		req.Key = string(args[0])
	case OpSet:
		req.Key = string(args[0])
		req.Value = bytes.Clone(args[1])
	}
	return req, nil
}

// Encode renders a reply as wire bytes.
func Encode(r Reply) []byte {
	return AppendReply(nil, r)
}

// AppendReply appends the wire encoding of r to dst.
func AppendReply(dst []byte, r Reply) []byte {
	switch r.Kind {
	case ReplyValue:
		dst = r.Value.AppendEncoded(dst)
	case ReplyError:
		dst = append(dst, ErrorPrefix)
		dst = append(dst, sanitizeLine(r.Message)...)
	}
	return append(dst, Delimiter)
}

// splitTokens splits on ASCII space, dropping empty tokens.
func splitTokens(line []byte) [][]byte {
	var out [][]byte
	for len(line) > 0 {
		i := bytes.IndexByte(line, ' ')
		if i < 0 {
			out = append(out, line)
			break
		}
		if i > 0 {
			out = append(out, line[:i])
		}
		line = line[i+1:]
	}
	return out
}

func normalizeOpName(b []byte) string {
	// Uppercase ASCII without allocating twice for already uppercased tokens.
	if bytes.ContainsAny(b, "abcdefghijklmnopqrstuvwxyz") {
		return strings.ToUpper(string(b))
	}
	return string(b)
}

// sanitizeLine keeps an error message on a single line.
func sanitizeLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
