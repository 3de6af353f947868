package benchmark

import (
	"testing"

	"github.com/levkk/kvstore/internal/core/domain"
	"github.com/levkk/kvstore/internal/server/kvserver"
)

func BenchmarkDecode(b *testing.B) {
	lines := []struct {
		name string
		line []byte
	}{
		{"ping", []byte("PING")},
		{"get", []byte("GET user:1000")},
		{"set_integer", []byte("SET counter :18446744073709551615")},
		{"set_lowercase", []byte("set greeting hello")},
	}

	for _, tt := range lines {
		b.Run(tt.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := kvserver.Decode(tt.line); err != nil {
					b.Fatalf("Decode failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkAppendReply(b *testing.B) {
	replies := []struct {
		name  string
		reply kvserver.Reply
	}{
		{"nil", kvserver.NilReply()},
		{"integer", kvserver.ValueReply(domain.IntegerValue(42))},
		{"string", kvserver.ValueReply(domain.RawStringValue([]byte("hello world")))},
		{"error", kvserver.ErrorReply(domain.ErrUnknownOperation)},
	}

	for _, tt := range replies {
		b.Run(tt.name, func(b *testing.B) {
			buf := make([]byte, 0, 128)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				buf = kvserver.AppendReply(buf[:0], tt.reply)
			}
		})
	}
}
