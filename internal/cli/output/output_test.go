package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	n := uint64(42)
	tests := []struct {
		name  string
		reply string
		want  Result
	}{
		{"nil", "", Result{Kind: KindNil}},
		{"integer", ":42", Result{Kind: KindInteger, Integer: &n}},
		{"string", "hello", Result{Kind: KindString, Value: "hello"}},
		{"colon not integer", ":abc", Result{Kind: KindString, Value: ":abc"}},
		{"coded error", "-ERR KV-PROT-4001 unknown operation: \"FOO\"",
			Result{Kind: KindError, Code: "KV-PROT-4001", Message: "unknown operation: \"FOO\""}},
		{"bare error", "-ERR oops", Result{Kind: KindError, Message: "oops"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.reply)
			if got.Kind != tt.want.Kind || got.Value != tt.want.Value ||
				got.Code != tt.want.Code || got.Message != tt.want.Message {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.reply, got, tt.want)
			}
			if (got.Integer == nil) != (tt.want.Integer == nil) {
				t.Fatalf("Parse(%q).Integer = %v, want %v", tt.reply, got.Integer, tt.want.Integer)
			}
			if got.Integer != nil && *got.Integer != *tt.want.Integer {
				t.Errorf("Parse(%q).Integer = %d, want %d", tt.reply, *got.Integer, *tt.want.Integer)
			}
			if got.IsError() != (tt.want.Kind == KindError) {
				t.Errorf("IsError() = %v", got.IsError())
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "*output.JSONFormatter"},
		{FormatYAML, "*output.YAMLFormatter"},
		{FormatText, "*output.TextFormatter"},
		{"unknown", "*output.TextFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format)
			var got string
			switch f.(type) {
			case *JSONFormatter:
				got = "*output.JSONFormatter"
			case *YAMLFormatter:
				got = "*output.YAMLFormatter"
			case *TextFormatter:
				got = "*output.TextFormatter"
			}
			if got != tt.want {
				t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"text", "json", "yaml"} {
		if !ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false", f)
		}
	}
	if ValidFormat("table") {
		t.Error("ValidFormat(table) = true")
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"", "(nil)\n"},
		{":7", "(integer) 7\n"},
		{"hi there", "\"hi there\"\n"},
		{"-ERR KV-VAL-4000 value is not a valid unsigned integer", "(error) KV-VAL-4000 value is not a valid unsigned integer\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if err := (&TextFormatter{}).Format(&buf, Parse(tt.reply)); err != nil {
			t.Fatalf("Format error: %v", err)
		}
		if buf.String() != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.reply, buf.String(), tt.want)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, Parse(":5")); err != nil {
		t.Fatalf("Format error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"kind": "integer"`) || !strings.Contains(out, `"integer": 5`) {
		t.Errorf("unexpected JSON: %s", out)
	}
	if strings.Contains(out, `"value"`) {
		t.Errorf("empty value should be omitted: %s", out)
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, Parse("-ERR KV-RATE-4290 rate limit exceeded")); err != nil {
		t.Fatalf("Format error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"kind: error", "code: KV-RATE-4290", "message: rate limit exceeded"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}
}
