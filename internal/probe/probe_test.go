package probe

import (
	"errors"
	"testing"
)

func TestNewProbeValidation(t *testing.T) {
	tests := []struct {
		name      string
		probeName string
		args      []Argument
		wantErr   bool
	}{
		{name: "plain name", probeName: "query", wantErr: false},
		{name: "underscore start", probeName: "_commit", wantErr: false},
		{name: "digits inside", probeName: "phase2_done", wantErr: false},
		{name: "empty name", probeName: "", wantErr: true},
		{name: "digit start", probeName: "2fast", wantErr: true},
		{name: "dash inside", probeName: "tx-begin", wantErr: true},
		{name: "dot inside", probeName: "db.query", wantErr: true},
		{name: "unicode", probeName: "запрос", wantErr: true},
		{
			name:      "gapped positions",
			probeName: "query",
			args: []Argument{
				{Position: 0, Source: TypeString},
				{Position: 2, Source: TypeInt64},
			},
			wantErr: true,
		},
		{
			name:      "ordered positions",
			probeName: "query",
			args: []Argument{
				{Position: 0, Source: TypeString},
				{Position: 1, Source: TypeInt64},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProbe("db", tt.probeName, tt.args, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProbe(%q): err = %v, wantErr = %v", tt.probeName, err, tt.wantErr)
			}
			if err != nil {
				var def *InvalidProbeDefinitionError
				if !errors.As(err, &def) {
					t.Fatalf("expected *InvalidProbeDefinitionError, got %T", err)
				}
				if def.Field == "" {
					t.Error("error does not name the offending field")
				}
			}
		})
	}
}

func TestNewProviderRejectsDuplicateNames(t *testing.T) {
	q, err := NewProbe("db", "query", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	q2, err := NewProbe("db", "query", nil, "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewProvider("db", []Probe{q, q2}, ""); err == nil {
		t.Fatal("expected duplicate probe name to be rejected")
	}
}

func TestNewProviderRejectsBadName(t *testing.T) {
	if _, err := NewProvider("my.db", nil, ""); err == nil {
		t.Fatal("expected provider name with a dot to be rejected")
	}
}

func TestProbeImmutability(t *testing.T) {
	args := []Argument{{Position: 0, Source: TypeString}}
	p, err := NewProbe("db", "query", args, "")
	if err != nil {
		t.Fatal(err)
	}

	args[0].Source = TypeInt64
	if p.Args[0].Source != TypeString {
		t.Fatal("NewProbe must copy the argument slice, not alias it")
	}
}

func TestTypeTextRoundTrip(t *testing.T) {
	for tp, text := range typeValueMap {
		got, err := tp.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", tp, err)
		}
		if string(got) != text {
			t.Fatalf("marshal %v: got %q, want %q", tp, got, text)
		}

		var back Type
		if err := back.UnmarshalText(got); err != nil {
			t.Fatalf("unmarshal %q: %v", got, err)
		}
		if back != tp {
			t.Fatalf("round trip %q: got %v, want %v", text, back, tp)
		}
	}

	var tp Type
	if err := tp.UnmarshalText([]byte("float64")); err == nil {
		t.Fatal("expected unknown type text to fail")
	}
}
