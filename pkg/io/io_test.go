package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
)

func TestReadInstanceNumeric(t *testing.T) {
	in := "4\n2\n0 2 1\n1 3 2\n"
	inst, err := ReadInstance(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadInstance: %v", err)
	}
	if inst.N() != 4 {
		t.Errorf("N() = %d, want 4", inst.N())
	}
	want := []model.Constraint{{A: 0, B: 2, C: 1}, {A: 1, B: 3, C: 2}}
	if len(inst.Constraints) != len(want) {
		t.Fatalf("got %d constraints, want %d", len(inst.Constraints), len(want))
	}
	for i, c := range want {
		if inst.Constraints[i] != c {
			t.Errorf("constraint %d = %v, want %v", i, inst.Constraints[i], c)
		}
	}
}

func TestReadInstanceNames(t *testing.T) {
	in := "3\n2\n\nMerlin Gandalf Dumbledore\n  Gandalf Dumbledore Merlin  \n\n"
	inst, err := ReadInstance(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadInstance: %v", err)
	}
	wantNames := []string{"Merlin", "Gandalf", "Dumbledore"}
	for i, nm := range wantNames {
		if inst.Names[i] != nm {
			t.Errorf("Names[%d] = %q, want %q", i, inst.Names[i], nm)
		}
	}
	if got := inst.Constraints[1]; got != (model.Constraint{A: 1, B: 2, C: 0}) {
		t.Errorf("second constraint = %v", got)
	}
}

func TestReadInstanceErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"empty", "", errors.ErrCodeInvalidFormat},
		{"bad n", "four\n1\n0 1 2\n", errors.ErrCodeInvalidFormat},
		{"zero items", "0\n0\n", errors.ErrCodeInvalidInput},
		{"negative k", "3\n-1\n", errors.ErrCodeInvalidInput},
		{"missing k", "3\n", errors.ErrCodeInvalidFormat},
		{"short triple", "3\n1\n0 1\n", errors.ErrCodeInvalidFormat},
		{"long triple", "3\n1\n0 1 2 0\n", errors.ErrCodeInvalidFormat},
		{"too few lines", "3\n2\n0 1 2\n", errors.ErrCodeInvalidFormat},
		{"trailing content", "3\n1\n0 1 2\n1 2 0\n", errors.ErrCodeInvalidFormat},
		{"out of range", "3\n1\n0 1 3\n", errors.ErrCodeInvalidInput},
		{"repeated item", "3\n1\n0 1 1\n", errors.ErrCodeInvalidInput},
		{"padded index", "8\n1\n0 1 007\n", errors.ErrCodeInvalidInput},
		{"too many names", "3\n2\na b c\na b d\n", errors.ErrCodeInvalidInput},
		{"too few names", "4\n1\na b c\n", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadInstance(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
		})
	}
}

func TestReadInstancePaddedIndexMessage(t *testing.T) {
	_, err := ReadInstance(strings.NewReader("8\n2\n0 1 2\n3 +4 007\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if msg := err.Error(); !strings.Contains(msg, "line 4") || !strings.Contains(msg, "item +4 is not a canonical index (write 4)") {
		t.Errorf("error = %q", msg)
	}
	if strings.Contains(err.Error(), "out of range") {
		t.Errorf("padded index reported as out of range: %v", err)
	}
}

func TestInstanceTextRoundTrip(t *testing.T) {
	inst, err := model.NewNamedInstance(
		[]string{"x", "y", "z", "w"},
		[]model.Constraint{{A: 0, B: 2, C: 1}, {A: 3, B: 1, C: 2}},
	)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteInstance(inst, &buf); err != nil {
		t.Fatalf("WriteInstance: %v", err)
	}
	want := "4\n2\nx z y\nw y z\n"
	if buf.String() != want {
		t.Errorf("WriteInstance = %q, want %q", buf.String(), want)
	}

	back, err := ReadInstance(&buf)
	if err != nil {
		t.Fatalf("ReadInstance: %v", err)
	}
	// Names are re-interned in order of first appearance.
	o := model.MustOrdering([]model.Item{0, 1, 2, 3})
	if got, want := back.NamesOf(o), []string{"x", "z", "y", "w"}; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	inst, err := model.NewNamedInstance(
		[]string{"a", "b", "c", "d"},
		[]model.Constraint{{A: 0, B: 2, C: 1}, {A: 1, B: 3, C: 2}},
	)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "inst.json")
	if err := ExportJSON(inst, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	back, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if back.N() != 4 || len(back.Constraints) != 2 {
		t.Fatalf("got n=%d k=%d", back.N(), len(back.Constraints))
	}
	for i := range inst.Constraints {
		if back.Constraints[i] != inst.Constraints[i] {
			t.Errorf("constraint %d = %v, want %v", i, back.Constraints[i], inst.Constraints[i])
		}
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed", `{"items": [`, errors.ErrCodeInvalidFormat},
		{"unknown item", `{"items": ["a","b","c"], "constraints": [["a","b","z"]]}`, errors.ErrCodeInvalidInput},
		{"duplicate item", `{"items": ["a","a","c"], "constraints": []}`, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
		})
	}
}

func TestWriteOrdering(t *testing.T) {
	inst := model.NewInstance(3, nil)
	o := model.MustOrdering([]model.Item{2, 0, 1})

	tests := []struct {
		format Format
		want   string
	}{
		{FormatNewline, "2\n0\n1\n"},
		{FormatSpace, "2 0 1\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteOrdering(inst, o, tt.format, &buf); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}

			back, err := ReadOrdering(inst, &buf)
			if err != nil {
				t.Fatalf("ReadOrdering: %v", err)
			}
			if !back.Equal(o) {
				t.Errorf("round trip = %v, want %v", back.Items(), o.Items())
			}
		})
	}
}

func TestReadOrderingErrors(t *testing.T) {
	inst := model.NewInstance(3, nil)
	tests := []struct {
		name string
		in   string
	}{
		{"unknown", "0 1 7"},
		{"short", "0 1"},
		{"repeat", "0 1 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOrdering(inst, strings.NewReader(tt.in))
			if got := errors.GetCode(err); got != errors.ErrCodeInvalidOrdering {
				t.Errorf("code = %v, want %v (%v)", got, errors.ErrCodeInvalidOrdering, err)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatNewline, false},
		{"newline", FormatNewline, false},
		{"SPACE", FormatSpace, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
