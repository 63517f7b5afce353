package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
)

// Format selects how an ordering is laid out.
type Format string

const (
	FormatNewline Format = "newline"
	FormatSpace   Format = "space"

	DefaultFormat = FormatNewline
)

// ParseFormat parses "newline" or "space"; the empty string selects
// [DefaultFormat].
func ParseFormat(s string) (Format, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultFormat, nil
	}
	if err := errors.ValidateFormat(s, string(FormatNewline), string(FormatSpace)); err != nil {
		return "", err
	}
	return Format(strings.ToLower(s)), nil
}

// WriteOrdering writes the identifiers of o in position order.
func WriteOrdering(inst *model.Instance, o model.Ordering, f Format, w io.Writer) error {
	names := inst.NamesOf(o)
	var out string
	switch f {
	case FormatSpace:
		out = strings.Join(names, " ") + "\n"
	default:
		var b strings.Builder
		for _, nm := range names {
			b.WriteString(nm)
			b.WriteByte('\n')
		}
		out = b.String()
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportOrdering writes o to a file at path.
func ExportOrdering(inst *model.Instance, o model.Ordering, f Format, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	return WriteOrdering(inst, o, f, file)
}

// ReadOrdering reads whitespace-separated identifiers of inst and returns
// the ordering they describe. Every item must appear exactly once.
func ReadOrdering(inst *model.Instance, r io.Reader) (model.Ordering, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	seq := make([]model.Item, 0, inst.N())
	for sc.Scan() {
		id := sc.Text()
		it, ok := inst.Lookup(id)
		if !ok {
			return model.Ordering{}, errors.New(errors.ErrCodeInvalidOrdering, "unknown item %q at position %d", id, len(seq))
		}
		seq = append(seq, it)
	}
	if err := sc.Err(); err != nil {
		return model.Ordering{}, fmt.Errorf("read: %w", err)
	}
	if len(seq) != inst.N() {
		return model.Ordering{}, errors.New(errors.ErrCodeInvalidOrdering, "ordering lists %d items, instance has %d", len(seq), inst.N())
	}
	return model.NewOrdering(seq)
}

// ImportOrdering reads an ordering of inst from a file at path.
func ImportOrdering(inst *model.Instance, path string) (model.Ordering, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Ordering{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadOrdering(inst, f)
}
