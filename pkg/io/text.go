package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
)

// ReadInstance parses an instance in the text format from r.
// It does not close r.
func ReadInstance(r io.Reader) (*model.Instance, error) {
	sc := bufio.NewScanner(r)
	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			if s := strings.TrimSpace(sc.Text()); s != "" {
				return s, true
			}
		}
		return "", false
	}
	header := func(what string, min int) (int, error) {
		s, ok := next()
		if !ok {
			return 0, scanErr(sc, "missing %s count", what)
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, errors.New(errors.ErrCodeInvalidFormat, "line %d: %s count %q is not an integer", line, what, s)
		}
		if err := errors.ValidateCount(what, v, min); err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", line)
		}
		return v, nil
	}

	n, err := header("item", 1)
	if err != nil {
		return nil, err
	}
	k, err := header("constraint", 0)
	if err != nil {
		return nil, err
	}

	triples := make([][3]string, 0, k)
	lines := make([]int, 0, k)
	for len(triples) < k {
		s, ok := next()
		if !ok {
			return nil, scanErr(sc, "expected %d constraints, found %d", k, len(triples))
		}
		f := strings.Fields(s)
		if len(f) != 3 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: expected 3 identifiers, got %d", line, len(f))
		}
		triples = append(triples, [3]string{f[0], f[1], f[2]})
		lines = append(lines, line)
	}
	if s, ok := next(); ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: unexpected content %q after %d constraints", line, s, k)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return build(n, triples, lines)
}

// ImportInstance reads an instance file at path.
func ImportInstance(path string) (*model.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	inst, err := ReadInstance(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// WriteInstance writes inst in the text format, constraints in their
// original order.
func WriteInstance(inst *model.Instance, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n", inst.N(), len(inst.Constraints))
	for _, c := range inst.Constraints {
		fmt.Fprintf(bw, "%s %s %s\n", inst.Name(c.A), inst.Name(c.B), inst.Name(c.C))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportInstance writes inst to a text file at path.
func ExportInstance(inst *model.Instance, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteInstance(inst, f)
}

// build interns identifiers and assembles a validated instance. lines maps
// each triple to its source line for error messages; it may be nil.
func build(n int, triples [][3]string, lines []int) (*model.Instance, error) {
	where := func(i int) string {
		if lines != nil {
			return fmt.Sprintf("line %d", lines[i])
		}
		return fmt.Sprintf("constraint %d", i+1)
	}

	numeric := true
	padded := -1
	for i, t := range triples {
		for _, id := range t {
			v, err := strconv.Atoi(id)
			if err != nil {
				numeric = false
			} else if padded < 0 && strconv.Itoa(v) != id {
				padded = i
			}
		}
	}
	if numeric && padded >= 0 {
		for _, id := range triples[padded] {
			if v, _ := strconv.Atoi(id); strconv.Itoa(v) != id {
				return nil, errors.New(errors.ErrCodeInvalidInput, "%s: item %s is not a canonical index (write %d)", where(padded), id, v)
			}
		}
	}

	var names []string
	lookup := make(map[string]model.Item)
	if numeric {
		names = model.NewInstance(n, nil).Names
		for i, nm := range names {
			lookup[nm] = model.Item(i)
		}
	}

	cs := make([]model.Constraint, len(triples))
	for i, t := range triples {
		var items [3]model.Item
		for j, id := range t {
			it, ok := lookup[id]
			switch {
			case ok:
			case numeric:
				return nil, errors.New(errors.ErrCodeInvalidInput, "%s: item %s out of range [0, %d)", where(i), id, n)
			default:
				if err := errors.ValidateName(id); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", where(i))
				}
				if len(names) == n {
					return nil, errors.New(errors.ErrCodeInvalidInput, "%s: identifier %q exceeds the declared %d items", where(i), id, n)
				}
				it = model.Item(len(names))
				lookup[id] = it
				names = append(names, id)
			}
			items[j] = it
		}
		cs[i] = model.Constraint{A: items[0], B: items[1], C: items[2]}
		if err := cs[i].Check(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", where(i))
		}
	}
	if len(names) != n {
		return nil, errors.New(errors.ErrCodeInvalidInput, "constraints name %d distinct items, %d declared", len(names), n)
	}
	return model.NewNamedInstance(names, cs)
}

func scanErr(sc *bufio.Scanner, format string, args ...any) error {
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return errors.New(errors.ErrCodeInvalidFormat, format, args...)
}
