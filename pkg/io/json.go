package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
)

type instanceJSON struct {
	Items       []string    `json:"items"`
	Constraints [][3]string `json:"constraints"`
}

// ReadJSON decodes an instance from r.
//
// The input must be an object with an "items" array listing every
// identifier and a "constraints" array of [A, B, C] identifier triples.
// Unlike the text format, items are indexed in the order listed, so the
// listed order is the instance's identity ordering.
func ReadJSON(r io.Reader) (*model.Instance, error) {
	var data instanceJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}

	inst := &model.Instance{Names: data.Items}
	cs := make([]model.Constraint, len(data.Constraints))
	for i, t := range data.Constraints {
		var items [3]model.Item
		for j, id := range t {
			it, ok := inst.Lookup(id)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "constraint %d: unknown item %q", i+1, id)
			}
			items[j] = it
		}
		cs[i] = model.Constraint{A: items[0], B: items[1], C: items[2]}
	}
	return model.NewNamedInstance(data.Items, cs)
}

// ImportJSON reads a JSON instance file at path.
func ImportJSON(path string) (*model.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes inst as indented JSON.
func WriteJSON(inst *model.Instance, w io.Writer) error {
	out := instanceJSON{
		Items:       inst.Names,
		Constraints: make([][3]string, len(inst.Constraints)),
	}
	for i, c := range inst.Constraints {
		out.Constraints[i] = [3]string{inst.Name(c.A), inst.Name(c.B), inst.Name(c.C)}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes inst to a JSON file at path.
func ExportJSON(inst *model.Instance, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(inst, f)
}
