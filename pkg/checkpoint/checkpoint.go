// Package checkpoint persists the best ordering of a solve between
// attempts so that an interrupted run can resume where it stopped.
//
// Checkpoints are msgpack-encoded and tied to an instance by its
// constraint-set fingerprint; loading a checkpoint for a different
// instance fails with INVALID_INPUT.
package checkpoint

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shamaton/msgpack/v2"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/model"
)

// Checkpoint is the persisted state of a solve.
type Checkpoint struct {
	Fingerprint uint64 `msgpack:"fingerprint"`
	N           int    `msgpack:"n"`
	RunID       string `msgpack:"run_id"`
	Attempt     int    `msgpack:"attempt"`
	Energy      int    `msgpack:"energy"`
	Seq         []int  `msgpack:"seq"`
	SavedAt     int64  `msgpack:"saved_at"`
}

// New captures o as the best ordering after attempt.
func New(fingerprint uint64, runID string, attempt, energy int, o model.Ordering) Checkpoint {
	seq := make([]int, o.Len())
	for p := range seq {
		seq[p] = int(o.At(p))
	}
	return Checkpoint{
		Fingerprint: fingerprint,
		N:           o.Len(),
		RunID:       runID,
		Attempt:     attempt,
		Energy:      energy,
		Seq:         seq,
		SavedAt:     time.Now().Unix(),
	}
}

// Ordering rebuilds the saved ordering.
func (c Checkpoint) Ordering() (model.Ordering, error) {
	items := make([]model.Item, len(c.Seq))
	for i, it := range c.Seq {
		items[i] = model.Item(it)
	}
	return model.NewOrdering(items)
}

// Matches checks that the checkpoint belongs to the instance with the
// given fingerprint and size.
func (c Checkpoint) Matches(fingerprint uint64, n int) error {
	if c.N != n || c.Fingerprint != fingerprint {
		return errors.New(errors.ErrCodeInvalidInput,
			"checkpoint is for a different instance (n=%d, fingerprint %016x; want n=%d, %016x)",
			c.N, c.Fingerprint, n, fingerprint)
	}
	return nil
}

// Time returns when the checkpoint was taken.
func (c Checkpoint) Time() time.Time { return time.Unix(c.SavedAt, 0) }

// Write encodes c to w.
func Write(w io.Writer, c Checkpoint) error {
	return msgpack.MarshalWrite(w, c)
}

// Read decodes a checkpoint from r.
func Read(r io.Reader) (Checkpoint, error) {
	var c Checkpoint
	if err := msgpack.UnmarshalRead(r, &c); err != nil {
		return Checkpoint{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode checkpoint")
	}
	return c, nil
}

// Marshal encodes c to bytes.
func Marshal(c Checkpoint) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a checkpoint from bytes.
func Unmarshal(data []byte) (Checkpoint, error) {
	return Read(bytes.NewReader(data))
}

// Save writes c to path atomically.
func Save(path string, c Checkpoint) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, c); err != nil {
		tmp.Close()
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a checkpoint file. A missing file is reported with code
// NOT_FOUND.
func Load(path string) (Checkpoint, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Checkpoint{}, errors.Wrap(errors.ErrCodeNotFound, err, "checkpoint %s", path)
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
