// Package chain keeps a tamper-evident, append-only log of workflow
// transitions. Every line carries the SHA-256 of the previous line's hash
// and its own body, so removing or editing a line breaks verification.
package chain

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shehrozeikram/ERP-sub009/internal/events"
)

var ErrBrokenChain = errors.New("audit chain broken")

// Entry is one line of the log.
type Entry struct {
	Event events.TransitionEvent `json:"event"`
	Prev  string                 `json:"prev"`
	Hash  string                 `json:"hash"`
}

// Writer appends entries. It implements events.Publisher so it can sit next
// to the broker publishers.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	prev []byte
}

// NewWriter opens path for appending and resumes the chain from its last
// entry.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	prev, err := lastHash(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, prev: prev}, nil
}

func (w *Writer) Close() error { return w.f.Close() }

func digest(prev []byte, evt events.TransitionEvent) ([]byte, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(append(append([]byte(nil), prev...), b...))
	return h[:], nil
}

func (w *Writer) PublishTransition(ctx context.Context, evt events.TransitionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	h, err := digest(w.prev, evt)
	if err != nil {
		return err
	}
	line, err := json.Marshal(Entry{Event: evt, Prev: hex.EncodeToString(w.prev), Hash: hex.EncodeToString(h)})
	if err != nil {
		return err
	}
	if _, err := w.f.Write(append(line, '\n')); err != nil {
		return err
	}
	w.prev = h
	return nil
}

// lastHash returns the hash of the final entry, or the zero hash for a new
// or empty file.
func lastHash(path string) ([]byte, error) {
	prev := make([]byte, sha256.Size)
	err := scan(path, func(_ int, e Entry) error {
		h, err := hex.DecodeString(e.Hash)
		if err != nil {
			return err
		}
		prev = h
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return make([]byte, sha256.Size), nil
	}
	return prev, err
}

func scan(path string, fn func(line int, e Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if err := fn(n, e); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Verify recomputes every hash in the file and returns the number of
// entries checked.
func Verify(path string) (int, error) {
	prev := make([]byte, sha256.Size)
	count := 0
	err := scan(path, func(line int, e Entry) error {
		if e.Prev != hex.EncodeToString(prev) {
			return fmt.Errorf("%w at line %d: prev mismatch", ErrBrokenChain, line)
		}
		h, err := digest(prev, e.Event)
		if err != nil {
			return err
		}
		if hex.EncodeToString(h) != e.Hash {
			return fmt.Errorf("%w at line %d: hash mismatch", ErrBrokenChain, line)
		}
		prev = h
		count++
		return nil
	})
	return count, err
}
