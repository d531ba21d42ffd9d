// Package manifest scopes in-place edits of working tree files such as package manifests and
// registry configuration to the processing of a single package.
package manifest

import (
	"os"

	"github.com/monorel/monorel/internal/errors"
)

// Snapshot holds the content of a file taken before it is modified.
type Snapshot struct {
	path    string
	content []byte
	mode    os.FileMode
	existed bool
}

// Take records the current state of the file at path. A missing file is recorded as such and
// restoring the snapshot removes whatever was written there in the meantime.
func Take(path string) (*Snapshot, error) {
	snap := &Snapshot{path: path}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return snap, nil
	}

	if err != nil {
		return nil, errors.New(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err)
	}

	snap.content = content
	snap.mode = info.Mode().Perm()
	snap.existed = true

	return snap, nil
}

func (snap *Snapshot) Path() string {
	return snap.path
}

// Restore puts the file back into the recorded state.
func (snap *Snapshot) Restore() error {
	if !snap.existed {
		if err := os.Remove(snap.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.New(err)
		}

		return nil
	}

	if err := os.WriteFile(snap.path, snap.content, snap.mode); err != nil {
		return errors.New(err)
	}

	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(snap.path, snap.mode); err != nil {
		return errors.New(err)
	}

	return nil
}

// Snapshots restores several files together.
type Snapshots []*Snapshot

// TakeAll snapshots every path. Nothing is kept when one of them fails.
func TakeAll(paths ...string) (Snapshots, error) {
	snaps := make(Snapshots, 0, len(paths))

	for _, path := range paths {
		snap, err := Take(path)
		if err != nil {
			return nil, err
		}

		snaps = append(snaps, snap)
	}

	return snaps, nil
}

// Restore restores every snapshot in reverse order and reports all failures.
func (snaps Snapshots) Restore() error {
	errs := &errors.MultiError{}

	for i := len(snaps) - 1; i >= 0; i-- {
		errs = errs.Append(snaps[i].Restore())
	}

	return errs.ErrorOrNil()
}
