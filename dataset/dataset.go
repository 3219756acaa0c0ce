// Package dataset reads and extends a labeled image folder laid out as
// <root>/<label>/*.{jpg,png}.
package dataset

import (
	"io/fs"
	"iter"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidLabel is returned for labels that can not be a folder name.
var ErrInvalidLabel = errors.New("invalid label")

// Sample is one labeled image on disk.
type Sample struct {
	Path  string
	Label string
}

// Read loads the image bytes.
func (s Sample) Read() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can not read sample %s", s.Path)
	}
	return data, nil
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".png":
		return true
	}
	return false
}

// Enumerate walks root lazily and yields every image together with the
// name of the folder containing it. Images directly in root have no
// label and are skipped, as are hidden folders; other files are
// ignored. Walk errors are
// yielded and the walk goes on.
//
// The sequence can be ranged over once; later ranges yield nothing.
func Enumerate(root string) iter.Seq2[Sample, error] {
	root = filepath.Clean(root)
	var used atomic.Bool
	return func(yield func(Sample, error) bool) {
		if used.Swap(true) {
			return
		}
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(Sample{}, errors.Wrapf(err, "Can not walk %s", path)) {
					return filepath.SkipAll
				}
				return nil
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !isImage(path) {
				return nil
			}

			dir := filepath.Dir(path)
			if dir == root {
				return nil
			}
			if !yield(Sample{Path: path, Label: filepath.Base(dir)}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Collect materializes a sample sequence, stopping at the first error.
func Collect(seq iter.Seq2[Sample, error]) ([]Sample, error) {
	var samples []Sample
	for s, err := range seq {
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// Shuffle reorders samples in place, deterministically for a given seed.
func Shuffle(samples []Sample, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
}

// Labels returns the sorted names of the label folders under root.
func Labels(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "Can not list %s", root)
	}
	var labels []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			labels = append(labels, e.Name())
		}
	}
	sort.Strings(labels)
	return labels, nil
}

// ValidateLabel checks that label can be used as a folder name.
func ValidateLabel(label string) error {
	if label == "" || label == "." || label == ".." {
		return errors.Wrapf(ErrInvalidLabel, "%q", label)
	}
	for _, r := range label {
		if unicode.IsSpace(r) || r == '/' || r == '\\' || !unicode.IsPrint(r) {
			return errors.Wrapf(ErrInvalidLabel, "%q contains %q", label, r)
		}
	}
	return nil
}

// Store writes img as a new sample of label and returns its path. The
// label is validated before anything is created.
func Store(root, label string, img []byte, ext string) (string, error) {
	if err := ValidateLabel(label); err != nil {
		return "", err
	}
	if ext == "" {
		ext = ".png"
	}
	if !isImage("x" + ext) {
		return "", errors.Errorf("unsupported image extension %q", ext)
	}

	dir := filepath.Join(root, label)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "Can not create %s", dir)
	}
	path := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", errors.Wrapf(err, "Can not write %s", path)
	}
	return path, nil
}
