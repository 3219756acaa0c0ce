package classifier

import (
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/abihf/faceid/dataset"
	"github.com/gammazero/workerpool"
	"github.com/pkg/errors"
)

// Trainer builds a Model from labeled samples.
type Trainer struct {
	Embedder Embedder

	// Workers bounds concurrent image loads and embeddings; default 4.
	Workers int

	// Seed fixes the sample order so training is reproducible.
	Seed uint64
}

type embedResult struct {
	label string
	desc  Descriptor
	err   error
}

// Train embeds every sample. Images without a single face are skipped;
// any other failure aborts training without a model.
func (t *Trainer) Train(samples []dataset.Sample) (*Model, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyDataset
	}
	workers := t.Workers
	if workers <= 0 {
		workers = 4
	}

	shuffled := append([]dataset.Sample(nil), samples...)
	dataset.Shuffle(shuffled, t.Seed)

	results := make([]embedResult, len(shuffled))
	var failed atomic.Bool

	wp := workerpool.New(workers)
	for i, s := range shuffled {
		wp.Submit(func() {
			if failed.Load() {
				return
			}
			results[i] = t.embed(s)
			if results[i].err != nil && !errors.Is(results[i].err, ErrNoFace) {
				failed.Store(true)
			}
		})
	}
	wp.StopWait()

	var kept []embedResult
	for i, r := range results {
		switch {
		case r.err == nil && r.label != "":
			kept = append(kept, r)
		case errors.Is(r.err, ErrNoFace):
			slog.Warn("Skipping image without a single face", "path", shuffled[i].Path)
		case r.err != nil:
			return nil, r.err
		}
	}
	if len(kept) == 0 {
		return nil, ErrEmptyDataset
	}
	return buildModel(kept), nil
}

func (t *Trainer) embed(s dataset.Sample) embedResult {
	img, err := s.Read()
	if err != nil {
		return embedResult{err: err}
	}
	desc, err := t.Embedder.Embed(img)
	if err != nil {
		if errors.Is(err, ErrNoFace) {
			return embedResult{err: err}
		}
		return embedResult{err: errors.Wrapf(err, "Can not embed %s", s.Path)}
	}
	return embedResult{label: s.Label, desc: desc}
}

// buildModel orders classes by label so indexes do not depend on the
// sample order.
func buildModel(results []embedResult) *Model {
	index := map[string]int{}
	for _, r := range results {
		index[r.label] = 0
	}
	labels := make([]string, 0, len(index))
	for l := range index {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for i, l := range labels {
		index[l] = i
	}

	m := &Model{Labels: labels, Samples: make([]Entry, 0, len(results))}
	for _, r := range results {
		m.Samples = append(m.Samples, Entry{Class: index[r.label], Descriptor: r.desc})
	}
	return m
}

// TrainDir trains on every sample under root and saves the model to
// path. Nothing is written when training fails.
func (t *Trainer) TrainDir(root, path string) (*Model, error) {
	samples, err := dataset.Collect(dataset.Enumerate(root))
	if err != nil {
		return nil, err
	}
	slog.Info("Training", "images", len(samples), "dataset", root)

	start := time.Now()
	m, err := t.Train(samples)
	if err != nil {
		return nil, err
	}
	slog.Info("Training done",
		"took", time.Since(start).Round(time.Millisecond),
		"classes", len(m.Labels),
		"samples", len(m.Samples))

	if err := m.Save(path); err != nil {
		return nil, err
	}
	return m, nil
}
