// Package faceid ties capture and classification together: it decides
// whether a prediction counts as a recognized person and renders the
// result for the user.
package faceid

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/abihf/faceid/classifier"
	"github.com/pkg/errors"
)

// DefaultThreshold is the lowest best score that counts as a match.
const DefaultThreshold = 0.6

const noMatchText = "No Face was detected! \nPlease try again..."

// Result is a prediction judged against a threshold.
type Result struct {
	classifier.Prediction
	Match     bool
	Score     float32
	Threshold float64
}

// Evaluate applies the match threshold. Whatever label has the highest
// score, a best score below threshold is no match.
func Evaluate(p classifier.Prediction, threshold float64) Result {
	_, best := p.Best()
	return Result{
		Prediction: p,
		Score:      best,
		Threshold:  threshold,
		Match:      len(p.Scores) > 0 && float64(best) >= threshold,
	}
}

// Person returns the recognized label, or "" without a match.
func (r Result) Person() string {
	if !r.Match {
		return ""
	}
	return r.Label
}

func (r Result) String() string {
	if !r.Match {
		return noMatchText
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Final Result: %s\n", r.Label)
	for i, name := range r.Labels {
		fmt.Fprintf(&b, "\nPerson: %s \n Score: %.2f%%\n", name, r.Scores[i]*100)
	}
	return b.String()
}

// Identify classifies a still. Inference failures give a no-match
// result together with the error, so callers can show both.
func Identify(c classifier.Classifier, still []byte, threshold float64) (Result, error) {
	if still == nil {
		return Result{Threshold: threshold}, errors.New("no image captured")
	}
	p, err := c.Predict(still)
	if err != nil {
		return Result{Threshold: threshold}, err
	}
	r := Evaluate(p, threshold)
	slog.Info("Identified", "label", p.Label, "score", r.Score, "match", r.Match)
	return r, nil
}

// SaveSnapshot writes the still to path.
func SaveSnapshot(path string, still []byte) error {
	if still == nil {
		return errors.New("no image captured")
	}
	if err := os.WriteFile(path, still, 0o644); err != nil {
		return errors.Wrapf(err, "Can not write snapshot %s", path)
	}
	return nil
}

// Retrain runs the training utility as its own process and waits for it
// to exit, so a long training never blocks the caller's UI.
func Retrain(ctx context.Context, trainer, datasetDir, modelFile string) error {
	cmd := exec.CommandContext(ctx, trainer, "-dataset", datasetDir, "-model", modelFile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	start := time.Now()
	slog.Info("Running trainer", "cmd", cmd.String())
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "Trainer %s failed", trainer)
	}
	slog.Info("Trainer finished", "took", time.Since(start).Round(time.Second))
	return nil
}
