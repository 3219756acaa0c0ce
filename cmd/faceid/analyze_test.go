package main

import (
	"strings"
	"testing"

	"github.com/abihf/faceid/classifier"
	"github.com/pkg/errors"
)

type fixedClassifier struct {
	pred classifier.Prediction
	err  error
}

func (c fixedClassifier) Predict([]byte) (classifier.Prediction, error) {
	return c.pred, c.err
}

func TestAnalyze(t *testing.T) {
	var noModel *classifier.Predictor

	tests := []struct {
		name    string
		c       classifier.Classifier
		wantErr error
		want    string
	}{
		{
			name: "match",
			c: fixedClassifier{pred: classifier.Prediction{
				Label:  "bob",
				Labels: []string{"alice", "bob"},
				Scores: []float32{0.2, 0.8},
			}},
			want: "Final Result: bob",
		},
		{
			name:    "no model loaded",
			c:       noModel,
			wantErr: classifier.ErrNoModelLoaded,
			want:    "model",
		},
		{
			name:    "inference fault",
			c:       fixedClassifier{err: errors.Wrap(classifier.ErrInferenceFault, "dlib exploded")},
			wantErr: classifier.ErrInferenceFault,
			want:    "dlib exploded",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report, err := analyze(tc.c, []byte("png"), 0.6)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("analyze: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("error: got %v, want %v", err, tc.wantErr)
			}
			if !strings.Contains(report, tc.want) {
				t.Errorf("report %q does not mention %q", report, tc.want)
			}
		})
	}
}

func TestPeopleText(t *testing.T) {
	if got := peopleText(nil); got != "Nobody added yet" {
		t.Errorf("empty: got %q", got)
	}
	got := peopleText([]string{"alice", "bob"})
	if !strings.Contains(got, "alice") || !strings.Contains(got, "bob") {
		t.Errorf("got %q", got)
	}
}
