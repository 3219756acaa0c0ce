package main

import (
	"github.com/abihf/faceid"
	"github.com/abihf/faceid/classifier"
)

// analyze identifies the person in a still and renders the report shown
// in the results box. A model or inference failure still yields the
// no-match report, and the error is returned for a dialog.
func analyze(c classifier.Classifier, still []byte, threshold float64) (string, error) {
	res, err := faceid.Identify(c, still, threshold)
	if err != nil {
		return res.String() + "\n" + err.Error(), err
	}
	return res.String(), nil
}

// peopleText lists the known people for the side panel.
func peopleText(labels []string) string {
	if len(labels) == 0 {
		return "Nobody added yet"
	}
	text := "Known people:"
	for _, l := range labels {
		text += "\n  " + l
	}
	return text
}
