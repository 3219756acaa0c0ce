package main

import (
	"fmt"
	"log"
	"os"

	"github.com/abihf/faceid"
	"github.com/abihf/faceid/config"
)

var conf = config.Load()

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("Usage: %s <image file>", os.Args[0])
	}

	img, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	predictor, emb, err := faceid.NewPredictor(conf)
	if err != nil {
		log.Fatal(err)
	}
	defer emb.Close()

	p, err := predictor.Predict(img)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Image: %s\n", os.Args[1])
	fmt.Printf("Predicted label: %s\n", p.Label)
	for i, label := range p.Labels {
		fmt.Printf("  %-16s %6.2f%%\n", label, p.Scores[i]*100)
	}
	fmt.Println(faceid.Evaluate(p, conf.Threshold))
}
