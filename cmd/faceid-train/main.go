package main

import (
	"flag"
	"log"

	"github.com/abihf/faceid/classifier"
	"github.com/abihf/faceid/config"
)

var conf = config.Load()

func main() {
	datasetDir := flag.String("dataset", conf.Dataset, "folder with one sub folder of images per person")
	modelFile := flag.String("model", conf.ModelFile, "where to write the trained model")
	flag.Parse()

	emb, err := classifier.NewDlibEmbedder(conf.DlibModels)
	must(err)
	defer emb.Close()

	trainer := &classifier.Trainer{
		Embedder: emb,
		Workers:  conf.Workers,
		Seed:     1,
	}
	m, err := trainer.TrainDir(*datasetDir, *modelFile)
	must(err)

	log.Printf("Model saved to: %s (%d people)", *modelFile, len(m.Labels))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
