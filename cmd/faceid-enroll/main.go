package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/abihf/faceid"
	"github.com/abihf/faceid/config"
	"github.com/abihf/faceid/dataset"
)

var conf = config.Load()

func main() {
	if err := mainE(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func mainE() error {
	count := flag.Int("count", 5, "number of pictures to take")
	interval := flag.Duration("interval", time.Second, "pause between pictures")
	device := flag.Int("device", conf.Device, "camera device id")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <name>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	label := flag.Arg(0)
	if err := dataset.ValidateLabel(label); err != nil {
		return err
	}

	detector, err := faceid.NewFaceDetector(conf.Cascade)
	if err != nil {
		slog.Warn("Face check disabled", "error", err)
	} else {
		defer detector.Close()
	}

	session, err := faceid.NewSession(conf, nil)
	if err != nil {
		return err
	}
	defer session.Dispose()
	shooter := faceid.NewShooter(session, conf)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	for taken := 0; taken < *count; {
		still, err := shooter.Shoot(ctx, *device)
		if err != nil {
			return err
		}

		if detector != nil {
			faces, err := detector.Count(still)
			if err != nil {
				return err
			}
			if faces != 1 {
				fmt.Printf("  - %d faces in view, retrying\n", faces)
				continue
			}
		}

		path, err := dataset.Store(conf.Dataset, label, still, ".png")
		if err != nil {
			return err
		}
		taken++
		fmt.Printf("  - [%d/%d] %s\n", taken, *count, path)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(*interval):
		}
	}

	fmt.Printf("Stored %d pictures of %s, retrain to use them\n", *count, label)
	return nil
}
