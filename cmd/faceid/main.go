package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/abihf/faceid"
	"github.com/abihf/faceid/capture"
	"github.com/abihf/faceid/classifier"
	"github.com/abihf/faceid/config"
	"github.com/abihf/faceid/dataset"
	"github.com/pkg/errors"
)

type window struct {
	conf *config.Config
	win  fyne.Window

	session   *capture.Session
	frames    *capture.ChanPreview
	devices   []capture.DeviceInfo
	lastStill []byte

	mu        sync.Mutex
	predictor *classifier.Predictor
	embedder  classifier.Embedder

	camera  *widget.Select
	preview *canvas.Image
	loader  *widget.ProgressBarInfinite
	results *widget.Entry
	person  *widget.Entry
	people  *widget.Label

	startBtn, stopBtn, addBtn, trainBtn *widget.Button
}

func main() {
	conf := config.Load()
	a := app.New()
	w := &window{
		conf:   conf,
		win:    a.NewWindow("Face ID"),
		frames: capture.NewChanPreview(),
	}

	session, err := faceid.NewSession(conf, w.frames)
	if err != nil {
		log.Fatal(err)
	}
	w.session = session

	w.build()
	w.loadModel()
	w.refreshPeople()
	go w.showFrames()

	w.win.SetCloseIntercept(func() {
		w.session.Dispose()
		w.closeModel()
		w.win.Close()
	})
	w.win.Resize(fyne.NewSize(720, 520))
	w.win.ShowAndRun()
}

func (w *window) build() {
	devices := capture.ListDevices()
	w.devices = devices
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.String()
	}
	w.camera = widget.NewSelect(names, w.cameraChanged)
	for i, d := range devices {
		if d.ID == w.conf.Device {
			w.camera.SetSelectedIndex(i)
		}
	}
	if w.camera.SelectedIndex() < 0 && len(names) > 0 {
		w.camera.SetSelectedIndex(0)
	}

	w.preview = canvas.NewImageFromImage(nil)
	w.preview.FillMode = canvas.ImageFillContain
	w.preview.ScaleMode = canvas.ImageScaleFastest
	w.preview.SetMinSize(fyne.NewSize(320, 240))

	w.loader = widget.NewProgressBarInfinite()
	w.loader.Stop()
	w.loader.Hide()

	w.results = widget.NewMultiLineEntry()
	w.results.Wrapping = fyne.TextWrapWord
	w.results.SetMinRowsVisible(6)

	w.people = widget.NewLabel("")

	w.person = widget.NewEntry()
	w.person.SetPlaceHolder("Name of the person")

	w.startBtn = widget.NewButton("Start", w.start)
	w.stopBtn = widget.NewButton("Stop", w.stop)
	w.stopBtn.Disable()
	w.addBtn = widget.NewButton("Add person", w.addPerson)
	w.addBtn.Disable()
	w.trainBtn = widget.NewButton("Retrain", w.retrain)

	controls := container.NewVBox(
		widget.NewLabel("Camera"),
		w.camera,
		container.NewGridWithColumns(2, w.startBtn, w.stopBtn),
		widget.NewSeparator(),
		w.person,
		w.addBtn,
		w.trainBtn,
		w.loader,
		widget.NewSeparator(),
		w.people,
	)
	split := container.NewHSplit(controls, w.preview)
	split.SetOffset(0.3)
	w.win.SetContent(container.NewBorder(nil, w.results, nil, nil, split))
}

// showFrames moves the newest acquired frame onto the UI goroutine.
// Frames that arrive while the UI is busy are dropped by the preview.
func (w *window) showFrames() {
	for frame := range w.frames.Frames() {
		done := make(chan struct{})
		fyne.Do(func() {
			w.preview.Image = frame
			w.preview.Refresh()
			close(done)
		})
		<-done
	}
}

// cameraChanged switches a running capture over to the new camera.
func (w *window) cameraChanged(string) {
	if w.session == nil || !w.session.Running() {
		return
	}
	if w.session.DeviceID() == w.selectedDevice() {
		return
	}
	w.stopBtn.Disable()
	w.start()
}

func (w *window) refreshPeople() {
	labels, err := dataset.Labels(w.conf.Dataset)
	if err != nil {
		slog.Warn("Can not list people", "dataset", w.conf.Dataset, "error", err)
	}
	w.people.SetText(peopleText(labels))
}

func (w *window) selectedDevice() int {
	i := w.camera.SelectedIndex()
	if i < 0 || i >= len(w.devices) {
		return w.conf.Device
	}
	return w.devices[i].ID
}

func (w *window) busy(on bool) {
	if on {
		w.loader.Show()
		w.loader.Start()
	} else {
		w.loader.Stop()
		w.loader.Hide()
	}
}

func (w *window) start() {
	device := w.selectedDevice()
	w.startBtn.Disable()
	w.busy(true)

	go func() {
		err := w.session.Start(context.Background(), device, w.conf.Width, w.conf.Height)
		fyne.Do(func() {
			w.busy(false)
			if err != nil {
				w.startBtn.Enable()
				dialog.ShowError(err, w.win)
				return
			}
			w.stopBtn.Enable()
		})
	}()
}

func (w *window) stop() {
	w.stopBtn.Disable()
	w.busy(true)

	go func() {
		still, err := w.session.Stop()
		if err != nil {
			slog.Warn("Capture ended with error", "error", err)
		}

		var report string
		var ierr error
		if still != nil {
			if err := faceid.SaveSnapshot(w.conf.Snapshot, still); err != nil {
				slog.Warn("Can not write snapshot", "error", err)
			}
			w.mu.Lock()
			predictor := w.predictor
			w.mu.Unlock()

			report, ierr = analyze(predictor, still, w.conf.Threshold)
		}

		fyne.Do(func() {
			w.busy(false)
			w.startBtn.Enable()
			if still == nil {
				if err == nil {
					err = errors.New("no frame captured")
				}
				dialog.ShowError(err, w.win)
				return
			}
			w.lastStill = still
			w.addBtn.Enable()
			w.results.SetText(strings.TrimSpace(w.results.Text + "\n\n" + report))
			w.results.CursorRow = len(strings.Split(w.results.Text, "\n"))
			if ierr != nil {
				dialog.ShowError(ierr, w.win)
			}
		})
	}()
}

func (w *window) addPerson() {
	label := strings.TrimSpace(w.person.Text)
	if err := dataset.ValidateLabel(label); err != nil {
		dialog.ShowError(err, w.win)
		return
	}
	if w.lastStill == nil {
		dialog.ShowError(errors.New("capture a picture first"), w.win)
		return
	}

	path, err := dataset.Store(w.conf.Dataset, label, w.lastStill, ".png")
	if err != nil {
		dialog.ShowError(err, w.win)
		return
	}
	slog.Info("Sample stored", "label", label, "path", path)
	w.results.SetText(strings.TrimSpace(fmt.Sprintf("%s\n\nAdded a picture of %s", w.results.Text, label)))
	w.person.SetText("")
	w.refreshPeople()
}

func (w *window) retrain() {
	w.trainBtn.Disable()
	w.busy(true)

	go func() {
		err := faceid.Retrain(context.Background(), w.conf.Trainer, w.conf.Dataset, w.conf.ModelFile)
		if err == nil {
			err = w.reloadModel()
		}
		fyne.Do(func() {
			w.busy(false)
			w.trainBtn.Enable()
			w.refreshPeople()
			if err != nil {
				dialog.ShowError(err, w.win)
				return
			}
			dialog.ShowInformation("Retrain", "The model was trained again.", w.win)
		})
	}()
}

func (w *window) loadModel() {
	if err := w.reloadModel(); err != nil {
		slog.Warn("Model not loaded", "file", w.conf.ModelFile, "error", err)
	}
}

func (w *window) reloadModel() error {
	predictor, emb, err := faceid.NewPredictor(w.conf)
	if err != nil {
		return err
	}
	w.mu.Lock()
	old := w.embedder
	w.predictor, w.embedder = predictor, emb
	w.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

func (w *window) closeModel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.embedder != nil {
		w.embedder.Close()
		w.embedder = nil
	}
}
