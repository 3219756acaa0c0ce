package config

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/kelseyhightower/envconfig"
)

const defaultPath = "/etc/faceid/config.json"

type Config struct {
	Device     int    `json:"device"`
	Backend    string `json:"backend"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Mirror     *bool  `json:"mirror"`
	FrameDelay int    `json:"frame_delay" split_words:"true"`
	CaptureCPU *int   `json:"capture_cpu" split_words:"true"`
	DarkFrames bool   `json:"drop_dark_frames" envconfig:"DROP_DARK_FRAMES"`

	Threshold   float64 `json:"threshold"`
	Temperature float64 `json:"temperature"`
	Workers     int     `json:"workers"`
	ModelFile   string  `json:"model_file" split_words:"true"`
	DlibModels  string  `json:"dlib_models" split_words:"true"`
	Dataset     string  `json:"dataset"`
	Snapshot    string  `json:"snapshot"`
	Trainer     string  `json:"trainer"`
	Cascade     string  `json:"cascade"`

	Timeout int    `json:"timeout"`
	Warmup  int    `json:"warmup"`
	Socket  string `json:"socket"`
	PidFile string `json:"pid_file" split_words:"true"`
}

// Load reads the config file named by FACEID_CONFIG (or the system
// default), fills in defaults and applies FACEID_* environment overrides.
func Load() *Config {
	path := os.Getenv("FACEID_CONFIG")
	if path == "" {
		path = defaultPath
	}
	conf, err := LoadFile(path)
	if err != nil {
		slog.Warn("Failed to load config file", "path", path, "error", err)
	}
	return conf
}

// LoadFile is like Load with an explicit file. The returned config is
// always usable; the error only reports a missing or broken file.
func LoadFile(path string) (*Config, error) {
	conf, fileErr := loadFromFile(path)
	if conf == nil {
		conf = &Config{}
	}
	conf.setDefaults()

	if err := envconfig.Process("faceid", conf); err != nil {
		slog.Warn("Invalid environment override", "error", err)
	}
	return conf, fileErr
}

func (conf *Config) setDefaults() {
	if conf.Backend == "" {
		conf.Backend = "opencv"
	}
	if conf.Width == 0 {
		conf.Width = 300
	}
	if conf.Height == 0 {
		conf.Height = 300
	}
	if conf.Mirror == nil {
		mirror := true
		conf.Mirror = &mirror
	}
	if conf.FrameDelay == 0 {
		conf.FrameDelay = 33
	}
	if conf.CaptureCPU == nil {
		cpu := -1
		conf.CaptureCPU = &cpu
	}
	if conf.Threshold == 0 {
		conf.Threshold = 0.6
	}
	if conf.Temperature == 0 {
		conf.Temperature = 0.1
	}
	if conf.Workers == 0 {
		conf.Workers = 4
	}
	if conf.ModelFile == "" {
		conf.ModelFile = "FaceModel.zip"
	}
	if conf.DlibModels == "" {
		conf.DlibModels = "models"
	}
	if conf.Dataset == "" {
		conf.Dataset = "TrainData"
	}
	if conf.Snapshot == "" {
		conf.Snapshot = "screenshot.png"
	}
	if conf.Trainer == "" {
		conf.Trainer = "faceid-train"
	}
	if conf.Cascade == "" {
		conf.Cascade = "/usr/share/opencv4/haarcascades/haarcascade_frontalface_alt.xml"
	}
	if conf.Timeout == 0 {
		conf.Timeout = 10
	}
	if conf.Warmup == 0 {
		conf.Warmup = 1000
	}
	if conf.Socket == "" {
		conf.Socket = "/run/faceid/faceidd.sock"
	}
	if conf.PidFile == "" {
		conf.PidFile = "/run/faceid/faceidd.pid"
	}
}

// MirrorEnabled reports whether frames are flipped horizontally.
func (conf *Config) MirrorEnabled() bool {
	return conf.Mirror == nil || *conf.Mirror
}

// CPU returns the core the acquisition thread is pinned to, or -1.
func (conf *Config) CPU() int {
	if conf.CaptureCPU == nil {
		return -1
	}
	return *conf.CaptureCPU
}

func loadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := &Config{}
	err = json.NewDecoder(file).Decode(config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
