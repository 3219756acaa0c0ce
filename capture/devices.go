package capture

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DeviceInfo describes a camera the user can pick.
type DeviceInfo struct {
	ID   int
	Path string
}

func (d DeviceInfo) String() string {
	if d.Path == "" {
		return fmt.Sprintf("Camera %d", d.ID)
	}
	return fmt.Sprintf("Camera %d (%s)", d.ID, d.Path)
}

// DevicePath is the V4L2 node for a device id.
func DevicePath(id int) string {
	return fmt.Sprintf("/dev/video%d", id)
}

var devGlob = "/dev/video*"

// ListDevices returns the cameras found under /dev sorted by id. Where
// device nodes can not be listed it falls back to device 0.
func ListDevices() []DeviceInfo {
	paths, _ := filepath.Glob(devGlob)
	var devices []DeviceInfo
	for _, p := range paths {
		id, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(p), "video"))
		if err != nil {
			continue
		}
		devices = append(devices, DeviceInfo{ID: id, Path: p})
	}
	if len(devices) == 0 {
		return []DeviceInfo{{ID: 0}}
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices
}

// NewOpener picks a device backend by name: "opencv" or "v4l2".
func NewOpener(backend string, dropDark bool) (Opener, error) {
	switch backend {
	case "", "opencv":
		return OpenCV(0, 0), nil
	case "v4l2":
		return V4L2(0, 0, dropDark), nil
	default:
		return nil, errors.Errorf("unknown capture backend %q", backend)
	}
}
