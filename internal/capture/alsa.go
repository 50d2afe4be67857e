package capture

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DeviceInfo identifies one capture device
type DeviceInfo struct {
	Index  int // position in the enumeration, the value CAPTURE_DEVICE_INDEX selects
	Card   int
	Device int
	Name   string
}

// ID returns the ALSA device string used to open the device
func (d DeviceInfo) ID() string {
	return fmt.Sprintf("plughw:%d,%d", d.Card, d.Device)
}

// Stream yields signed 16-bit little-endian mono PCM
type Stream interface {
	Read(p []byte) (int, error)
	Close() error
}

// Source enumerates and opens microphones
type Source interface {
	ListDevices(ctx context.Context) ([]DeviceInfo, error)
	Open(ctx context.Context, dev DeviceInfo, sampleRate int) (Stream, error)
}

var arecordCardLine = regexp.MustCompile(`^card (\d+): ([^,]+), device (\d+): (.*)$`)

// ALSASource captures from ALSA devices through arecord
type ALSASource struct {
	arecordPath string
	runner      commandRunner
}

// NewALSASource creates a source that shells out to arecordPath
func NewALSASource(arecordPath string) *ALSASource {
	if arecordPath == "" {
		arecordPath = "arecord"
	}
	return &ALSASource{arecordPath: arecordPath, runner: &execRunner{}}
}

// ListDevices parses `arecord -l`
func (s *ALSASource) ListDevices(ctx context.Context) ([]DeviceInfo, error) {
	res, err := s.runner.Run(ctx, nil, s.arecordPath, "-l")
	if err != nil {
		return nil, fmt.Errorf("list capture devices: %w (stderr: %s)", err, strings.TrimSpace(res.Stderr))
	}
	return parseDeviceList(res.Stdout), nil
}

// Open starts streaming raw PCM from dev
func (s *ALSASource) Open(ctx context.Context, dev DeviceInfo, sampleRate int) (Stream, error) {
	return s.runner.Start(ctx, s.arecordPath,
		"-q",
		"-D", dev.ID(),
		"-f", "S16_LE",
		"-r", strconv.Itoa(sampleRate),
		"-c", "1",
		"-t", "raw",
	)
}

func parseDeviceList(out string) []DeviceInfo {
	var devices []DeviceInfo
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		m := arecordCardLine.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		card, _ := strconv.Atoi(m[1])
		device, _ := strconv.Atoi(m[3])
		devices = append(devices, DeviceInfo{
			Index:  len(devices),
			Card:   card,
			Device: device,
			Name:   strings.TrimSpace(m[2]) + ": " + strings.TrimSpace(m[4]),
		})
	}
	return devices
}
