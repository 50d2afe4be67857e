package capture

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type runCall struct {
	name  string
	args  []string
	stdin []byte
}

type fakeRunner struct {
	calls  []runCall
	result commandResult
	err    error
	stream io.ReadCloser
	// onRun lets a test emulate the command's side effects
	onRun func(args []string)
}

func (f *fakeRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (commandResult, error) {
	call := runCall{name: name, args: args}
	if stdin != nil {
		call.stdin, _ = io.ReadAll(stdin)
	}
	f.calls = append(f.calls, call)
	if f.onRun != nil {
		f.onRun(args)
	}
	return f.result, f.err
}

func (f *fakeRunner) Start(ctx context.Context, name string, args ...string) (io.ReadCloser, error) {
	f.calls = append(f.calls, runCall{name: name, args: args})
	return f.stream, f.err
}

const arecordList = `**** List of CAPTURE Hardware Devices ****
card 0: PCH [HDA Intel PCH], device 0: ALC3234 Analog [ALC3234 Analog]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
card 2: Microphone [USB Microphone], device 0: USB Audio [USB Audio]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
`

func TestParseDeviceList(t *testing.T) {
	devices := parseDeviceList(arecordList)

	if len(devices) != 2 {
		t.Fatalf("Expected 2 devices, got %d", len(devices))
	}
	if devices[1].Index != 1 || devices[1].Card != 2 || devices[1].Device != 0 {
		t.Errorf("Unexpected second device: %+v", devices[1])
	}
	if devices[1].ID() != "plughw:2,0" {
		t.Errorf("Expected plughw:2,0, got %s", devices[1].ID())
	}
	if !strings.Contains(devices[0].Name, "ALC3234") {
		t.Errorf("Expected device name to include ALC3234, got %q", devices[0].Name)
	}
}

func TestParseDeviceList_Empty(t *testing.T) {
	if devices := parseDeviceList("arecord: device_list:274: no soundcards found...\n"); len(devices) != 0 {
		t.Errorf("Expected no devices, got %d", len(devices))
	}
}

func TestALSASource_ListDevices(t *testing.T) {
	runner := &fakeRunner{result: commandResult{Stdout: arecordList}}
	src := &ALSASource{arecordPath: "/usr/bin/arecord", runner: runner}

	devices, err := src.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("Expected 2 devices, got %d", len(devices))
	}
	if runner.calls[0].name != "/usr/bin/arecord" || !reflect.DeepEqual(runner.calls[0].args, []string{"-l"}) {
		t.Errorf("Unexpected command: %+v", runner.calls[0])
	}
}

func TestALSASource_ListDevicesError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), result: commandResult{Stderr: "no soundcards", ExitCode: 1}}
	src := &ALSASource{arecordPath: "arecord", runner: runner}

	_, err := src.ListDevices(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no soundcards") {
		t.Errorf("Expected error with stderr, got %v", err)
	}
}

func TestALSASource_OpenArgs(t *testing.T) {
	runner := &fakeRunner{stream: io.NopCloser(strings.NewReader(""))}
	src := &ALSASource{arecordPath: "arecord", runner: runner}

	_, err := src.Open(context.Background(), DeviceInfo{Card: 1, Device: 3}, 16000)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	want := []string{"-q", "-D", "plughw:1,3", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "raw"}
	if !reflect.DeepEqual(runner.calls[0].args, want) {
		t.Errorf("Expected args %v, got %v", want, runner.calls[0].args)
	}
}

func TestFFmpegEncoder_Encode(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "user_audio_1.mp3")
	runner := &fakeRunner{onRun: func(args []string) {
		os.WriteFile(args[len(args)-1], []byte("mp3"), 0o644)
	}}
	enc := &FFmpegEncoder{ffmpegPath: "ffmpeg", runner: runner}

	pcm := []byte{1, 0, 2, 0}
	if err := enc.Encode(context.Background(), pcm, 16000, dest); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	call := runner.calls[0]
	joined := strings.Join(call.args, " ")
	for _, want := range []string{"-y", "-f s16le", "-ar 16000", "-ac 1", "-i pipe:0", "-codec:a libmp3lame", "-b:a 128k"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected %q in args %q", want, joined)
		}
	}
	if call.args[len(call.args)-1] != dest {
		t.Errorf("Expected dest as last arg, got %s", call.args[len(call.args)-1])
	}
	if !reflect.DeepEqual(call.stdin, pcm) {
		t.Errorf("Expected PCM on stdin, got %v", call.stdin)
	}
}

func TestFFmpegEncoder_Failure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), result: commandResult{ExitCode: 1, Stderr: "Unknown encoder 'libmp3lame'"}}
	enc := &FFmpegEncoder{ffmpegPath: "ffmpeg", runner: runner}

	err := enc.Encode(context.Background(), []byte{0, 0}, 16000, filepath.Join(t.TempDir(), "x.mp3"))
	if err == nil || !strings.Contains(err.Error(), "libmp3lame") || !strings.Contains(err.Error(), "exit=1") {
		t.Errorf("Expected error with exit code and stderr, got %v", err)
	}
}
