//go:build linux

package serial

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestBaudFlag(t *testing.T) {
	tests := []struct {
		baud uint32
		want uint32
	}{
		{9600, unix.B9600},
		{19200, unix.B19200},
		{115200, unix.B115200},
	}
	for _, tt := range tests {
		got, err := baudFlag(tt.baud)
		if err != nil {
			t.Fatalf("baudFlag(%d): %v", tt.baud, err)
		}
		if got != tt.want {
			t.Errorf("baudFlag(%d) = %#x, want %#x", tt.baud, got, tt.want)
		}
	}

	if _, err := baudFlag(31337); err != ErrUnsupportedBaud {
		t.Errorf("baudFlag(31337) err = %v, want ErrUnsupportedBaud", err)
	}
}

func TestApplyReadTimeout(t *testing.T) {
	tests := []struct {
		name      string
		blocking  bool
		timeoutMS int
		wantVMIN  uint8
		wantVTIME uint8
	}{
		{"blocking indefinite", true, 0, 1, 0},
		{"blocking negative", true, -5, 1, 0},
		{"blocking 500ms", true, 500, 0, 5},
		{"blocking sub-decisecond", true, 20, 0, 1},
		{"blocking clamped", true, 100000, 0, 255},
		{"non-blocking", false, 750, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tio unix.Termios
			applyReadTimeout(&tio, tt.blocking, tt.timeoutMS)
			if tio.Cc[unix.VMIN] != tt.wantVMIN || tio.Cc[unix.VTIME] != tt.wantVTIME {
				t.Errorf("VMIN/VTIME = %d/%d, want %d/%d",
					tio.Cc[unix.VMIN], tio.Cc[unix.VTIME], tt.wantVMIN, tt.wantVTIME)
			}
		})
	}
}

func TestOpenMissingDevice(t *testing.T) {
	if _, err := Open("/dev/does-not-exist-ttyUSB99", 9600, nil); err == nil {
		t.Error("Open on a missing device should fail")
	}
}
