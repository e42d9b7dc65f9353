package rjos_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezajatnika/rjos-go"
	"github.com/rezajatnika/rjos-go/pelco"
)

func TestInitAndCleanup(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.txt")
	logPath := filepath.Join(dir, "run.log")

	require.NoError(t, os.WriteFile(configPath,
		[]byte("# ptu deployment\nTURRET_DEVICE=/dev/ttyUSB1\nTURRET_BAUDRATE=19200\n"), 0o644))

	rt, err := rjos.Init(configPath, logPath)
	require.NoError(t, err)
	defer rt.Cleanup()

	dev, ok := rt.Config.Get("TURRET_DEVICE")
	assert.True(t, ok)
	assert.Equal(t, "/dev/ttyUSB1", dev)

	// Init writes a startup record.
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "runtime initialized")
}

func TestInitMissingConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := rjos.Init(filepath.Join(dir, "absent.txt"), filepath.Join(dir, "run.log"))
	require.Error(t, err)
	assert.True(t, rjos.IsCode(err, rjos.ErrCodeIO))
}

// The mock transport stands in for a serial line: queued position
// responses flow through the stream parser exactly like live bytes.
func TestMockTransportFeedsParser(t *testing.T) {
	mock := rjos.NewMockTransport()

	resp, err := pelco.New(2, 0x00, pelco.Cmd2RespPanPos, 0x23, 0x28) // raw 9000
	require.NoError(t, err)
	mock.QueueRead(resp.Encode()[:4])
	mock.QueueRead(resp.Encode()[4:])

	parser := pelco.NewParser()
	var msg pelco.ParsedMessage
	buf := make([]byte, rjos.SerialReadBufferSize)
	parsed := false
	for i := 0; i < 4 && !parsed; i++ {
		n, err := mock.Read(buf)
		if err != nil {
			break
		}
		rest := buf[:n]
		for len(rest) > 0 {
			consumed, perr := parser.Parse(rest, &msg)
			rest = rest[consumed:]
			if perr == nil {
				parsed = true
			}
		}
	}

	require.True(t, parsed)
	assert.Equal(t, pelco.TypeResponsePan, msg.Type)
	assert.Equal(t, int32(90), msg.AngleDegrees)

	// Outbound frames are recorded for verification.
	query, err := pelco.QueryPosition(2, pelco.Pan)
	require.NoError(t, err)
	_, err = mock.Write(query.Encode())
	require.NoError(t, err)
	writes := mock.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, query.Encode(), writes[0])
}
