package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/rezajatnika/rjos-go/internal/constants"
	"github.com/rezajatnika/rjos-go/internal/interfaces"
	"github.com/rezajatnika/rjos-go/internal/logging"
	"github.com/rezajatnika/rjos-go/pelco"
	"github.com/rezajatnika/rjos-go/udp"
)

// ptu is one pan/tilt unit: its address, its byte transport and the
// parser owning that transport's inbound stream.
type ptu struct {
	name      string
	address   int
	transport interfaces.Transport
	parser    *pelco.Parser
}

// positions is the shared controller state the monitor tasks update and
// the telemetry task publishes.
type positions struct {
	mu              sync.Mutex
	cameraPan       int32
	cameraTilt      int32
	turretAzimuth   int32
	turretElevation int32
}

type controller struct {
	log    *zap.Logger
	camera *ptu
	turret *ptu
	pos    positions
}

func newController(log *zap.Logger, camera, turret *ptu) *controller {
	return &controller{log: log, camera: camera, turret: turret}
}

// makeQueryTask returns a task callback that writes one position query
// frame to the unit's transport.
func (c *controller) makeQueryTask(p *ptu, axis pelco.Axis) func(interface{}) {
	return func(interface{}) {
		msg, err := pelco.QueryPosition(p.address, axis)
		if err != nil {
			logging.Errorf("%s: build query: %v", p.name, err)
			return
		}
		if _, err := p.transport.Write(msg.Encode()); err != nil {
			logging.Errorf("%s: write query: %v", p.name, err)
		}
	}
}

// makeMonitorTask returns a task callback that drains the unit's inbound
// bytes through the stream parser and records decoded angles.
func (c *controller) makeMonitorTask(p *ptu) func(interface{}) {
	buf := make([]byte, constants.SerialReadBufferSize)
	return func(interface{}) {
		if at, ok := p.transport.(interfaces.AvailableTransport); ok {
			n, err := at.BytesAvailable()
			if err != nil || n == 0 {
				return
			}
		}

		n, err := p.transport.Read(buf)
		if err != nil {
			if err != io.EOF {
				logging.Errorf("%s: read: %v", p.name, err)
			}
			return
		}

		rest := buf[:n]
		for len(rest) > 0 {
			var msg pelco.ParsedMessage
			consumed, perr := p.parser.Parse(rest, &msg)
			rest = rest[consumed:]
			if perr != nil {
				break
			}
			c.record(p, &msg)
		}
	}
}

// record stores a decoded position response.
func (c *controller) record(p *ptu, msg *pelco.ParsedMessage) {
	if !msg.AngleValid {
		logging.Debugf("%s: frame %02X ignored", p.name, msg.Raw.Command2)
		return
	}

	c.pos.mu.Lock()
	defer c.pos.mu.Unlock()
	switch {
	case p == c.camera && msg.Type == pelco.TypeResponsePan:
		c.pos.cameraPan = msg.AngleDegrees
	case p == c.camera && msg.Type == pelco.TypeResponseTilt:
		c.pos.cameraTilt = msg.AngleDegrees
	case p == c.turret && msg.Type == pelco.TypeResponsePan:
		c.pos.turretAzimuth = msg.AngleDegrees
	case p == c.turret && msg.Type == pelco.TypeResponseTilt:
		c.pos.turretElevation = msg.AngleDegrees
	}
	logging.Debugf("%s: position update type=%d angle=%d", p.name, msg.Type, msg.AngleDegrees)
}

// makeTelemetryTask returns a task callback that publishes the latest
// positions over UDP.
func (c *controller) makeTelemetryTask(conn *udp.Conn) func(interface{}) {
	return func(interface{}) {
		c.pos.mu.Lock()
		line := fmt.Sprintf("CAM_PAN=%d CAM_TILT=%d TUR_AZM=%d TUR_ELE=%d",
			c.pos.cameraPan, c.pos.cameraTilt, c.pos.turretAzimuth, c.pos.turretElevation)
		c.pos.mu.Unlock()

		if _, err := conn.Send([]byte(line)); err != nil {
			logging.Errorf("telemetry: send: %v", err)
		}
	}
}

// dryRunTransport hex-dumps outbound frames to the console log instead
// of a serial line and never produces input.
type dryRunTransport struct {
	log  *zap.Logger
	name string
}

var _ interfaces.AvailableTransport = (*dryRunTransport)(nil)

func (d *dryRunTransport) Read(p []byte) (int, error) {
	return 0, io.EOF
}

func (d *dryRunTransport) Write(p []byte) (int, error) {
	d.log.Info("dry-run frame",
		zap.String("unit", d.name),
		zap.String("bytes", hex.EncodeToString(p)),
	)
	return len(p), nil
}

func (d *dryRunTransport) BytesAvailable() (int, error) {
	return 0, nil
}

func (d *dryRunTransport) Close() error {
	return nil
}
