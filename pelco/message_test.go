package pelco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumLaw(t *testing.T) {
	m, err := New(0x01, 0x88, 0x51, 0x12, 0x34)
	require.NoError(t, err)

	want := uint8((0x01 + 0x88 + 0x51 + 0x12 + 0x34) % 256)
	assert.Equal(t, want, m.Checksum)
	assert.NoError(t, m.Validate())
}

func TestMovePanBytes(t *testing.T) {
	m, err := MovePan(1, PanLeft, 0x20)
	require.NoError(t, err)

	want := []byte{0xFF, 0x01, 0x00, 0x04, 0x00, 0x20, 0x25}
	assert.Equal(t, want, m.Encode())
}

func TestBuilders(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Message, error)
		cmd2  uint8
		data1 uint8
		data2 uint8
	}{
		{"pan right", func() (Message, error) { return MovePan(2, PanRight, 0x3F) }, Cmd2PanRight, 0x00, 0x3F},
		{"pan stop", func() (Message, error) { return MovePan(2, PanStop, 0) }, 0x00, 0x00, 0x00},
		{"tilt up", func() (Message, error) { return MoveTilt(2, TiltUp, 0x10) }, Cmd2TiltUp, 0x00, 0x10},
		{"tilt down", func() (Message, error) { return MoveTilt(2, TiltDown, 0x01) }, Cmd2TiltDown, 0x00, 0x01},
		{"pan tilt", func() (Message, error) { return PanTilt(2, PanLeft, 0x11, TiltDown, 0x22) }, Cmd2PanLeft | Cmd2TiltDown, 0x11, 0x22},
		{"zoom wide", func() (Message, error) { return Zoom(2, ZoomWide) }, Cmd2ZoomWide, 0x00, 0x00},
		{"zoom tele", func() (Message, error) { return Zoom(2, ZoomTele) }, Cmd2ZoomTele, 0x00, 0x00},
		{"query pan", func() (Message, error) { return QueryPosition(2, Pan) }, Cmd2QueryPanPos, 0x00, 0x00},
		{"query tilt", func() (Message, error) { return QueryPosition(2, Tilt) }, Cmd2QueryTiltPos, 0x00, 0x00},
		{"set pan", func() (Message, error) { return SetPanAngle(2, 0x1234) }, Cmd2SetPanPos, 0x12, 0x34},
		{"set tilt", func() (Message, error) { return SetTiltAngle(2, 0x4E20) }, Cmd2SetTiltPos, 0x4E, 0x20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.build()
			require.NoError(t, err)

			assert.Equal(t, uint8(SyncByte), m.Sync)
			assert.Equal(t, uint8(2), m.Address)
			assert.Equal(t, tt.cmd2, m.Command2)
			assert.Equal(t, tt.data1, m.Data1)
			assert.Equal(t, tt.data2, m.Data2)
			assert.NoError(t, m.Validate())
		})
	}
}

func TestBuilderRejections(t *testing.T) {
	_, err := New(256, 0, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = New(-1, 0, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = MovePan(1, PanLeft, MaxSpeed+1)
	assert.ErrorIs(t, err, ErrInvalidSpeed)

	_, err = MoveTilt(1, TiltUp, 0xFF)
	assert.ErrorIs(t, err, ErrInvalidSpeed)

	_, err = PanTilt(1, PanLeft, 0, TiltUp, MaxSpeed+1)
	assert.ErrorIs(t, err, ErrInvalidSpeed)
}

func TestValidateRejectsCorruption(t *testing.T) {
	m, err := QueryPosition(1, Pan)
	require.NoError(t, err)

	bad := m
	bad.Sync = 0xFE
	assert.ErrorIs(t, bad.Validate(), ErrChecksum)

	bad = m
	bad.Checksum ^= 0x01
	assert.ErrorIs(t, bad.Validate(), ErrChecksum)
}

func TestRoundTrip(t *testing.T) {
	builders := []func() (Message, error){
		func() (Message, error) { return MovePan(1, PanLeft, 0x20) },
		func() (Message, error) { return MoveTilt(3, TiltDown, 0x3F) },
		func() (Message, error) { return Zoom(5, ZoomTele) },
		func() (Message, error) { return QueryPosition(7, Tilt) },
		func() (Message, error) { return SetPanAngle(9, 35999) },
		func() (Message, error) { return SetTiltAngle(11, 18000) },
	}

	for _, build := range builders {
		m, err := build()
		require.NoError(t, err)
		require.NoError(t, m.Validate())

		var buf [MessageSize]byte
		require.NoError(t, m.MarshalBytes(buf[:]))

		var back Message
		require.NoError(t, UnmarshalBytes(buf[:], &back))
		assert.Equal(t, m, back)
		assert.NoError(t, back.Validate())
	}
}

func TestMarshalShortBuffer(t *testing.T) {
	m, err := Zoom(1, ZoomWide)
	require.NoError(t, err)

	assert.ErrorIs(t, m.MarshalBytes(make([]byte, MessageSize-1)), ErrShortBuffer)

	var back Message
	assert.ErrorIs(t, UnmarshalBytes(make([]byte, 3), &back), ErrShortBuffer)
	assert.ErrorIs(t, UnmarshalBytes(make([]byte, MessageSize), nil), ErrNilMessage)
}

func TestPanAngleDecoding(t *testing.T) {
	tests := []struct {
		raw  uint16
		want int32
	}{
		{0, 0},
		{100, 1},
		{199, 1},
		{9000, 90},
		{35999, 359},
	}

	for _, tt := range tests {
		m, err := New(1, 0x00, Cmd2RespPanPos, uint8(tt.raw>>8), uint8(tt.raw))
		require.NoError(t, err)

		got, err := m.PanAngle()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "raw %d", tt.raw)
	}
}

func TestTiltAngleDecoding(t *testing.T) {
	tests := []struct {
		raw  uint16
		want int32
	}{
		{20000, 160}, // (36000 - 20000) / 100
		{18000, 0},
		{17999, -179},
		{500, -5},
		{35999, 0}, // (36000 - 35999) / 100 truncates to 0
	}

	for _, tt := range tests {
		m, err := New(1, 0x00, Cmd2RespTiltPos, uint8(tt.raw>>8), uint8(tt.raw))
		require.NoError(t, err)

		got, err := m.TiltAngle()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "raw %d", tt.raw)
	}
}

func TestAngleWrongResponse(t *testing.T) {
	m, err := QueryPosition(1, Pan)
	require.NoError(t, err)

	_, err = m.PanAngle()
	assert.ErrorIs(t, err, ErrWrongResponse)

	_, err = m.TiltAngle()
	assert.ErrorIs(t, err, ErrWrongResponse)
}
