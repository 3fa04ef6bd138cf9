package net

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0x90, 0x01, 0x02, 0x03}

	require.NoError(t, WriteFrame(&buf, payload))

	// Header is total length including the 2-byte header itself.
	raw := buf.Bytes()
	require.Equal(t, byte(6), raw[0])
	require.Equal(t, byte(0), raw[1])

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameRejectsBadLength(t *testing.T) {
	// Total length 2 means an empty payload, which no packet produces.
	_, err := ReadFrame(bytes.NewReader([]byte{0x02, 0x00}))
	assert.Error(t, err)
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x0A, 0x00, 0x01}))
	assert.Error(t, err)
}

func TestSessionDeliversInboundFrames(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 1, "test", 8, 8, 0, zap.NewNop())
	sess.Start()
	defer sess.Close()

	payload := []byte{0x10, 0x01, 0x00}
	go func() {
		_ = WriteFrame(client, payload)
	}()

	select {
	case got := <-sess.InQueue:
		assert.Equal(t, payload, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inbound frame")
	}
}

func TestSessionFlushOutputWritesFrames(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 2, "test", 8, 8, 0, zap.NewNop())
	sess.Start()
	defer sess.Close()

	sess.Send([]byte{0xA0, 0x01})
	sess.Send([]byte{0xA1})
	sess.FlushOutput()

	first, err := ReadFrame(client)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA0, 0x01}, first)

	second, err := ReadFrame(client)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA1}, second)
}

func TestSessionSendAfterCloseIsDropped(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 3, "test", 8, 8, 0, zap.NewNop())
	sess.Close()

	sess.Send([]byte{0x01})
	assert.Empty(t, sess.outBuf)
}
