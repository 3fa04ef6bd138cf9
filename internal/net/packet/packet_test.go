package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriterWithOpcode(S_OPCODE_NPC_MESSAGE)
	w.WriteH(412)
	w.WriteS("Näkki the ferryman")
	w.WriteD(-70000)
	w.WriteC(7)

	r := NewReader(w.Bytes())
	assert.Equal(t, S_OPCODE_NPC_MESSAGE, r.Opcode())
	assert.Equal(t, uint16(412), r.ReadH())
	assert.Equal(t, "Näkki the ferryman", r.ReadS())
	assert.Equal(t, int32(-70000), r.ReadD())
	assert.Equal(t, byte(7), r.ReadC())
	assert.Equal(t, 0, r.Remaining())
}

func TestReaderTruncatedFieldsReturnZero(t *testing.T) {
	r := NewReader([]byte{C_OPCODE_RAISE_STAT, 0x05}) // one byte where H expects two
	assert.Equal(t, uint16(0), r.ReadH())
	assert.Equal(t, int32(0), r.ReadD())
	assert.Equal(t, "", r.ReadS())
}

func TestRegistryStateGate(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	var called int
	reg.Register(C_OPCODE_RESPAWN, []SessionState{StateInWorld}, func(sess any, r *Reader) {
		called++
	})

	pkt := []byte{C_OPCODE_RESPAWN}

	err := reg.Dispatch(nil, StateConnected, pkt)
	require.Error(t, err, "respawn before entering the world must be rejected")
	assert.Zero(t, called)

	require.NoError(t, reg.Dispatch(nil, StateInWorld, pkt))
	assert.Equal(t, 1, called)

	// Unknown opcodes are dropped without error.
	assert.NoError(t, reg.Dispatch(nil, StateInWorld, []byte{0x6E}))
}

func TestRegistryRecoversHandlerPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(C_OPCODE_PING, []SessionState{StateInWorld}, func(sess any, r *Reader) {
		panic("boom")
	})

	err := reg.Dispatch(nil, StateInWorld, []byte{C_OPCODE_PING})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic")
}
