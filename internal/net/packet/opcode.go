package packet

// Client → server opcodes.
const (
	C_OPCODE_LOGIN       byte = 0x01 // account name + password
	C_OPCODE_ENTER_WORLD byte = 0x02 // char id + enter token
	C_OPCODE_PING        byte = 0x03 // keep-alive
	C_OPCODE_RAISE_STAT  byte = 0x10 // spend an attribute point
	C_OPCODE_LOWER_STAT  byte = 0x11 // spend a correction point
	C_OPCODE_RESPAWN     byte = 0x12 // accept death
	C_OPCODE_NPC_TALK    byte = 0x20 // open a dialogue with an npc
	C_OPCODE_NPC_NEXT    byte = 0x21 // advance the current dialogue
	C_OPCODE_GM_COMMAND  byte = 0x30 // text command, permission gated
	C_OPCODE_QUIT        byte = 0x7F
)

// Server → client opcodes.
const (
	S_OPCODE_LOGIN_RESULT    byte = 0x81 // result code [+ enter token]
	S_OPCODE_ENTER_WORLD     byte = 0x82 // char id + name, world join ack
	S_OPCODE_ATTR_CHANGE     byte = 0x90 // repeated {id:H, base*256:D, modified*256:D}
	S_OPCODE_POINTS_STATUS   byte = 0x91 // spendable:H, correction:H
	S_OPCODE_POINT_RESULT    byte = 0x92 // result code:C, attribute id:H
	S_OPCODE_ABILITY_STATUS  byte = 0x93 // repeated {id:C, remaining:D}
	S_OPCODE_GLOBAL_COOLDOWN byte = 0x94 // ticks:H
	S_OPCODE_NPC_MESSAGE     byte = 0xA0 // npc id:H, text:S
	S_OPCODE_NPC_CLOSE       byte = 0xA1 // npc id:H
	S_OPCODE_PLAYER_WARPED   byte = 0xA8 // map:H, x:H, y:H
	S_OPCODE_SYSTEM_MESSAGE  byte = 0xA9 // text:S
)
