package handler

import (
	"fmt"

	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
)

// HandleQuit processes C_QUIT (opcode 0x7F).
// 只關閉連線；世界清理與存檔由遊戲迴圈偵測到斷線後處理。
func HandleQuit(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Info(fmt.Sprintf("玩家登出  session=%d  帳號=%s", sess.ID, sess.AccountName))
	sess.SetState(packet.StateDisconnecting)
	sess.Close()
}
