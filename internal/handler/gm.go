package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
	"github.com/duskhaven/server/internal/perm"
)

// GM 指令對應的權限名稱，permissions.yaml 的 allow 清單宣告。
const (
	permCommandWarp   = "command.warp"
	permCommandResync = "command.resync"
)

// HandleGmCommand processes C_GM_COMMAND (opcode 0x30)。
// Format: [S command line]，例如 "warp 1 1024 1024"。
// 每個指令先過權限評估器；Unknown 視為設定缺漏，一律拒絕。
func HandleGmCommand(sess *net.Session, r *packet.Reader, deps *Deps) {
	line := strings.TrimSpace(r.ReadS())
	if line == "" {
		return
	}

	entity, ok := deps.World.GetBySession(sess.ID)
	if !ok {
		return
	}
	level := deps.Characters.AccessLevel(entity)

	fields := strings.Fields(line)
	switch fields[0] {
	case "warp":
		if !checkCommandPermission(sess, deps, level, permCommandWarp) {
			return
		}
		if len(fields) != 4 {
			SendSystemMessage(sess, "用法: warp <map> <x> <y>")
			return
		}
		mapID, err1 := strconv.ParseInt(fields[1], 10, 32)
		x, err2 := strconv.ParseInt(fields[2], 10, 32)
		y, err3 := strconv.ParseInt(fields[3], 10, 32)
		if err1 != nil || err2 != nil || err3 != nil {
			SendSystemMessage(sess, "用法: warp <map> <x> <y>")
			return
		}
		deps.World.RequestWarp(entity, int32(mapID), int32(x), int32(y))
		deps.Log.Info(fmt.Sprintf("GM 傳送  角色=%s  地圖=%d  座標=(%d,%d)", sess.CharName, mapID, x, y))

	case "resync":
		if !checkCommandPermission(sess, deps, level, permCommandResync) {
			return
		}
		deps.Characters.ModifiedAllAttributes(entity)
		SendSystemMessage(sess, "屬性已全部重新同步")

	default:
		SendSystemMessage(sess, "未知指令: "+fields[0])
	}
}

func checkCommandPermission(sess *net.Session, deps *Deps, level uint8, name string) bool {
	switch deps.Perm.Check(level, name) {
	case perm.Allowed:
		return true
	case perm.Unknown:
		SendSystemMessage(sess, "此指令未設定權限")
		return false
	default:
		SendSystemMessage(sess, "權限不足")
		return false
	}
}
