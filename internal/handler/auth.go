package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
)

const (
	loginOK            byte = 0x00
	loginBadCredential byte = 0x01 // 帳號不存在與密碼錯誤共用，避免帳號列舉
	loginBanned        byte = 0x02
	loginAlreadyOnline byte = 0x03
)

// HandleLogin processes C_LOGIN (opcode 0x01).
// Format: [S account][S password]
func HandleLogin(sess *net.Session, r *packet.Reader, deps *Deps) {
	accountName := strings.ToLower(strings.TrimSpace(r.ReadS()))
	password := r.ReadS()
	if accountName == "" {
		sendLoginResult(sess, loginBadCredential, "")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	account, err := deps.AccountRepo.Load(ctx, accountName)
	if err != nil {
		deps.Log.Error("載入帳號資料庫錯誤", zap.Error(err))
		sendLoginResult(sess, loginBadCredential, "")
		return
	}
	if account == nil {
		sendLoginResult(sess, loginBadCredential, "")
		return
	}
	if !deps.AccountRepo.ValidatePassword(account.PasswordHash, password) {
		sendLoginResult(sess, loginBadCredential, "")
		return
	}
	if account.Banned {
		deps.Log.Info(fmt.Sprintf("被封鎖帳號嘗試登入  帳號=%s  ip=%s", accountName, sess.IP))
		sendLoginResult(sess, loginBanned, "")
		return
	}
	if account.Online {
		sendLoginResult(sess, loginAlreadyOnline, "")
		return
	}

	if err := deps.AccountRepo.SetOnline(ctx, accountName, true); err != nil {
		deps.Log.Error("設定上線狀態資料庫錯誤", zap.Error(err))
	}
	if err := deps.AccountRepo.UpdateLastActive(ctx, accountName); err != nil {
		deps.Log.Error("更新最後活動時間資料庫錯誤", zap.Error(err))
	}

	sess.AccountName = accountName
	sess.EnterToken = uuid.New()
	sess.SetState(packet.StateAuthenticated)

	// 回傳一次性進入世界憑證，C_ENTER_WORLD 需原樣帶回
	sendLoginResult(sess, loginOK, sess.EnterToken.String())

	deps.Log.Info(fmt.Sprintf("登入成功  帳號=%s  ip=%s", accountName, sess.IP))
}

// sendLoginResult 發送 S_OPCODE_LOGIN_RESULT。
// 格式: [C result][S token]（失敗時 token 為空字串）
func sendLoginResult(sess *net.Session, result byte, token string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_LOGIN_RESULT)
	w.WriteC(result)
	w.WriteS(token)
	sess.Send(w.Bytes())
}
