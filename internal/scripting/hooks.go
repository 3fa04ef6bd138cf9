package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Hook names scripts may register via register_hook(name, fn).
const (
	HookDeath         = "character_death"
	HookDeathAccepted = "character_death_accepted"
	HookLogin         = "character_login"
)

// Hooks holds the optional lifecycle callables. Each slot is settable
// once, at script load time; later registrations are refused so the
// winning hook does not depend on file load order races.
type Hooks struct {
	death         *lua.LFunction
	deathAccepted *lua.LFunction
	login         *lua.LFunction
}

func (e *Engine) luaRegisterHook(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	var slot **lua.LFunction
	switch name {
	case HookDeath:
		slot = &e.hooks.death
	case HookDeathAccepted:
		slot = &e.hooks.deathAccepted
	case HookLogin:
		slot = &e.hooks.login
	default:
		e.log.Warn("register_hook: unknown hook name", zap.String("name", name))
		return 0
	}

	if *slot != nil {
		e.log.Warn("register_hook: hook already registered, keeping first", zap.String("name", name))
		return 0
	}
	*slot = fn
	e.log.Info("script hook registered", zap.String("name", name))
	return 0
}

// CallDeathHook fires the death hook, if registered. Fire and forget:
// there is no fallback behavior when no hook exists.
func (e *Engine) CallDeathHook(charID int32) {
	if e.hooks.death == nil {
		return
	}
	e.call(HookDeath, e.hooks.death, lua.LNumber(charID))
}

// CallDeathAcceptedHook fires the death-accepted hook. Returns false when
// no hook is registered so the caller can apply its hardcoded respawn
// fallback instead.
func (e *Engine) CallDeathAcceptedHook(charID int32) bool {
	if e.hooks.deathAccepted == nil {
		return false
	}
	e.call(HookDeathAccepted, e.hooks.deathAccepted, lua.LNumber(charID))
	return true
}

// CallLoginHook fires the login hook, if registered.
func (e *Engine) CallLoginHook(charID int32) {
	if e.hooks.login == nil {
		return
	}
	e.call(HookLogin, e.hooks.login, lua.LNumber(charID))
}
