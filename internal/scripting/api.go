package scripting

import (
	lua "github.com/yuin/gopher-lua"
)

// GameAPI is the game-state surface exposed to scripts. The character
// orchestrator implements it; every call runs synchronously inside the
// game loop, so scripts may freely mutate the character that triggered
// the hook.
type GameAPI interface {
	AttributeBase(charID, attrID int32) (float64, bool)
	AttributeModified(charID, attrID int32) (float64, bool)
	SetAttributeBase(charID, attrID int32, value float64) bool
	Warp(charID, mapID, x, y int32) bool
	KillCount(charID, adversaryID int32) int32
	GrantAbility(charID, abilityID int32) bool
	UseAbility(charID, abilityID int32) bool
	SendNpcMessage(charID, npcID int32, text string) bool
}

// NopAPI satisfies GameAPI with no-op responses. Offline tooling binds it
// so scripts load under the same globals they see on a live server.
type NopAPI struct{}

func (NopAPI) AttributeBase(charID, attrID int32) (float64, bool)        { return 0, false }
func (NopAPI) AttributeModified(charID, attrID int32) (float64, bool)    { return 0, false }
func (NopAPI) SetAttributeBase(charID, attrID int32, value float64) bool { return false }
func (NopAPI) Warp(charID, mapID, x, y int32) bool                       { return false }
func (NopAPI) KillCount(charID, adversaryID int32) int32                 { return 0 }
func (NopAPI) GrantAbility(charID, abilityID int32) bool                 { return false }
func (NopAPI) UseAbility(charID, abilityID int32) bool                   { return false }
func (NopAPI) SendNpcMessage(charID, npcID int32, text string) bool      { return false }

// BindAPI installs the chr_* and npc_* globals backed by the given
// implementation. Call before LoadDir so scripts can reference them.
func (e *Engine) BindAPI(api GameAPI) {
	e.vm.SetGlobal("chr_get_base_attribute", e.vm.NewFunction(func(L *lua.LState) int {
		v, ok := api.AttributeBase(int32(L.CheckNumber(1)), int32(L.CheckNumber(2)))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(v))
		return 1
	}))

	e.vm.SetGlobal("chr_get_modified_attribute", e.vm.NewFunction(func(L *lua.LState) int {
		v, ok := api.AttributeModified(int32(L.CheckNumber(1)), int32(L.CheckNumber(2)))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(v))
		return 1
	}))

	e.vm.SetGlobal("chr_set_base_attribute", e.vm.NewFunction(func(L *lua.LState) int {
		ok := api.SetAttributeBase(int32(L.CheckNumber(1)), int32(L.CheckNumber(2)), float64(L.CheckNumber(3)))
		L.Push(lua.LBool(ok))
		return 1
	}))

	e.vm.SetGlobal("chr_warp", e.vm.NewFunction(func(L *lua.LState) int {
		ok := api.Warp(int32(L.CheckNumber(1)), int32(L.CheckNumber(2)), int32(L.CheckNumber(3)), int32(L.CheckNumber(4)))
		L.Push(lua.LBool(ok))
		return 1
	}))

	e.vm.SetGlobal("chr_get_kill_count", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(api.KillCount(int32(L.CheckNumber(1)), int32(L.CheckNumber(2)))))
		return 1
	}))

	e.vm.SetGlobal("chr_give_ability", e.vm.NewFunction(func(L *lua.LState) int {
		ok := api.GrantAbility(int32(L.CheckNumber(1)), int32(L.CheckNumber(2)))
		L.Push(lua.LBool(ok))
		return 1
	}))

	e.vm.SetGlobal("chr_use_ability", e.vm.NewFunction(func(L *lua.LState) int {
		ok := api.UseAbility(int32(L.CheckNumber(1)), int32(L.CheckNumber(2)))
		L.Push(lua.LBool(ok))
		return 1
	}))

	e.vm.SetGlobal("npc_message", e.vm.NewFunction(func(L *lua.LState) int {
		ok := api.SendNpcMessage(int32(L.CheckNumber(1)), int32(L.CheckNumber(2)), L.CheckString(3))
		L.Push(lua.LBool(ok))
		return 1
	}))
}
