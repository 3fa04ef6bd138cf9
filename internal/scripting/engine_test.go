package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

type fakeAPI struct {
	bases     map[int32]float64
	warps     []int32
	messages  []string
	abilities []int32
}

func (f *fakeAPI) AttributeBase(charID, attrID int32) (float64, bool) {
	v, ok := f.bases[attrID]
	return v, ok
}

func (f *fakeAPI) AttributeModified(charID, attrID int32) (float64, bool) {
	v, ok := f.bases[attrID]
	return v * 2, ok
}

func (f *fakeAPI) SetAttributeBase(charID, attrID int32, value float64) bool {
	if f.bases == nil {
		f.bases = make(map[int32]float64)
	}
	f.bases[attrID] = value
	return true
}

func (f *fakeAPI) Warp(charID, mapID, x, y int32) bool {
	f.warps = append(f.warps, mapID, x, y)
	return true
}

func (f *fakeAPI) KillCount(charID, adversaryID int32) int32 { return 5 }

func (f *fakeAPI) GrantAbility(charID, abilityID int32) bool {
	f.abilities = append(f.abilities, abilityID)
	return true
}

func (f *fakeAPI) UseAbility(charID, abilityID int32) bool { return true }

func (f *fakeAPI) SendNpcMessage(charID, npcID int32, text string) bool {
	f.messages = append(f.messages, text)
	return true
}

func loadScript(t *testing.T, e *Engine, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(body), 0o644))
	require.NoError(t, e.LoadDir(dir))
}

func TestHookRegistrationAndDispatch(t *testing.T) {
	e := NewEngine(zap.NewNop())
	defer e.Close()
	api := &fakeAPI{}
	e.BindAPI(api)

	loadScript(t, e, `
register_hook("character_death", function(char_id)
    chr_set_base_attribute(char_id, 99, char_id)
end)
`)

	e.CallDeathHook(12)
	assert.Equal(t, 12.0, api.bases[99])
}

func TestHookSettableOnce(t *testing.T) {
	e := NewEngine(zap.NewNop())
	defer e.Close()
	api := &fakeAPI{}
	e.BindAPI(api)

	loadScript(t, e, `
register_hook("character_login", function(char_id)
    chr_set_base_attribute(char_id, 1, 111)
end)
register_hook("character_login", function(char_id)
    chr_set_base_attribute(char_id, 1, 222)
end)
`)

	e.CallLoginHook(1)
	assert.Equal(t, 111.0, api.bases[1], "second registration must be refused")
}

func TestAbilityBindings(t *testing.T) {
	e := NewEngine(zap.NewNop())
	defer e.Close()
	api := &fakeAPI{}
	e.BindAPI(api)

	loadScript(t, e, `
register_hook("character_login", function(char_id)
    chr_give_ability(char_id, 4)
    chr_use_ability(char_id, 4)
end)
`)

	e.CallLoginHook(3)
	assert.Equal(t, []int32{4}, api.abilities)
}

func TestDeathAcceptedFallbackSignal(t *testing.T) {
	e := NewEngine(zap.NewNop())
	defer e.Close()

	assert.False(t, e.CallDeathAcceptedHook(1), "no hook registered means caller falls back")

	loadScript(t, e, `register_hook("character_death_accepted", function(char_id) end)`)
	assert.True(t, e.CallDeathAcceptedHook(1))
}

func TestDialogueThreadYieldAndResume(t *testing.T) {
	e := NewEngine(zap.NewNop())
	defer e.Close()
	api := &fakeAPI{}
	e.BindAPI(api)

	loadScript(t, e, `
function npc_talk(char_id, npc_id)
    npc_message(char_id, npc_id, "hello")
    coroutine.yield()
    npc_message(char_id, npc_id, "goodbye")
end
`)

	th, err := e.NewDialogueThread("npc_talk")
	require.NoError(t, err)

	done, err := e.ResumeThread(th, lua.LNumber(1), lua.LNumber(20))
	require.NoError(t, err)
	assert.False(t, done, "dialogue suspends at the first yield")
	assert.Equal(t, []string{"hello"}, api.messages)

	done, err = e.ResumeThread(th)
	require.NoError(t, err)
	assert.True(t, done, "dialogue runs to completion on second resume")
	assert.Equal(t, []string{"hello", "goodbye"}, api.messages)
}

func TestDialogueThreadUnknownFunction(t *testing.T) {
	e := NewEngine(zap.NewNop())
	defer e.Close()

	_, err := e.NewDialogueThread("missing_fn")
	assert.Error(t, err)
}

func TestDialogueThreadErrorCompletes(t *testing.T) {
	e := NewEngine(zap.NewNop())
	defer e.Close()

	loadScript(t, e, `
function npc_talk(char_id, npc_id)
    error("boom")
end
`)

	th, err := e.NewDialogueThread("npc_talk")
	require.NoError(t, err)

	done, err := e.ResumeThread(th, lua.LNumber(1), lua.LNumber(2))
	assert.True(t, done, "a dead thread counts as completed")
	assert.Error(t, err)
}

func TestMissingScriptDirIsSkipped(t *testing.T) {
	e := NewEngine(zap.NewNop())
	defer e.Close()
	assert.NoError(t, e.LoadDir(filepath.Join(t.TempDir(), "absent")))
}
