package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for game logic execution.
// Single-goroutine access only (game loop). Construction is two-phase:
// NewEngine builds the VM and the registration surface, BindAPI installs
// the game-facing functions, LoadDir then runs the script files, which
// register their hooks.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger

	hooks   Hooks
	current *Thread // active dialogue thread, nil when none is running
}

func NewEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("register_hook", vm.NewFunction(e.luaRegisterHook))
	return e
}

// LoadDir runs all .lua files in a directory. Missing directories are
// skipped so optional script sets stay optional.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read scripts dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Global returns a loaded global function by name, or nil.
func (e *Engine) Global(name string) *lua.LFunction {
	fn, _ := e.vm.GetGlobal(name).(*lua.LFunction)
	return fn
}

// call invokes fn protected with the given arguments, discarding results.
func (e *Engine) call(what string, fn *lua.LFunction, args ...lua.LValue) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua call error", zap.String("func", what), zap.Error(err))
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
