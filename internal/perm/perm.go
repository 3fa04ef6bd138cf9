package perm

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Result is the outcome of a permission check. Unknown means the
// permission name was never declared, which is a caller bug rather than
// a refusal, so it stays distinguishable from Denied.
type Result uint8

const (
	Unknown Result = iota
	Allowed
	Denied
)

func (r Result) String() string {
	switch r {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// table maps permission name → bitmask of class levels allowed to use it.
// Level n owns bit 1<<(n-1), levels run 1..8.
type table struct {
	masks map[string]uint8
}

// Evaluator answers permission checks against the loaded class table.
// Reload builds a complete replacement table and swaps it in atomically,
// so a concurrent reader sees either the old or the new table, never a
// half-built one. A failed reload leaves the current table untouched.
type Evaluator struct {
	path string
	log  *zap.Logger
	tbl  atomic.Pointer[table]
}

func NewEvaluator(path string, log *zap.Logger) *Evaluator {
	e := &Evaluator{path: path, log: log}
	e.tbl.Store(&table{masks: make(map[string]uint8)})
	return e
}

type permissionsFile struct {
	Permissions *permissionsRoot `yaml:"permissions"`
}

type permissionsRoot struct {
	Classes []classEntry `yaml:"classes"`
}

type classEntry struct {
	Level int      `yaml:"level"`
	Allow []string `yaml:"allow"`
	// Deny and alias declarations are parsed for forward compatibility
	// but not yet enforced.
	Deny    []string            `yaml:"deny"`
	Aliases map[string][]string `yaml:"aliases"`
}

// Load parses the permission file and swaps in the new table. On any
// failure the previously loaded table, possibly empty, stays
// authoritative. Repeated declarations of a permission union their level
// bits; class entries with a level outside 1..8 are skipped with a
// warning, not fatal.
func (e *Evaluator) Load() error {
	raw, err := os.ReadFile(e.path)
	if err != nil {
		return fmt.Errorf("read permissions %s: %w", e.path, err)
	}
	var f permissionsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse permissions %s: %w", e.path, err)
	}
	if f.Permissions == nil {
		return fmt.Errorf("permissions %s: missing permissions root", e.path)
	}

	next := &table{masks: make(map[string]uint8)}
	for _, cls := range f.Permissions.Classes {
		if cls.Level < 1 || cls.Level > 8 {
			e.log.Warn("permission class level out of range, skipping",
				zap.Int("level", cls.Level),
			)
			continue
		}
		bit := uint8(1) << (cls.Level - 1)
		for _, name := range cls.Allow {
			next.masks[name] |= bit
		}
	}

	e.tbl.Store(next)
	e.log.Info("permission table loaded",
		zap.String("file", e.path),
		zap.Int("permissions", len(next.masks)),
	)
	return nil
}

// Check answers whether a class level may use the named permission.
func (e *Evaluator) Check(level uint8, name string) Result {
	t := e.tbl.Load()
	mask, declared := t.masks[name]
	if !declared {
		e.log.Warn("permission was never declared", zap.String("permission", name))
		return Unknown
	}
	if level < 1 || level > 8 {
		return Denied
	}
	if mask&(uint8(1)<<(level-1)) != 0 {
		return Allowed
	}
	return Denied
}
