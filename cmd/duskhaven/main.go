package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/duskhaven/server/internal/config"
	"github.com/duskhaven/server/internal/core/ecs"
	"github.com/duskhaven/server/internal/core/event"
	coresys "github.com/duskhaven/server/internal/core/system"
	"github.com/duskhaven/server/internal/data"
	"github.com/duskhaven/server/internal/handler"
	gonet "github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
	"github.com/duskhaven/server/internal/perm"
	"github.com/duskhaven/server/internal/persist"
	"github.com/duskhaven/server/internal/presence"
	"github.com/duskhaven/server/internal/scripting"
	"github.com/duskhaven/server/internal/system"
	"github.com/duskhaven/server/internal/world"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:           "duskhaven",
		Short:         "Duskhaven game server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c",
		"config/server.toml", "path to the server config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the game server",
			RunE:  func(cmd *cobra.Command, args []string) error { return runServe() },
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE:  func(cmd *cobra.Command, args []string) error { return runMigrate() },
		},
		&cobra.Command{
			Use:   "checkdata",
			Short: "Validate data tables and the permission policy without starting the server",
			RunE:  func(cmd *cobra.Command, args []string) error { return runCheckData() },
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             Duskhaven  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        黃昏港 · Go 遊戲伺服器             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	// Use rune count for CJK width calculation (each CJK char = 2 columns)
	displayWidth := 0
	for _, r := range title {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	lineLen := 46 - displayWidth - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	// Use display width for CJK characters
	displayWidth := 0
	for _, r := range label {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	dotsLen := 42 - displayWidth - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func runServe() error {
	// 1. Load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("資料庫")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL 連線成功")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("資料庫遷移完成")
	fmt.Println()

	// 4. Create repositories
	accountRepo := persist.NewAccountRepo(db)
	charRepo := persist.NewCharacterRepo(db)

	// 5. Load static data tables and the permission policy
	printSection("資料載入")

	attrTable, err := data.LoadAttributeTable(filepath.Join(cfg.Paths.DataDir, "attributes.yaml"))
	if err != nil {
		return fmt.Errorf("load attribute table: %w", err)
	}
	printStat("屬性定義", attrTable.Count())

	abilityTable, err := data.LoadAbilityTable(filepath.Join(cfg.Paths.DataDir, "abilities.yaml"))
	if err != nil {
		return fmt.Errorf("load ability table: %w", err)
	}
	printStat("特殊能力", abilityTable.Count())

	permEval := perm.NewEvaluator(cfg.Paths.PermissionsFile, log)
	if err := permEval.Load(); err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	printOK("權限策略載入完成")

	// 6. Redis presence bridge. 連不上只降級,不擋開服。
	bridge := presence.NewBridge(cfg.Redis, cfg.Server.Name, log)
	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := bridge.Ping(pingCtx); err != nil {
		log.Warn("Redis 連線失敗,上線狀態同步停用", zap.Error(err))
	} else {
		printOK("Redis 連線成功")
	}
	pingCancel()
	bridge.Start()

	// 7. Entity world, live world indexes, event bus, component stores
	ecsWorld := ecs.NewWorld()
	worldState := world.NewState()
	bus := event.NewBus()
	stores := system.NewStores(ecsWorld)

	// 8. Lua scripting engine. BindAPI needs the character system, so the
	// scripts load after step 9.
	engine := scripting.NewEngine(log)
	defer engine.Close()

	// 9. Handler deps and the character orchestrator
	deps := &handler.Deps{
		Config:      cfg,
		Log:         log,
		World:       worldState,
		Perm:        permEval,
		AccountRepo: accountRepo,
		CharRepo:    charRepo,
		Attributes:  attrTable,
		Abilities:   abilityTable,
	}
	cs := system.NewCharacterSystem(deps, ecsWorld, bus, engine, stores)
	deps.Characters = cs

	engine.BindAPI(cs)
	if err := engine.LoadDir(cfg.Paths.ScriptsDir); err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	printOK("Lua 腳本載入完成")
	fmt.Println()

	// 10. Create packet handler registry and register handlers
	pktReg := packet.NewRegistry(log)
	handler.RegisterAll(pktReg, deps)

	// 11. Create network server
	netServer, err := gonet.NewServer(gonet.ServerConfig{
		Bind:          cfg.Network.BindAddress,
		InQueueSize:   cfg.Network.InQueueSize,
		OutQueueSize:  cfg.Network.OutQueueSize,
		PacketsPerSec: cfg.Network.PacketsPerSecond,
	}, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}

	// 12. Presence follows the world lifecycle events. 在遊戲迴圈執行緒上
	// 跑,查 store 是安全的;橋接本身只把工作丟進佇列。
	event.Subscribe(bus, func(ev event.CharacterEnteredWorld) {
		var mapID int32
		if actor, ok := stores.Actors.Get(ev.Entity); ok {
			mapID = actor.MapID
		}
		bridge.CharacterOnline(ev.CharID, ev.CharName, mapID)
	})
	event.Subscribe(bus, func(ev event.CharacterDisconnected) {
		bridge.CharacterOffline(ev.CharID, ev.CharName)
	})

	// 13. Create systems and register with runner. 同相位依註冊順序執行。
	runner := coresys.NewRunner()
	inputSys := system.NewInputSystem(deps, netServer, pktReg, cs, cfg.Network.MaxPacketsPerTick)
	runner.Register(inputSys)
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewAbilitySystem(stores.Abilities))
	runner.Register(cs)
	runner.Register(system.NewWarpSystem(worldState, stores.Characters, stores.Actors))
	runner.Register(system.NewOutputSystem(inputSys))
	persistSys := system.NewPersistSystem(deps, cs, stores, cfg.Game.SaveInterval)
	runner.Register(persistSys)
	runner.Register(system.NewCleanupSystem(ecsWorld, worldState))

	go netServer.AcceptLoop()

	// 14. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr()))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			// Save all characters before stopping
			persistSys.SaveAll()
			netServer.Shutdown()
			if err := bridge.Close(); err != nil {
				log.Warn("Redis 橋接關閉失敗", zap.Error(err))
			}
			log.Info("伺服器已停止")
			return nil
		}
	}
}

// runMigrate applies pending migrations and exits, for deployments that
// migrate as a separate step before rolling the server.
func runMigrate() error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("資料庫遷移完成")
	return nil
}

// runCheckData loads every static data file the server reads at boot and
// reports what it finds, without touching the database or the network.
// 改完表先跑這個,比開整台伺服器驗證快得多。
func runCheckData() error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printSection("資料檢查")

	attrTable, err := data.LoadAttributeTable(filepath.Join(cfg.Paths.DataDir, "attributes.yaml"))
	if err != nil {
		return fmt.Errorf("load attribute table: %w", err)
	}
	printStat("屬性定義", attrTable.Count())

	derived := 0
	for _, id := range attrTable.IDs() {
		if len(attrTable.Get(id).DerivedFrom) > 0 {
			derived++
		}
	}
	printStat("衍生屬性", derived)

	abilityTable, err := data.LoadAbilityTable(filepath.Join(cfg.Paths.DataDir, "abilities.yaml"))
	if err != nil {
		return fmt.Errorf("load ability table: %w", err)
	}
	printStat("特殊能力", abilityTable.Count())

	permEval := perm.NewEvaluator(cfg.Paths.PermissionsFile, log)
	if err := permEval.Load(); err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	printOK("權限策略載入完成")

	engine := scripting.NewEngine(log)
	defer engine.Close()
	engine.BindAPI(scripting.NopAPI{})
	if err := engine.LoadDir(cfg.Paths.ScriptsDir); err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	printOK("Lua 腳本載入完成")

	printReady("所有資料檔驗證通過")
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
