package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard-sync/src/autosave"
	"dashboard-sync/src/channel"
	"dashboard-sync/src/config"
	"dashboard-sync/src/heartbeat"
	"dashboard-sync/src/helpers"
	"dashboard-sync/src/interfaces"
	"dashboard-sync/src/logger"
	"dashboard-sync/src/network"
	"dashboard-sync/src/panels"
	"dashboard-sync/src/server"
	"dashboard-sync/src/storage"
	"dashboard-sync/src/streams"
	"dashboard-sync/src/utils"
)

// -----------------------------------------------------------------------------

const featureHistorySize = 1000

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 2. Local state store
	store, err := storage.NewKeyValueStore(cfg.MConfig, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init store: %v", err)
	}
	if err := helpers.RetryWithBackoff("store init", 3, time.Second, appLogger, store.Initialize); err != nil {
		appLogger.Critical("Failed to initialize store: %v", err)
	}
	defer store.Close()

	// 3. Remote REST side
	var networkManager interfaces.INetworkManager = network.NewNetworkManager(&cfg.Remote, appLogger)

	// 4. Panels
	panelMgr := panels.NewManager(store, featureHistorySize, appLogger)

	// 5. Settings editor: seed from the remote control state, autosave back
	initialState := seedSettings(networkManager, appLogger)
	settingsQueue := autosave.NewQueue(&cfg.Autosave, initialState, network.NewStateSaver(networkManager), nil, appLogger)
	defer settingsQueue.Stop()

	// 6. Liveness
	monitor := heartbeat.NewMonitor(&cfg.Heartbeat, appLogger)

	// 7. Channels
	registry := channel.NewRegistry(appLogger)
	dialer := channel.NewWebSocketDialer(cfg.Remote.APIKey, time.Duration(cfg.Connection.HandshakeTimeoutSeconds)*time.Second)

	var srv interfaces.IStatusExchanger

	for _, chCfg := range cfg.Remote.Channels {
		if !streams.IsKnownKind(chCfg.Kind) {
			appLogger.Critical("Channel %s has unknown kind %q", chCfg.Name, chCfg.Kind)
		}

		endpoint, err := channel.MakeSocketURL(cfg.Remote.BaseURL, chCfg.Path)
		if err != nil {
			appLogger.Critical("Channel %s: %v", chCfg.Name, err)
		}

		ch := channel.NewChannel(chCfg.Name, endpoint, &cfg.Connection, dialer, appLogger.Named(chCfg.Name))

		kind := chCfg.Kind
		name := chCfg.Name
		ch.OnMessage = func(data []byte) {
			ev, err := streams.Decode(kind, data)
			if err != nil {
				appLogger.Warning("%s : dropping frame: %v", name, err)
				return
			}
			panelMgr.HandleEvent(ev)
		}
		ch.OnDown = func(err error) {
			srv.Notify("error", fmt.Sprintf("channel %s is down: %v", name, err))
		}
		ch.OnStateChange = func(s channel.State) {
			srv.PushUpdate()
		}

		if err := registry.Add(ch); err != nil {
			appLogger.Critical("Failed to register channel: %v", err)
		}
		monitor.Watch(ch)
	}

	monitor.OnChange = func(name string, degraded bool) {
		if degraded {
			srv.Notify("warning", fmt.Sprintf("channel %s has gone quiet", name))
		}
		srv.PushUpdate()
	}

	// 8. Status server (toast surface and websocket feed)
	srv = server.NewStatusServer(cfg.MConfig, registry, monitor, panelMgr, settingsQueue, appLogger)
	settingsQueue.SetNotifier(srv)
	panelMgr.OnUpdate = srv.PushUpdate

	// 9. Seed panels from REST snapshots before the streams open
	seedPanels(cfg, networkManager, panelMgr, appLogger)

	// 10. Session gate: pause liveness checks while every market is closed
	var gate *utils.SessionGate
	if cfg.Session.Enabled {
		gate = utils.NewSessionGate(cfg.Session.Symbols, appLogger)
		gate.OnClose = monitor.Pause
		gate.OnOpen = monitor.Resume
		gate.Start()
		defer gate.Stop()
	}

	// 11. Start everything
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Status server failed: %v", err)
		}
	}()

	monitor.Start()
	registry.ConnectAll()

	appLogger.Info("Initialization complete.")

	// 12. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	registry.DisconnectAll()
	monitor.Stop()
	settingsQueue.Flush()
	srv.Stop()
}

// -----------------------------------------------------------------------------

// seedSettings fetches the remote control state so the settings editor
// starts from what the backend actually has. An unreachable backend is not
// fatal: the editor starts empty and the first save establishes the state.
func seedSettings(nm interfaces.INetworkManager, log *logger.Logger) map[string]interface{} {
	body, err := nm.Get("/state", nil)
	if err != nil {
		log.Warning("Failed to seed settings from remote state: %v", err)
		return map[string]interface{}{}
	}

	state, err := streams.DecodeState(body)
	if err != nil {
		log.Warning("Failed to decode remote state: %v", err)
		return map[string]interface{}{}
	}

	log.Info("Settings seeded with %d keys", len(state))
	return state
}

// -----------------------------------------------------------------------------

// seedPanels loads REST snapshots for channels that declare one, so panels
// have rows before the first stream frame arrives.
func seedPanels(cfg *config.Config, nm interfaces.INetworkManager, panelMgr *panels.Manager, log *logger.Logger) {
	for _, chCfg := range cfg.Remote.Channels {
		if chCfg.SnapshotPath == "" {
			continue
		}

		body, err := nm.Get(chCfg.SnapshotPath, nil)
		if err != nil {
			log.Warning("Snapshot for %s failed: %v", chCfg.Name, err)
			continue
		}

		switch chCfg.Kind {
		case streams.KindOrders:
			orders, err := streams.DecodeOrderList(body)
			if err != nil {
				log.Warning("Snapshot for %s undecodable: %v", chCfg.Name, err)
				continue
			}
			panelMgr.SeedOrders(orders)

		case streams.KindPositions:
			positions, err := streams.DecodePositionMap(body)
			if err != nil {
				log.Warning("Snapshot for %s undecodable: %v", chCfg.Name, err)
				continue
			}
			panelMgr.SeedPositions(positions)

		default:
			log.Warning("Channel %s declares a snapshot path but kind %q has no seed decoder", chCfg.Name, chCfg.Kind)
		}
	}
}
