// Command memory-match starts the Memory Match Game server.
//
// It supports three commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, the
//     WebSocket feed and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none
//     is reachable
//  3. "validate" checks every configuration file in the config directory
//
// Settings come from the environment (and an optional .env file); flags
// override them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/memory-match-game/api"
	"github.com/wricardo/memory-match-game/game/config"
	"github.com/wricardo/memory-match-game/game/service"
	"github.com/wricardo/memory-match-game/game/session"
	"github.com/wricardo/memory-match-game/transport/mcp"
	"github.com/wricardo/memory-match-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Memory Match Game Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "memory-match",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (HOST)"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (PORT)"},
			&cli.StringFlag{Name: "config-dir", Usage: "Directory containing game configurations (CONFIG_DIR)"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
			&cli.StringFlag{Name: "storage", Usage: "Save storage: file, sqlite or none (SAVE_STORAGE)"},
			&cli.StringFlag{Name: "save-dir", Usage: "Directory for file saves (SAVE_DIR)"},
			&cli.StringFlag{Name: "sqlite-path", Usage: "SQLite database for saves (SQLITE_PATH)"},
			&cli.DurationFlag{Name: "tick-interval", Usage: "Game clock interval, 0 disables it (TICK_INTERVAL)"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel (NGROK_ENABLED)"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (NGROK_AUTHTOKEN)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (NGROK_DOMAIN)"},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with API, WebSocket and MCP endpoint",
				Action: serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server backed by the HTTP API",
				Action:  mcpAction,
			},
			{
				Name:  "validate",
				Usage: "Validate the configuration files",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadServerConfig(cmd)
					if err != nil {
						return err
					}
					return runValidate(cfg.ConfigDir, os.Stdout)
				},
			},
		},
	}
}

// loadServerConfig reads the environment and applies flag overrides
func loadServerConfig(cmd *cli.Command) (config.ServerConfig, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return cfg, err
	}

	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("config-dir") {
		cfg.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("storage") {
		cfg.Storage = cmd.String("storage")
	}
	if cmd.IsSet("save-dir") {
		cfg.SaveDir = cmd.String("save-dir")
	}
	if cmd.IsSet("sqlite-path") {
		cfg.SQLitePath = cmd.String("sqlite-path")
	}
	if cmd.IsSet("tick-interval") {
		cfg.TickInterval = cmd.Duration("tick-interval")
	}
	if cmd.IsSet("ngrok") {
		cfg.Ngrok = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		cfg.NgrokToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.NgrokDomain = cmd.String("ngrok-domain")
	}
	if cmd.Bool("debug") {
		cfg.LogLevel = zerolog.LevelDebugValue
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// setupLogging configures the global zerolog logger. Logs always go to
// stderr so stdout stays free for the MCP stdio transport.
func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// app holds the wired services of one process
type app struct {
	service  service.GameService
	sessions *session.Manager
	hub      *websocket.Hub
	closers  []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

// openSnapshotStore selects the save backend. A nil store disables saves.
func openSnapshotStore(cfg config.ServerConfig) (service.SnapshotStore, io.Closer, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		store, err := session.OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.StorageNone:
		return nil, nil, nil
	default:
		store, err := session.NewFileStore(cfg.SaveDir)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}

// initializeServices wires config manager, snapshot store, session manager,
// game service and the WebSocket hub. Background loops are started by the
// caller.
func initializeServices(ctx context.Context, cfg config.ServerConfig) (*app, error) {
	configManager, err := config.NewManager(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	store, closer, err := openSnapshotStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	a := &app{
		sessions: session.NewManager(),
		hub:      websocket.NewHub(),
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	opts := []service.Option{
		service.WithPublisher(a.hub),
		service.WithAutoSave(cfg.AutoSave),
	}
	if store != nil {
		opts = append(opts, service.WithSnapshotStore(store))
	}
	a.service = service.NewGameService(a.sessions, configManager, opts...)

	if store != nil {
		restored, err := a.service.RestoreSessions(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to restore saved sessions")
		} else if restored > 0 {
			log.Info().Int("sessions", restored).Msg("restored saved sessions")
		}
	}

	log.Info().
		Str("config_dir", cfg.ConfigDir).
		Str("storage", cfg.Storage).
		Bool("auto_save", cfg.AutoSave).
		Msg("services initialized")

	return a, nil
}

// startBackground runs the hub, the game clock and session cleanup until ctx ends
func startBackground(ctx context.Context, wg *sync.WaitGroup, cfg config.ServerConfig, a *app) {
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		service.RunClock(ctx, a.service, cfg.TickInterval)
	}()
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, a.sessions, cfg.SessionMaxAge, cfg.CleanupInterval)
	}()
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge. Saved snapshots are kept.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, maxAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// newHandler combines the API server with the /mcp endpoint
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", mcpHandler(mcpClient.GetMCPServer()))
	return mux
}

// mcpHandler forwards one JSON-RPC message per POST to the MCP server
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error().Err(err).Msg("failed to write MCP response")
		}
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadServerConfig(cmd)
	if err != nil {
		return err
	}

	a, err := initializeServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return runHTTPServer(ctx, cfg, a)
}

// runHTTPServer serves the REST API, WebSocket hub and /mcp until ctx ends.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cfg config.ServerConfig, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	startBackground(ctx, &wg, cfg, a)

	addr := cfg.Addr()
	apiServer := api.NewServer(a.service, a.hub)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("ws", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Dur("tick_interval", cfg.TickInterval).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	if cfg.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cfg, handler)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serverErr:
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	cancel()
	wg.Wait()
	log.Info().Msg("server stopped")
	return nil
}

// runNgrok exposes handler through an ngrok tunnel until ctx ends
func runNgrok(ctx context.Context, cfg config.ServerConfig, handler http.Handler) {
	if cfg.NgrokToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("mcp", ngrokURL+"/mcp").
		Msg("🚀 ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadServerConfig(cmd)
	if err != nil {
		return err
	}
	return runStdioMCP(ctx, cfg)
}

// externalAPIAvailable reports whether an API server already answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API server already
// listening on the configured address; otherwise it starts an internal one on
// a random loopback port.
func runStdioMCP(ctx context.Context, cfg config.ServerConfig) error {
	baseURL := fmt.Sprintf("http://%s", cfg.Addr())

	if externalAPIAvailable(baseURL) {
		log.Info().Str("url", baseURL).Msg("external API server found, using it for MCP")
	} else {
		a, err := initializeServices(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		bgCtx, cancel := context.WithCancel(ctx)
		var wg sync.WaitGroup
		startBackground(bgCtx, &wg, cfg, a)

		httpServer := &http.Server{Handler: api.NewServer(a.service, a.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer func() {
			httpServer.Close()
			cancel()
			wg.Wait()
		}()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Info().Str("url", baseURL).Msg("started internal HTTP server for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runValidate validates every config file in dir and writes a report to out
func runValidate(dir string, out io.Writer) error {
	fmt.Fprintf(out, "Validating configurations in %s...\n", dir)

	results, err := config.ValidateDir(dir)
	if err != nil {
		return err
	}

	if !config.WriteReport(out, results) {
		return cli.Exit("", 1)
	}
	return nil
}
