package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/memory-match-game/api"
	"github.com/wricardo/memory-match-game/game/config"
	"github.com/wricardo/memory-match-game/game/session"
	"github.com/wricardo/memory-match-game/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Memory Match Game Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func runWithArgs(t *testing.T, args ...string) config.ServerConfig {
	t.Helper()

	var cfg config.ServerConfig
	cmd := newRootCommand()
	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		var err error
		cfg, err = loadServerConfig(cmd)
		return err
	}

	if err := cmd.Run(context.Background(), append([]string{"memory-match"}, args...)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return cfg
}

func TestFlagOverrides(t *testing.T) {
	cfg := runWithArgs(t,
		"--host", "0.0.0.0",
		"--port", "9090",
		"--config-dir", "presets",
		"--storage", "sqlite",
		"--sqlite-path", "test.db",
		"--tick-interval", "250ms",
	)

	if cfg.Host != "0.0.0.0" || cfg.Port != 9090 {
		t.Errorf("Expected 0.0.0.0:9090, got %s", cfg.Addr())
	}
	if cfg.ConfigDir != "presets" {
		t.Errorf("Expected config dir override, got %s", cfg.ConfigDir)
	}
	if cfg.Storage != config.StorageSQLite || cfg.SQLitePath != "test.db" {
		t.Errorf("Expected sqlite storage at test.db, got %s %s", cfg.Storage, cfg.SQLitePath)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("Expected 250ms tick interval, got %v", cfg.TickInterval)
	}
}

func TestFlagDefaultsComeFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("SAVE_STORAGE", "none")

	cfg := runWithArgs(t)

	if cfg.Port != 7070 {
		t.Errorf("Expected port from env, got %d", cfg.Port)
	}
	if cfg.Storage != config.StorageNone {
		t.Errorf("Expected storage from env, got %s", cfg.Storage)
	}
}

func TestInvalidStorageRejected(t *testing.T) {
	cmd := newRootCommand()
	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		_, err := loadServerConfig(cmd)
		return err
	}

	err := cmd.Run(context.Background(), []string{"memory-match", "--storage", "floppy"})
	if err == nil || !strings.Contains(err.Error(), "floppy") {
		t.Errorf("Expected unknown storage error, got %v", err)
	}
}

func TestOpenSnapshotStore(t *testing.T) {
	dir := t.TempDir()

	t.Run("file", func(t *testing.T) {
		store, closer, err := openSnapshotStore(config.ServerConfig{Storage: config.StorageFile, SaveDir: filepath.Join(dir, "saves")})
		if err != nil {
			t.Fatalf("openSnapshotStore failed: %v", err)
		}
		if _, ok := store.(*session.FileStore); !ok {
			t.Errorf("Expected *session.FileStore, got %T", store)
		}
		if closer != nil {
			t.Error("File store needs no closer")
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		store, closer, err := openSnapshotStore(config.ServerConfig{Storage: config.StorageSQLite, SQLitePath: filepath.Join(dir, "saves.db")})
		if err != nil {
			t.Fatalf("openSnapshotStore failed: %v", err)
		}
		defer closer.Close()
		if _, ok := store.(*session.SQLiteStore); !ok {
			t.Errorf("Expected *session.SQLiteStore, got %T", store)
		}
	})

	t.Run("none", func(t *testing.T) {
		store, closer, err := openSnapshotStore(config.ServerConfig{Storage: config.StorageNone})
		if err != nil || store != nil || closer != nil {
			t.Errorf("Expected no store, got %v %v %v", store, closer, err)
		}
	})
}

func testServerConfig(t *testing.T) config.ServerConfig {
	t.Helper()
	return config.ServerConfig{
		ConfigDir:       "configs",
		Storage:         config.StorageFile,
		SaveDir:         t.TempDir(),
		AutoSave:        true,
		TickInterval:    0,
		SessionMaxAge:   time.Hour,
		CleanupInterval: time.Hour,
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	a, err := initializeServices(context.Background(), testServerConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer a.Close()

	info, err := a.service.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.ConfigName != config.DefaultConfigName {
		t.Errorf("Expected default config %s, got %s", config.DefaultConfigName, info.ConfigName)
	}
}

func TestInitializeServicesRestoresSaves(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	cfg := testServerConfig(t)

	first, err := initializeServices(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	info, err := first.service.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := first.service.SaveGame(context.Background(), info.ID); err != nil {
		t.Fatalf("SaveGame failed: %v", err)
	}
	first.Close()

	second, err := initializeServices(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer second.Close()

	if _, err := second.service.GetSession(context.Background(), info.ID); err != nil {
		t.Errorf("Expected session %s to be restored: %v", info.ID, err)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	cfg := testServerConfig(t)
	cfg.ConfigDir = "/non/existent/path"

	if _, err := initializeServices(context.Background(), cfg); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestMCPEndpoint(t *testing.T) {
	handler := newHandler(http.NotFoundHandler(), mcp.NewClient("http://127.0.0.1:1"))

	t.Run("GET rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", w.Code)
		}
	})

	t.Run("tools/list", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "select_card") {
			t.Errorf("Expected tool list, got %s", w.Body.String())
		}
	})

	t.Run("other paths reach the API", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/sessions", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected the API handler to answer, got %d", w.Code)
		}
	})
}

func TestServedAPIEndToEnd(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	a, err := initializeServices(context.Background(), testServerConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer a.Close()

	srv := httptest.NewServer(api.NewServer(a.service, a.hub))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/sessions", "application/json", strings.NewReader(`{"config_id":"small"}`))
	if err != nil {
		t.Fatalf("POST /api/sessions failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestSessionCleanupRoutineStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, session.NewManager(), time.Hour, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	valid := `{"name":"Tiny","rows":2,"columns":2,"symbols":["A","B"]}`
	if err := os.WriteFile(filepath.Join(dir, "tiny.json"), []byte(valid), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runValidate(dir, &out); err != nil {
		t.Fatalf("Expected valid configs, got %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "All configurations are valid") {
		t.Errorf("Unexpected report:\n%s", out.String())
	}

	invalid := `{"name":"Odd","rows":3,"columns":3,"symbols":["A","B","C","D","E"]}`
	if err := os.WriteFile(filepath.Join(dir, "odd.json"), []byte(invalid), 0644); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := runValidate(dir, &out); err == nil {
		t.Error("Expected failure for odd grid")
	}
	if !strings.Contains(out.String(), "odd.json") {
		t.Errorf("Report should name the invalid file:\n%s", out.String())
	}
}

func TestRunValidateShippedConfigs(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	var out bytes.Buffer
	if err := runValidate("configs", &out); err != nil {
		t.Errorf("Shipped configs should validate: %v\n%s", err, out.String())
	}
}
