package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/shakehands/internal/app"
	"github.com/ayusman/shakehands/internal/capture"
	"github.com/ayusman/shakehands/internal/config"
	"github.com/ayusman/shakehands/internal/logging"
	"github.com/ayusman/shakehands/internal/player"
	"github.com/ayusman/shakehands/internal/plugin"
	"github.com/ayusman/shakehands/internal/server"
	"github.com/ayusman/shakehands/internal/store"
	"github.com/ayusman/shakehands/internal/tray"
	"github.com/ayusman/shakehands/internal/volume"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	logging.Infof("shakehands - shake to turn it up")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logging.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		logging.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application, err := app.New(app.Config{
		Store: st,
		CameraOptions: capture.Options{
			DeviceID:       cfg.CameraID,
			FlipHorizontal: cfg.FlipHorizontal,
			FPS:            cfg.DetectionFPS,
		},
		DetectorConfig: cfg.Detector(),
		Volume:         cfg.Volume(),
		DetectionFPS:   cfg.DetectionFPS,
		MotionThresh:   cfg.MotionThresh,
		DecisionDelay:  cfg.DecisionDelay,
		Sink:           newSink(cfg),
		FadeStep:       cfg.FadeStep,
		FadeInterval:   cfg.FadeInterval,
	})
	if err != nil {
		logging.Fatalf("Failed to create app: %v", err)
	}
	defer application.Close()

	hub := server.NewHub(application)
	application.OnDecision(hub.Publish)

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		logging.Infof("Serving static files from: %s", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Volume:    application,
		Frames:    application.Preview(),
		Hub:       hub,
	})
	httpServer := srv.HTTPServer(cfg.HTTPAddr)

	go func() {
		logging.Infof("Starting server on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("Server failed: %v", err)
		}
	}()

	application.SetEnabled(true)
	if err := application.Start(); err != nil {
		logging.Errorf("Failed to start capture: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tray {
		runTray(ctx, application, settingsURL(cfg.HTTPAddr))
	} else {
		<-ctx.Done()
	}

	logging.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Warnf("Server shutdown: %v", err)
	}
}

// newSink returns the plugin volume sink, or a logging sink when the
// plugin cannot be resolved.
func newSink(cfg *config.Config) player.Sink {
	manager := plugin.NewManager(cfg.PluginDir)
	if err := manager.Discover(); err != nil {
		logging.Warnf("Plugin discovery failed: %v", err)
	}

	sink, err := player.NewPluginSink(manager, plugin.NewExecutor(cfg.PluginTimeout), cfg.VolumePlugin, cfg.VolumeAction)
	if err != nil {
		logging.Warnf("Volume plugin unavailable (%v), volume changes will only be logged", err)
		return player.LogSink{}
	}
	logging.Infof("Applying volume through plugin %s/%s", cfg.VolumePlugin, cfg.VolumeAction)
	return sink
}

// runTray blocks on the menu bar until Quit is clicked or ctx is done.
func runTray(ctx context.Context, application *app.App, url string) {
	t := tray.New()
	t.SetVolume(application.State().Volume)

	t.OnToggle(application.SetEnabled)
	t.OnSettings(func() {
		if err := exec.Command("open", url).Start(); err != nil {
			logging.Warnf("Failed to open settings: %v", err)
		}
	})
	application.OnDecision(func(d volume.Decision) {
		t.SetVolume(d.Volume)
	})

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
}

// settingsURL turns a listen address into a browsable URL.
func settingsURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and <dataDir>/web, returning the
// first existing directory or an empty string.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
