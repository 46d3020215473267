package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/app"
	"github.com/wilbur182/docchat/internal/config"
	"github.com/wilbur182/docchat/internal/features"
	"github.com/wilbur182/docchat/internal/keymap"
	"github.com/wilbur182/docchat/internal/markdown"
	"github.com/wilbur182/docchat/internal/notify"
	"github.com/wilbur182/docchat/internal/plugin"
	"github.com/wilbur182/docchat/internal/plugins/chat"
	"github.com/wilbur182/docchat/internal/plugins/docbrowser"
	"github.com/wilbur182/docchat/internal/plugins/settingsview"
	"github.com/wilbur182/docchat/internal/styles"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath     = flag.String("config", "", "path to config file")
	apiURL         = flag.String("api", "", "backend base URL (overrides config)")
	initialTab     = flag.String("tab", "", "tab to open: chat, documents or settings")
	debugFlag      = flag.Bool("debug", false, "enable debug logging")
	versionFlag    = flag.Bool("version", false, "print version and exit")
	shortVersion   = flag.Bool("v", false, "print version and exit (short)")
	enableFeature  = flag.String("enable-feature", "", "comma-separated feature flags to enable")
	disableFeature = flag.String("disable-feature", "", "comma-separated feature flags to disable")
)

func main() {
	flag.Parse()

	if *versionFlag || *shortVersion {
		fmt.Printf("docchat version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "docchat needs an interactive terminal")
		os.Exit(1)
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	// The flag goes through the environment so config reloads keep it.
	if *apiURL != "" {
		_ = os.Setenv(config.EnvAPIURL, *apiURL)
	}

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(config.ExpandPath(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := setupLogging(cfg.Log, *debugFlag)
	defer closeLog()
	slog.SetDefault(logger)

	features.Init(cfg)
	applyFeatureFlags(*enableFeature, true)
	applyFeatureFlags(*disableFeature, false)
	styles.ApplyTheme(cfg.UI.Theme.Name)

	// Keymap first: plugins register bindings during Init.
	km := keymap.NewRegistry()
	center := notify.New()

	pluginCtx := &plugin.Context{
		Config:   cfg,
		API:      api.New(cfg.API.URL, cfg.API.Timeout),
		Notifier: center,
		Markdown: markdown.NewRenderer(),
		Logger:   logger,
		Keymap:   km,
	}
	registry := plugin.NewRegistry(pluginCtx)

	// Registration order is tab order.
	_ = registry.Register(chat.New())
	_ = registry.Register(docbrowser.New())
	_ = registry.Register(settingsview.New())
	for id, reason := range registry.Unavailable() {
		logger.Warn("plugin disabled", "id", id, "reason", reason)
	}

	model := app.New(registry, km, center, cfg, effectiveVersion(Version), *initialTab)

	watcher, err := config.NewWatcher(config.ExpandPath(path))
	if err != nil {
		logger.Warn("config hot reload unavailable", "path", path, "err", err)
	} else {
		defer watcher.Stop()
		model.WatchConfig(watcher.Listen)
	}

	logger.Info("starting", "version", effectiveVersion(Version), "api", cfg.API.URL)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := p.Run()
	registry.Stop()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", runErr)
		os.Exit(1)
	}
}

// setupLogging writes to a rotating file. The terminal belongs to the UI, so
// with no log path configured everything is discarded.
func setupLogging(lc config.LogConfig, debugMode bool) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	var out io.Writer = io.Discard
	closer := func() {}
	if lc.Path != "" {
		if err := os.MkdirAll(filepath.Dir(lc.Path), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log directory: %v\n", err)
		} else {
			lj := &lumberjack.Logger{
				Filename:   lc.Path,
				MaxSize:    lc.MaxSizeMB,
				MaxBackups: lc.MaxBackups,
			}
			out = lj
			closer = func() { _ = lj.Close() }
		}
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closer
}

func applyFeatureFlags(list string, enabled bool) {
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !features.IsKnownFeature(name) {
			fmt.Fprintf(os.Stderr, "Warning: unknown feature %q\n", name)
			continue
		}
		features.SetOverride(name, enabled)
	}
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision == "" {
		return "devel"
	}
	ver := "devel+" + revision
	if len(ver) > 20 {
		ver = ver[:20]
	}
	if dirty {
		ver += "+dirty"
	}
	return ver
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: docchat [options]\n\n")
		fmt.Fprintf(os.Stderr, "A terminal client for chatting with your documents.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
