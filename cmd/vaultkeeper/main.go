// Command vaultkeeper is the terminal front-end to a host password-
// manager CLI. It wires the config loader, the
// structured logger, the host-CLI adapter, every cache, the session
// store, and the tcell-driven UI into one cobra root command.
//
// Grounded on pass-cli's cobra root-command pattern: a single Run closure
// that does all startup wiring inline rather than a tree of subcommands,
// since this tool has exactly one mode of operation.
package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/vaultkeeper/internal/appstate"
	"github.com/blackwell-systems/vaultkeeper/internal/clipboard"
	"github.com/blackwell-systems/vaultkeeper/internal/config"
	"github.com/blackwell-systems/vaultkeeper/internal/dispatch"
	"github.com/blackwell-systems/vaultkeeper/internal/hostcli"
	"github.com/blackwell-systems/vaultkeeper/internal/logging"
	"github.com/blackwell-systems/vaultkeeper/internal/metacache"
	"github.com/blackwell-systems/vaultkeeper/internal/prefetch"
	"github.com/blackwell-systems/vaultkeeper/internal/secretcache"
	"github.com/blackwell-systems/vaultkeeper/internal/session"
	"github.com/blackwell-systems/vaultkeeper/internal/ui"
)

// appName names every per-OS directory this tool touches.
const appName = "vaultkeeper"

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string

	root := &cobra.Command{
		Use:           appName,
		Short:         "A keyboard-driven terminal front-end for a host password-manager CLI",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launch(configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", defaultConfigPath(), "path to config.toml")
	root.SetArgs(os.Args[1:])

	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}
	return lastExitCode
}

// lastExitCode is set by launch before returning, since cobra's Execute
// only reports error/no-error, not the finer exit codes this design
// requires (1 host tool missing, 2 not logged in, 3 unlock cancelled, 4
// unrecoverable runtime error).
var lastExitCode int

func exitCodeFor(err error) int {
	if lastExitCode != 0 {
		return lastExitCode
	}
	return 4
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, appName, "config.toml")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, appName)
}

func defaultDotDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}

func launch(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		lastExitCode = 4
		return err
	}

	logPath := cfg.LogPath
	if logPath == "" {
		logPath = filepath.Join(defaultCacheDir(), "vaultkeeper.log")
	}
	log, closer, err := logging.New(logPath, cfg.LogLevel)
	if err != nil {
		lastExitCode = 4
		return err
	}
	defer closer.Close()

	adapter := hostcli.New("bw").WithLogger(log)
	ctx := context.Background()
	if err := adapter.Probe(ctx); err != nil {
		lastExitCode = 1
		return err
	}

	secrets := secretcache.NewSecretCache(secretcache.DefaultTTL)
	totps := secretcache.NewTotpCache(secretcache.TotpTTL)
	metaStore := metacache.New(defaultCacheDir())
	sessionStore := session.New(defaultDotDir())
	clip := clipboard.New(cfg.ClipboardTimeout)
	defer clip.Stop()

	prefetcher := prefetch.New(secrets, adapter, log)
	defer prefetcher.Close()

	filterMode := appstate.FilterExact
	if cfg.FuzzyMatching {
		filterMode = appstate.FilterFuzzy
	}
	state := appstate.New(appstate.TextFilterer{Mode: filterMode, CaseSensitive: cfg.CaseSensitive})

	d := dispatch.New(state, adapter, secrets, totps, metaStore, sessionStore, prefetcher, clip, log, dispatch.Config{
		AccountID: "default",
		CacheTTL:  cfg.CacheTTL,
	})

	if err := d.Startup(ctx); err != nil {
		if _, code := d.ShouldExit(); code != 0 {
			lastExitCode = code
		}
		if lastExitCode == 0 {
			lastExitCode = 4
		}
		return err
	}
	if exit, code := d.ShouldExit(); exit {
		lastExitCode = code
		return nil
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		lastExitCode = 4
		return err
	}
	if err := screen.Init(); err != nil {
		lastExitCode = 4
		return err
	}
	defer screen.Fini()

	source := ui.NewEventSource(screen)
	defer source.Close()

	for ev := range source.Events() {
		if effect := d.Handle(ctx, ev); effect != nil {
			// Run synchronously: the adapter call this guards is already
			// off the render path by virtue of being invoked from the
			// owning goroutine between renders, matching this
			// "awaiting the host-CLI adapter during a secret cache miss"
			// suspension point.
			effect()
		}
		ui.Render(screen, state)
		if exit, code := d.ShouldExit(); exit {
			lastExitCode = code
			break
		}
	}
	return nil
}

var _ = runtime.GOOS // referenced so build-tagged session stores stay linked in
