// Package cli implements the brandkit command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brandkit/pkg/buildinfo"
	"github.com/matzehuels/brandkit/pkg/cache"
	"github.com/matzehuels/brandkit/pkg/config"
	"github.com/matzehuels/brandkit/pkg/imgsrc"
	"github.com/matzehuels/brandkit/pkg/kitstore"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "brandkit"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "brandkit",
		Short:        "Brandkit applies brand overlays to images",
		Long:         `Brandkit manages per-user brand kits (logos, watermarks, contact cards) and bakes them onto images, one at a time or in batches.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "path to config file (default ~/.config/brandkit/config.toml)")

	// Register all subcommands
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.kitCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig reads the application config honoring the --config flag.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.ConfigPath)
}

// newStore builds the configured kit store, wrapped with the operation
// timeout.
func (c *CLI) newStore(ctx context.Context, cfg *config.Config) (kitstore.Store, error) {
	var (
		inner kitstore.Store
		err   error
	)
	switch cfg.Store.Backend {
	case "redis":
		inner, err = kitstore.NewRedisStore(ctx, cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
	case "mongo":
		inner, err = kitstore.NewMongoStore(ctx, cfg.Store.MongoURI)
	default:
		inner, err = kitstore.NewFileStore(cfg.Store.Dir)
	}
	if err != nil {
		return nil, err
	}
	return kitstore.WithTimeout(inner, cfg.StoreTimeout()), nil
}

// newDecoder builds the source decoder with an on-disk byte cache.
func (c *CLI) newDecoder(noCache bool) *imgsrc.Decoder {
	return imgsrc.NewDecoder(imgsrc.NewFetcher(newCache(noCache), imgsrc.WithFetchLogger(c.Logger)))
}

func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/brandkit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
