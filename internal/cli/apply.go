package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/compose"
	"github.com/matzehuels/brandkit/pkg/config"
	"github.com/matzehuels/brandkit/pkg/errors"
)

// applyCommand creates the "apply" command: bake a kit onto one image.
func (c *CLI) applyCommand() *cobra.Command {
	var (
		user    string
		kitFile string
		out     string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "apply <image>",
		Short: "Bake a brand kit onto a single image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			appCfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			kit, err := c.resolveKit(ctx, appCfg, user, kitFile)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "read image %s", args[0])
			}
			target, err := compose.DecodeTargetBytes(data)
			if err != nil {
				return err
			}

			decoder := c.newDecoder(noCache)
			compositor := compose.New(decoder,
				compose.WithMapper(appCfg.Mapper()),
				compose.WithLogger(c.Logger),
			)

			sp := newSpinnerWithContext(ctx, fmt.Sprintf("Applying %d elements", kit.Len()))
			sp.Start()
			p := newProgress(c.Logger)

			result, warnings, err := compositor.Composite(ctx, target, kit)
			if err != nil {
				sp.StopWithError("Composite failed")
				return err
			}
			sp.Stop()
			p.done(fmt.Sprintf("Applied %d elements", kit.Len()-len(warnings)))

			for _, warn := range warnings {
				printWarning("Skipped element %s: %s", warn.ElementID, errors.UserMessage(warn.Err))
			}

			if out == "" {
				out = outputName(args[0])
			}
			if err := imaging.Save(result, out); err != nil {
				return errors.Wrap(errors.ErrCodePersistence, err, "save %s", out)
			}
			printSuccess("Wrote branded image")
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "load the kit for this user from the store")
	cmd.Flags().StringVarP(&kitFile, "kit", "k", "", "load the kit from a local JSON file instead of the store")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default <image>_branded.png)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the source image cache")
	return cmd
}

// resolveKit loads the kit from a local file when given, otherwise from the
// configured store. A missing stored kit degrades to an empty kit so apply
// still runs.
func (c *CLI) resolveKit(ctx context.Context, appCfg *config.Config, user, kitFile string) (*brand.Config, error) {
	if kitFile != "" {
		data, err := os.ReadFile(kitFile)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read kit file %s", kitFile)
		}
		kit, dropped, err := brand.Decode(data)
		if err != nil {
			return nil, err
		}
		for _, d := range dropped {
			printWarning("Dropped invalid element %s: %s", d.ID, d.Reason)
		}
		return kit, nil
	}
	if user == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "either --user or --kit is required")
	}

	store, err := c.newStore(ctx, appCfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	kit, err := store.Load(ctx, user)
	if err != nil {
		if errors.Is(err, errors.ErrCodeKitNotFound) {
			printInfo("No kit saved for %s, applying nothing", user)
			return brand.NewConfig(), nil
		}
		return nil, err
	}
	return kit, nil
}

// outputName derives the default output path for a branded image.
func outputName(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + "_branded.png"
}
