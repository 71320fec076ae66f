package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brandkit/pkg/batch"
	"github.com/matzehuels/brandkit/pkg/compose"
	"github.com/matzehuels/brandkit/pkg/errors"
)

// batchCommand creates the "batch" command: bake a kit onto several images.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		user        string
		kitFile     string
		outDir      string
		concurrency int
		square      bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "batch <image>...",
		Short: "Bake a brand kit onto several images concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			appCfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if concurrency > 0 {
				appCfg.Batch.Concurrency = concurrency
			}

			kit, err := c.resolveKit(ctx, appCfg, user, kitFile)
			if err != nil {
				return err
			}

			targets := make([]batch.Target, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return errors.Wrap(errors.ErrCodeFileNotFound, err, "read image %s", path)
				}
				targets = append(targets, batch.Target{Name: path, Data: data})
			}

			decoder := c.newDecoder(noCache)
			compositor := compose.New(decoder,
				compose.WithMapper(appCfg.Mapper()),
				compose.WithLogger(c.Logger),
			)
			orchestrator := batch.New(compositor,
				batch.WithConcurrency(appCfg.Batch.Concurrency),
				batch.WithMaxImages(appCfg.Batch.MaxImages),
				batch.WithAutoSquareCrop(square || appCfg.Batch.AutoSquareCrop),
				batch.WithLogger(c.Logger),
			)

			sp := newSpinnerWithContext(ctx, fmt.Sprintf("Branding %d images", len(targets)))
			sp.Start()
			p := newProgress(c.Logger)

			results, err := orchestrator.Run(ctx, targets, kit)
			if err != nil {
				sp.StopWithError("Batch failed")
				return err
			}
			sp.Stop()
			if sp.Cancelled() {
				printWarning("Batch interrupted")
			}

			if outDir != "" {
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return errors.Wrap(errors.ErrCodePersistence, err, "create output dir")
				}
			}

			failed := 0
			for _, res := range results {
				if res.Failed() {
					failed++
					printError("%s: %s", res.Name, errors.UserMessage(res.Err))
					continue
				}
				out := batchOutputName(outDir, res.Name)
				if err := imaging.Save(res.Image, out); err != nil {
					failed++
					printError("%s: save failed: %v", res.Name, err)
					continue
				}
				printSuccess("%s", res.Name)
				printFile(out)
				for _, warn := range res.Warnings {
					printDetail("skipped element %s", warn.ElementID)
				}
			}
			p.done(fmt.Sprintf("Branded %d/%d images", len(results)-failed, len(results)))
			if failed > 0 {
				printWarning("%d images failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "load the kit for this user from the store")
	cmd.Flags().StringVarP(&kitFile, "kit", "k", "", "load the kit from a local JSON file instead of the store")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "directory for branded images (default alongside inputs)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "images processed at once (default from config)")
	cmd.Flags().BoolVar(&square, "square", false, "crop each image to a centered square before branding")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the source image cache")
	return cmd
}

// batchOutputName derives the output path for one branded batch image.
func batchOutputName(outDir, input string) string {
	name := outputName(input)
	if outDir == "" {
		return name
	}
	return filepath.Join(outDir, filepath.Base(name))
}
