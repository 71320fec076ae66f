package cli

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brandkit/pkg/errors"
	"github.com/matzehuels/brandkit/pkg/preview"
)

// previewCommand creates the "preview" command: render an editor-style view
// of a kit on a blank canvas.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		user     string
		kitFile  string
		out      string
		selected string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render an editor-style preview of a brand kit",
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

			decoder := c.newDecoder(noCache)

			// Warm the size cache so selection chrome has geometry.
			urls := make([]string, 0, kit.Len())
			for _, el := range kit.Elements() {
				urls = append(urls, el.SourceURL)
			}
			for _, err := range decoder.Measure(ctx, urls...) {
				if err != nil {
					printWarning("%s", errors.UserMessage(err))
				}
			}

			renderer := preview.New(decoder, decoder, appCfg.Mapper())
			img, warnings, err := renderer.Render(ctx, kit, selected)
			if err != nil {
				return err
			}
			for _, warn := range warnings {
				printWarning("Skipped element %s: %s", warn.ElementID, errors.UserMessage(warn.Err))
			}

			if err := imaging.Save(img, out); err != nil {
				return errors.Wrap(errors.ErrCodePersistence, err, "save %s", out)
			}
			printSuccess("Wrote preview of %d elements", kit.Len())
			printFile(out)
			printNextStep("Apply the kit", fmt.Sprintf("brandkit apply -u %s <image>", user))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "load the kit for this user from the store")
	cmd.Flags().StringVarP(&kitFile, "kit", "k", "", "load the kit from a local JSON file instead of the store")
	cmd.Flags().StringVarP(&out, "out", "o", "preview.png", "output path")
	cmd.Flags().StringVar(&selected, "selected", "", "element ID to draw selection chrome for")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the source image cache")
	return cmd
}
