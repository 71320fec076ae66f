package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/canvas"
	"github.com/matzehuels/brandkit/pkg/errors"
	"github.com/matzehuels/brandkit/pkg/kitstore"
)

// kitCommand creates the kit management command group.
func (c *CLI) kitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kit",
		Short: "Manage a user's brand kit",
	}

	cmd.AddCommand(c.kitListCommand())
	cmd.AddCommand(c.kitAddCommand())
	cmd.AddCommand(c.kitRemoveCommand())
	cmd.AddCommand(c.kitClearCommand())

	return cmd
}

// withStore loads the config, opens the store, runs fn, and closes the store.
func (c *CLI) withStore(cmd *cobra.Command, fn func(store kitstore.Store) error) error {
	appCfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store, err := c.newStore(cmd.Context(), appCfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// kitListCommand creates the "kit list" subcommand.
func (c *CLI) kitListCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the elements in a user's kit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store kitstore.Store) error {
				kit, err := store.Load(cmd.Context(), user)
				if err != nil {
					if errors.Is(err, errors.ErrCodeKitNotFound) {
						printInfo("No kit saved for %s", user)
						printNextStep("Add an element", fmt.Sprintf("brandkit kit add -u %s --type logo --source <url>", user))
						return nil
					}
					return err
				}

				fmt.Println(StyleTitle.Render(fmt.Sprintf("Brand kit for %s", user)))
				for i, el := range kit.Elements() {
					fmt.Printf("%s %s\n", StyleDim.Render(fmt.Sprintf("%d.", i+1)), StyleHighlight.Render(el.ID))
					printKeyValue("type", el.Type)
					printKeyValue("source", el.SourceURL)
					printKeyValue("position", fmt.Sprintf("(%.0f, %.0f)", el.Position.X, el.Position.Y))
					printKeyValue("transform", fmt.Sprintf("scale %.2f, rotation %.1f°, opacity %.2f", el.Scale, el.Rotation, el.Opacity))
				}
				printDetail("%d elements", kit.Len())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user whose kit to show")
	cmd.MarkFlagRequired("user")
	return cmd
}

// kitAddCommand creates the "kit add" subcommand.
func (c *CLI) kitAddCommand() *cobra.Command {
	var (
		user     string
		elemType string
		source   string
		x, y     float64
		scale    float64
		rotation float64
		opacity  float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an element to a user's kit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store kitstore.Store) error {
				ctx := cmd.Context()
				kit, err := store.Load(ctx, user)
				if err != nil {
					if !errors.Is(err, errors.ErrCodeKitNotFound) {
						return err
					}
					kit = brand.NewConfig()
				}

				el := brand.NewElement(elemType, source)
				if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
					el.MoveTo(canvas.Point{X: x, Y: y})
				}
				el.SetScale(scale)
				el.SetRotation(rotation)
				el.Opacity = opacity

				if err := kit.Add(el); err != nil {
					return err
				}
				if err := store.Save(ctx, user, kit); err != nil {
					return err
				}
				printSuccess("Added %s element %s", el.Type, el.ID)
				printDetail("kit now has %d elements", kit.Len())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user whose kit to modify")
	cmd.Flags().StringVarP(&elemType, "type", "t", brand.TypeLogo, "element type (logo, watermark, contactInfo)")
	cmd.Flags().StringVarP(&source, "source", "s", "", "image URL or local path for the element")
	cmd.Flags().Float64Var(&x, "x", canvas.DefaultWidth/2, "canvas x position")
	cmd.Flags().Float64Var(&y, "y", canvas.DefaultHeight/2, "canvas y position")
	cmd.Flags().Float64Var(&scale, "scale", 1.0, "element scale")
	cmd.Flags().Float64Var(&rotation, "rotation", 0, "rotation in degrees")
	cmd.Flags().Float64Var(&opacity, "opacity", 1.0, "opacity from 0 to 1")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("source")
	return cmd
}

// kitRemoveCommand creates the "kit remove" subcommand.
func (c *CLI) kitRemoveCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "remove <elementID>",
		Short: "Remove an element from a user's kit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store kitstore.Store) error {
				ctx := cmd.Context()
				kit, err := store.Load(ctx, user)
				if err != nil {
					return err
				}
				if !kit.Remove(args[0]) {
					return errors.New(errors.ErrCodeNotFound, "no element %s in kit", args[0])
				}
				if err := store.Save(ctx, user, kit); err != nil {
					return err
				}
				printSuccess("Removed element %s", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user whose kit to modify")
	cmd.MarkFlagRequired("user")
	return cmd
}

// kitClearCommand creates the "kit clear" subcommand.
func (c *CLI) kitClearCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all elements from a user's kit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store kitstore.Store) error {
				if err := store.Save(cmd.Context(), user, brand.NewConfig()); err != nil {
					return err
				}
				printSuccess("Cleared kit for %s", user)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user whose kit to clear")
	cmd.MarkFlagRequired("user")
	return cmd
}
