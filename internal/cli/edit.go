package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/canvas"
	"github.com/matzehuels/brandkit/pkg/editor"
	"github.com/matzehuels/brandkit/pkg/errors"
	"github.com/matzehuels/brandkit/pkg/kitstore"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	editMoveStep   = 10.0
	editRotateStep = 5.0
	editScaleStep  = 0.1
)

// editCommand creates the "edit" command: interactive kit editing.
func (c *CLI) editCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a user's brand kit interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			appCfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.newStore(ctx, appCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			kit, err := store.Load(ctx, user)
			if err != nil {
				if !errors.Is(err, errors.ErrCodeKitNotFound) {
					return err
				}
				kit = brand.NewConfig()
			}

			model := newEditModel(ctx, store, user, kit)
			final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(editModel); ok && m.dirty {
				printWarning("Quit without saving, changes discarded")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user whose kit to edit")
	cmd.MarkFlagRequired("user")
	return cmd
}

// editModel is the bubbletea model for interactive kit editing.
type editModel struct {
	ctx     context.Context
	store   kitstore.Store
	user    string
	session *editor.Session
	status  string
	dirty   bool
}

func newEditModel(ctx context.Context, store kitstore.Store, user string, kit *brand.Config) editModel {
	session := editor.NewSession(kit)
	if kit.Len() > 0 {
		session.Select(kit.Elements()[0].ID)
	}
	return editModel{
		ctx:     ctx,
		store:   store,
		user:    user,
		session: session,
	}
}

func (m editModel) Init() tea.Cmd {
	return nil
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		m.cycleSelection(1)
	case "shift+tab":
		m.cycleSelection(-1)

	case "up":
		m.nudge(0, -editMoveStep)
	case "down":
		m.nudge(0, editMoveStep)
	case "left":
		m.nudge(-editMoveStep, 0)
	case "right":
		m.nudge(editMoveStep, 0)

	case "r":
		m.rotate(editRotateStep)
	case "R":
		m.rotate(-editRotateStep)

	case "+", "=":
		m.rescale(editScaleStep)
	case "-":
		m.rescale(-editScaleStep)

	case "d", "delete", "backspace":
		if id := m.session.DeleteSelected(); id != "" {
			m.status = fmt.Sprintf("deleted %s", id)
			m.dirty = true
		}

	case "s":
		if err := m.store.Save(m.ctx, m.user, m.session.Config()); err != nil {
			m.status = "save failed: " + errors.UserMessage(err)
		} else {
			m.status = "saved"
			m.dirty = false
		}
	}
	return m, nil
}

func (m *editModel) cycleSelection(dir int) {
	cfg := m.session.Config()
	if cfg.Len() == 0 {
		return
	}
	idx := cfg.IndexOf(m.session.SelectedID())
	idx = (idx + dir + cfg.Len()) % cfg.Len()
	m.session.Select(cfg.Elements()[idx].ID)
}

func (m *editModel) nudge(dx, dy float64) {
	el := m.session.Selected()
	if el == nil {
		return
	}
	el.MoveTo(canvas.Point{X: el.Position.X + dx, Y: el.Position.Y + dy})
	m.dirty = true
}

func (m *editModel) rotate(deg float64) {
	el := m.session.Selected()
	if el == nil {
		return
	}
	el.SetRotation(el.Rotation + deg)
	m.dirty = true
}

func (m *editModel) rescale(delta float64) {
	el := m.session.Selected()
	if el == nil {
		return
	}
	el.SetScale(el.Scale + delta)
	m.dirty = true
}

func (m editModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Editing brand kit for %s", m.user)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab select  arrows move  r/R rotate  +/- scale  d delete  s save  q quit"))
	b.WriteString("\n\n")

	cfg := m.session.Config()
	if cfg.Len() == 0 {
		b.WriteString(listDimStyle.Render("  (empty kit)"))
		b.WriteString("\n")
	}
	for _, el := range cfg.Elements() {
		cursor := "  "
		line := fmt.Sprintf("%-12s %s", el.Type, el.SourceURL)
		if el.ID == m.session.SelectedID() {
			cursor = "▸ "
			b.WriteString(listSelectedStyle.Render(cursor + line))
		} else {
			b.WriteString(listNormalStyle.Render(cursor + line))
		}
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("    (%.0f, %.0f)  scale %.2f  rotation %.1f°  opacity %.2f",
			el.Position.X, el.Position.Y, el.Scale, el.Rotation, el.Opacity)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(StyleSuccess.Render("  " + m.status))
		b.WriteString("\n")
	}
	if m.dirty {
		b.WriteString(StyleWarning.Render("  unsaved changes"))
		b.WriteString("\n")
	}
	return b.String()
}
