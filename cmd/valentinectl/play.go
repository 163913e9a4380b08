package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"valentine/internal/config"
	"valentine/internal/flow"
	"valentine/internal/payload"
)

var (
	playServer  string
	playContent string
)

// playCmd opens a link in the terminal, driving the same state machine as
// the browser with touch behavior.
var playCmd = &cobra.Command{
	Use:   "play <url>",
	Short: "Open an invitation link in the terminal",
	Long: `Open an invitation link in the terminal.

Keys: y accept, n decline, c create a new link, b back, q quit.

With --server, lifecycle events are sent to that server's session API.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playServer, "server", "", "base URL of a server to report events to")
	playCmd.Flags().StringVar(&playContent, "content", "config.yaml", "content file with decline phrases")
}

// terminalBounds stands in for the measured layout; a terminal has no
// pointer so only the touch policy applies.
var terminalBounds = flow.Bounds{ContainerWidth: 400, ContainerHeight: 300, ControlWidth: 120, ControlHeight: 48}

func runPlay(cmd *cobra.Command, args []string) error {
	link, err := url.Parse(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}
	content, err := config.LoadContent(playContent)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	var events *apiEvents
	cfg := flow.ViewerConfig{
		Query:   link.Query(),
		Surface: flow.SurfaceTouch,
		Phrases: content.DeclinePhrases,
	}
	if playServer != "" {
		events = newAPIEvents(playServer)
		cfg.Events = events
	}

	m := newPlayModel(cfg, flow.NewMemoryHistory(link.Path))
	defer m.viewer.Close()

	_, err = tea.NewProgram(m).Run()
	if events != nil {
		events.Wait()
	}
	return err
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	yesStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("162")).Padding(0, 2)
	noStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("162")).Background(lipgloss.Color("225")).Padding(0, 2)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	heartStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(1, 3)
)

// celebration records that the acceptance effects should play.
type celebration struct {
	inv payload.Invitation
	at  time.Time
}

func (c *celebration) Celebrate(inv payload.Invitation) {
	c.inv = inv
	c.at = time.Now()
}

type playModel struct {
	viewer  *flow.Viewer
	history *flow.MemoryHistory
	party   *celebration
	status  string
}

func newPlayModel(cfg flow.ViewerConfig, history *flow.MemoryHistory) *playModel {
	party := &celebration{}
	cfg.Celebrator = party
	cfg.History = history

	return &playModel{
		viewer:  flow.NewViewer(cfg),
		history: history,
		party:   party,
	}
}

func (m *playModel) Init() tea.Cmd { return nil }

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.status = ""
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "y":
		if !m.viewer.Accept() {
			m.status = "Nothing to accept here."
		}
	case "n":
		if !m.viewer.DeclineInteraction(terminalBounds) {
			m.status = "There is no \"no\" anymore."
		}
	case "c":
		m.viewer.RequestNewLink()
	case "b":
		if !m.history.Back() {
			m.status = "Already at the first page."
		}
	}
	return m, nil
}

func (m *playModel) View() string {
	var b strings.Builder
	inv, _ := m.viewer.Invitation()

	switch m.viewer.Screen() {
	case flow.ScreenCreate:
		b.WriteString(titleStyle.Render("Create a link"))
		b.WriteString("\n")
		b.WriteString("Run: valentinectl link --to <name> --from <name>")
	case flow.ScreenMissingName:
		b.WriteString(titleStyle.Render("This link is missing a name"))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Press c to create your own."))
	case flow.ScreenInvitation:
		b.WriteString(titleStyle.Render(inv.To + ", will you be my valentine?"))
		b.WriteString("\n")
		b.WriteString(yesStyle.Render("Yes"))
		if d := m.viewer.Decline(); d != nil && d.Renderable() {
			b.WriteString("   ")
			b.WriteString(renderDecline(d))
		}
	case flow.ScreenAccepted:
		b.WriteString(titleStyle.Render("Yay!"))
		b.WriteString("\n")
		b.WriteString(heartStyle.Render(strings.Repeat("♥ ", 12)))
		if inv.From != "" {
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render("From " + inv.From))
		}
	}

	help := "y yes · n no · c create · b back · q quit"
	if m.status != "" {
		help = m.status
	}
	return borderStyle.Render(b.String()) + "\n" + mutedStyle.Render(help) + "\n"
}

// renderDecline draws the decline control, padding shrinking with its scale.
func renderDecline(d *flow.DeclineControl) string {
	style := noStyle
	if d.Scale() < 1 {
		pad := int(d.Scale() * 2)
		style = style.Padding(0, pad).Faint(d.Scale() < 0.5)
	}
	return style.Render(d.Label())
}
