package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"balance_insight/pkg/core/agent"
	"balance_insight/pkg/core/narrative"
	"balance_insight/pkg/core/session"
	"balance_insight/pkg/core/utils"
)

var chatCmd = &cobra.Command{
	Use:   "chat [FILE]",
	Short: "Interactive chat with the financial assistant",
	Long:  "Chat about a statement. Commands: /reset clears the log, /export writes it to a text file, /quit exits.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mgr := newManager(cfg)

	s := session.NewStore().Create()
	title := "no statement loaded"
	if len(args) == 1 {
		table, err := loadTable(context.Background(), cfg, args[0])
		if err != nil {
			return err
		}
		s.SetTable(args[0], table, time.Now())
		title = args[0]
	}

	m := newChatModel(mgr.Bridge(agent.PurposeChat), s, title, mgr.HasKey(agent.PurposeChat))
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

var (
	userStyle      = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	spinnerStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
)

type answerMsg struct{ out narrative.Outcome }

type chatModel struct {
	bridge  *narrative.Bridge
	session *session.Session
	title   string
	hasKey  bool

	input   textinput.Model
	spinner spinner.Model
	waiting bool
	status  string
	width   int
}

func newChatModel(b *narrative.Bridge, s *session.Session, title string, hasKey bool) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about the statement, or /reset /export /quit"
	ti.CharLimit = 2000
	ti.Width = 70
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := chatModel{bridge: b, session: s, title: title, hasKey: hasKey, input: ti, spinner: sp}
	if !hasKey {
		m.status = "API key not configured: set GEMINI_API_KEY or run `balancectl config setup`."
	}
	return m
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width-6)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			return m.submit()
		}

	case answerMsg:
		m.waiting = false
		m.session.Append(session.RoleAssistant, msg.out.Text)
		if !msg.out.OK() {
			m.status = "request failed: " + msg.out.Kind.String()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.status = ""

	switch text {
	case "":
		return m, nil
	case "/quit", "/exit":
		return m, tea.Quit
	case "/reset":
		m.session.ResetChat()
		m.status = "chat cleared"
		return m, nil
	case "/export":
		m.status = exportTranscript(m.session.Messages())
		return m, nil
	}

	if !m.hasKey {
		m.status = "API key not configured"
		return m, nil
	}

	m.session.Append(session.RoleUser, text)
	m.waiting = true
	bridge, tableContext := m.bridge, m.session.Context()
	ask := func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return answerMsg{out: bridge.AnswerOutcome(ctx, text, tableContext)}
	}
	return m, tea.Batch(ask, m.spinner.Tick)
}

func exportTranscript(msgs []session.ChatMessage) string {
	if len(msgs) == 0 {
		return "nothing to export"
	}
	name := session.TranscriptFilename(time.Now())
	if err := os.WriteFile(name, []byte(session.ExportTranscript(msgs)), 0o644); err != nil {
		return "export failed: " + err.Error()
	}
	return "saved " + name
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle("FINANCIAL ASSISTANT  " + m.title))
	b.WriteString("\n\n")

	for _, msg := range m.session.Messages() {
		if msg.Role == session.RoleUser {
			b.WriteString(userStyle.Render("You"))
		} else {
			b.WriteString(assistantStyle.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(utils.PlainText(msg.Content))
		b.WriteString("\n\n")
	}

	if m.waiting {
		b.WriteString(m.spinner.View())
		b.WriteString(mutedStyle.Render(" thinking..."))
		b.WriteString("\n\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d messages  •  esc to quit", len(m.session.Messages()))))
	return b.String()
}
