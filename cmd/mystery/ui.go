package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/mystery-engine/pkg/chat"
	"github.com/jwebster45206/mystery-engine/pkg/scenario"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

const (
	PlaceHolderText = "Type a command (help for a list)..."
	commandTimeout  = 2 * time.Second
)

const (
	speakerYou   = "You"
	speakerError = "error"
)

type consoleLine struct {
	speaker string
	text    string
}

// ConsoleUI is the BubbleTea model that runs the game.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	director     *state.Director
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	lines        []consoleLine
	ready        bool
	width        int
	height       int
	notice       string

	// Quit confirmation state
	showQuitModal bool
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	clueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(d *state.Director) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	sc := d.Session().Scenario()
	return ConsoleUI{
		director:     d,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		lines: []consoleLine{
			{speaker: chat.SpeakerSystem, text: sc.Story},
			{speaker: chat.SpeakerSystem, text: d.Look()},
		},
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.7) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 5
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.director))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleSlashCommand(input)
			}
			return m.runCommand(input)
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// runCommand sends one line of input to the director and shows the result.
func (m ConsoleUI) runCommand(input string) (tea.Model, tea.Cmd) {
	m.lines = append(m.lines, consoleLine{speaker: speakerYou, text: input})
	m.notice = ""

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	res, err := m.director.Handle(ctx, input)
	switch {
	case err != nil:
		m.lines = append(m.lines, consoleLine{speaker: speakerError, text: err.Error()})
	default:
		m.lines = append(m.lines, consoleLine{speaker: res.Speaker, text: res.Message})
	}

	m.writeChatContent()
	m.metaViewport.SetContent(writeMetadata(m.director))
	if err == nil && res.Quit {
		return m, tea.Quit
	}
	return m, nil
}

func (m ConsoleUI) handleSlashCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(input) {
	case "/copy":
		if err := clipboard.WriteAll(caseNotes(m.director)); err != nil {
			m.notice = errorStyle.Render("Could not copy: " + err.Error())
		} else {
			m.notice = narratorStyle.Render("Case notes copied to the clipboard.")
		}
	case "/help":
		m.lines = append(m.lines, consoleLine{speaker: chat.SpeakerSystem, text: state.HelpText + "\n  /copy                     copy your case notes"})
	default:
		m.notice = errorStyle.Render("Unknown command " + input)
	}
	m.writeChatContent()
	m.metaViewport.SetContent(writeMetadata(m.director))
	return m, nil
}

// caseNotes is the text placed on the clipboard by /copy.
func caseNotes(d *state.Director) string {
	var b strings.Builder
	b.WriteString(d.AnalyzeClues())
	b.WriteString("\n\nCONVERSATION\n")
	for _, e := range d.Session().Conversation().Entries() {
		fmt.Fprintf(&b, "[%s] %s: %s\n", e.Timestamp.Format("15:04:05"), e.Speaker, e.Message)
	}
	return b.String()
}

// writeChatContent rebuilds the chat pane for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(strings.ToUpper(m.director.Session().Scenario().Name)) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, l := range m.lines {
		content.WriteString(formatLine(l, chatWidth) + "\n\n")
	}
	if m.notice != "" {
		content.WriteString(m.notice + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func formatLine(l consoleLine, width int) string {
	switch l.speaker {
	case speakerYou:
		return userStyle.Render("You: ") + wordwrap.String(l.text, width-5)
	case speakerError:
		return errorStyle.Render(wordwrap.String(l.text, width))
	case chat.SpeakerSystem:
		return narratorStyle.Render(wordwrap.String(l.text, width))
	}

	// NPC lines arrive as "NAME: text".
	wrapped := wordwrap.String(l.text, width)
	if name, rest, ok := strings.Cut(wrapped, ":"); ok && name == l.speaker {
		if strings.HasPrefix(strings.TrimSpace(rest), "CLUE:") {
			rest = clueStyle.Render(rest)
		}
		return speakerStyle.Render(name+":") + rest
	}
	return wrapped
}

func writeMetadata(d *state.Director) string {
	gs := d.State()
	session := d.Session()
	room := d.CurrentRoom()

	var content strings.Builder
	content.WriteString(titleStyle.Render("CASE FILE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(gs.ID.String() + "\n\n")

	content.WriteString("Room:\n")
	content.WriteString(room.Name + "\n\n")

	content.WriteString("Exits:\n")
	for _, dir := range scenario.Directions {
		target := "---"
		if key, ok := room.Exit(dir); ok {
			target = session.Scenario().Rooms[key].Name
		}
		content.WriteString(fmt.Sprintf("• %s: %s\n", dir, target))
	}
	content.WriteString("\n")

	content.WriteString("People here:\n")
	npcs := d.NPCsHere()
	if len(npcs) == 0 {
		content.WriteString("None\n")
	}
	for _, n := range npcs {
		content.WriteString(fmt.Sprintf("• %s (%s)\n", n.Name, n.Status()))
	}
	content.WriteString("\n")

	content.WriteString(fmt.Sprintf("Clues: %d\n", len(session.Clues())))
	if gs.InDialogue {
		content.WriteString(fmt.Sprintf("Dialogue: ACTIVE (%s)\n", gs.ActiveNPC))
	} else {
		content.WriteString("Dialogue: INACTIVE\n")
	}
	if session.Resolved() {
		content.WriteString("Case: CLOSED\n")
	} else {
		content.WriteString("Case: OPEN\n")
	}

	content.WriteString("\n")
	content.WriteString("Keys:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Esc/Ctrl+C: Quit\n")
	content.WriteString("• /copy: Copy notes\n")

	return content.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	if m.director.Session().Resolved() {
		content.WriteString("The case is closed.")
	} else {
		content.WriteString("The thief is still out there. Leave anyway?")
	}
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
