package cmd

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ThatCatDev/modelinspect/internal/daemon"
	"github.com/ThatCatDev/modelinspect/internal/format"
	"github.com/ThatCatDev/modelinspect/internal/session"
)

const noticeTTL = 5 * time.Second

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive model inspector (default)",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The terminal belongs to tview; logs only go to --log-file.
	_, log, client, closeLog, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer closeLog()

	t := newTuiApp(daemon.New(client, log), log)
	t.ctrl.Start(cmd.Context())
	t.setModels(t.ctrl.Models())
	return t.run()
}

// tuiApp is the terminal front end of one session.
type tuiApp struct {
	app      *tview.Application
	rootFlex *tview.Flex // horizontal: sidebar + vDiv + mainFlex

	modelSelect *tview.DropDown
	submitBtn   *tview.Button

	submittedView *tview.TextView
	promptView    *tview.TextView
	configView    *tview.TextView
	statusBar     *tview.TextView

	focusables []tview.Primitive
	focusIdx   int

	// UI goroutine only.
	processing   bool
	ctrlCPending bool

	mu       sync.Mutex
	noticeID int

	ctrl *session.Controller
	log  zerolog.Logger
}

func newTuiApp(d session.Daemon, log zerolog.Logger) *tuiApp {
	t := &tuiApp{log: log}
	t.ctrl = session.New(d, session.NotifierFunc(t.notify), log)
	t.ctrl.Subscribe(func(s session.State) {
		t.app.QueueUpdateDraw(func() {
			t.render(s)
			t.processing = false
		})
	})

	t.app = tview.NewApplication()

	selectLabel := tview.NewTextView().SetText("Select a Model:")
	t.modelSelect = tview.NewDropDown().
		SetFieldBackgroundColor(tcell.ColorDefault).
		SetFieldWidth(32)
	t.submitBtn = tview.NewButton("Submit Model").SetSelectedFunc(t.handleSubmit)

	sidebar := tview.NewFlex().SetDirection(tview.FlexRow)
	sidebar.AddItem(selectLabel, 1, 0, false)
	sidebar.AddItem(t.modelSelect, 1, 0, true)
	sidebar.AddItem(tview.NewBox(), 1, 0, false)
	sidebar.AddItem(t.submitBtn, 1, 0, false)
	sidebar.AddItem(tview.NewBox(), 0, 1, false)
	sidebar.SetBorderPadding(1, 1, 1, 1)

	t.submittedView = newPane("Submitted Model")
	t.promptView = newPane("System Prompt")
	t.configView = newPane("Model Config")

	t.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow)
	mainFlex.AddItem(t.submittedView, 3, 0, false)
	mainFlex.AddItem(t.promptView, 0, 1, false)
	mainFlex.AddItem(t.configView, 0, 2, false)
	mainFlex.AddItem(newHDivider(), 1, 0, false)
	mainFlex.AddItem(t.statusBar, 1, 0, false)

	t.rootFlex = tview.NewFlex().SetDirection(tview.FlexColumn)
	t.rootFlex.AddItem(sidebar, 36, 0, true)
	t.rootFlex.AddItem(newVDivider(), 1, 0, false)
	t.rootFlex.AddItem(mainFlex, 0, 1, false)

	t.focusables = []tview.Primitive{t.modelSelect, t.submitBtn, t.promptView, t.configView}

	t.render(t.ctrl.State())
	t.setupInputCapture()

	return t
}

func newPane(title string) *tview.TextView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" " + title + " ").SetTitleAlign(tview.AlignLeft)
	return tv
}

// newHDivider creates a 1-row box that draws a horizontal line.
func newHDivider() *tview.Box {
	box := tview.NewBox()
	box.SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
		style := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
		for cx := x; cx < x+width; cx++ {
			screen.SetContent(cx, y, tcell.RuneHLine, nil, style)
		}
		return x, y, width, height
	})
	return box
}

// newVDivider creates a 1-col box that draws a vertical line.
func newVDivider() *tview.Box {
	box := tview.NewBox()
	box.SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
		style := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
		for cy := y; cy < y+height; cy++ {
			screen.SetContent(x, cy, tcell.RuneVLine, nil, style)
		}
		return x, y, width, height
	})
	return box
}

func (t *tuiApp) run() error {
	return t.app.SetRoot(t.rootFlex, true).EnableMouse(true).SetFocus(t.modelSelect).Run()
}

func (t *tuiApp) setModels(models []string) {
	t.modelSelect.SetOptions(models, nil)
	if len(models) == 0 {
		t.showNotice(session.Notification{Level: session.LevelInfo, Message: "No models installed."})
		return
	}
	t.modelSelect.SetCurrentOption(0)
}

// ── Input Capture ──────────────────────────────────────────────────────

func (t *tuiApp) setupInputCapture() {
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() != tcell.KeyCtrlC {
			t.ctrlCPending = false
		}

		switch event.Key() {
		case tcell.KeyCtrlC:
			if t.ctrlCPending {
				t.app.Stop()
				return nil
			}
			t.ctrlCPending = true
			t.statusBar.SetText("[gray::-]Press Ctrl+C again to quit.[-:-:-]")
			return nil

		case tcell.KeyCtrlD:
			t.app.Stop()
			return nil

		case tcell.KeyTab:
			t.cycleFocus(1)
			return nil
		case tcell.KeyBacktab:
			t.cycleFocus(-1)
			return nil

		case tcell.KeyPgUp:
			t.scrollFocusedPane(-10)
			return nil
		case tcell.KeyPgDn:
			t.scrollFocusedPane(10)
			return nil
		}

		return event
	})
}

func (t *tuiApp) cycleFocus(delta int) {
	n := len(t.focusables)
	t.focusIdx = ((t.focusIdx+delta)%n + n) % n
	t.app.SetFocus(t.focusables[t.focusIdx])
}

func (t *tuiApp) scrollFocusedPane(delta int) {
	tv := t.configView
	if t.app.GetFocus() == t.promptView {
		tv = t.promptView
	}
	row, col := tv.GetScrollOffset()
	newRow := row + delta
	if newRow < 0 {
		newRow = 0
	}
	tv.ScrollTo(newRow, col)
}

// ── Submit ─────────────────────────────────────────────────────────────

// handleSubmit runs on the UI goroutine. The daemon round trip runs in the
// background; the controller's observer re-renders when it completes.
func (t *tuiApp) handleSubmit() {
	if t.processing {
		return
	}
	_, selected := t.modelSelect.GetCurrentOption()
	if selected == "" {
		t.showNotice(session.Notification{Level: session.LevelError, Message: "Select a model first"})
		return
	}

	t.processing = true
	t.statusBar.SetText("[gray::-]Loading " + tview.Escape(selected) + "...[-:-:-]")
	go t.ctrl.Submit(context.Background(), selected)
}

func (t *tuiApp) render(s session.State) {
	t.submittedView.SetText(tview.Escape(s.SubmittedModel))

	t.promptView.SetText(t.renderMarkdown(s.SystemPrompt))
	t.promptView.ScrollToBeginning()

	config := tview.Escape(s.Config)
	if strings.HasPrefix(s.Config, "{") {
		config = tview.TranslateANSI(format.Highlight(s.Config))
	}
	t.configView.SetText(config)
	t.configView.ScrollToBeginning()

	if t.processing {
		t.statusBar.SetText("")
	}
}

// ── Notifications ──────────────────────────────────────────────────────

// notify is the controller's notifier; it may be called off the UI goroutine.
func (t *tuiApp) notify(n session.Notification) {
	t.app.QueueUpdateDraw(func() { t.showNotice(n) })
}

// showNotice displays n in the status bar and clears it after noticeTTL
// unless a newer notice replaced it.
func (t *tuiApp) showNotice(n session.Notification) {
	color := "blue"
	if n.Level == session.LevelError {
		color = "red"
	}
	t.statusBar.SetText("[" + color + "::b]" + tview.Escape(n.Message) + "[-:-:-]")

	t.mu.Lock()
	t.noticeID++
	id := t.noticeID
	t.mu.Unlock()

	time.AfterFunc(noticeTTL, func() {
		t.app.QueueUpdateDraw(func() {
			t.mu.Lock()
			current := t.noticeID
			t.mu.Unlock()
			if current == id {
				t.statusBar.SetText("")
			}
		})
	})
}

// ── Markdown Rendering ──────────────────────────────────────────────────

var ansiSGR = regexp.MustCompile("\x1b\\[([0-9;:]*)m")
var tviewTag = regexp.MustCompile(`\[([^\[\]]*):([^\[\]]*):([^\[\]]*)\]`)

// stripTviewUnderline removes 'u' (underline) from the attributes field of
// tview color tags like [fg:bg:attrs].
func stripTviewUnderline(s string) string {
	return tviewTag.ReplaceAllStringFunc(s, func(tag string) string {
		inner := tag[1 : len(tag)-1]
		parts := strings.SplitN(inner, ":", 3)
		if len(parts) < 3 {
			return tag
		}
		attrs := parts[2]
		if !strings.ContainsRune(attrs, 'u') {
			return tag
		}
		newAttrs := strings.ReplaceAll(attrs, "u", "")
		if newAttrs == "" {
			newAttrs = "-"
		}
		return "[" + parts[0] + ":" + parts[1] + ":" + newAttrs + "]"
	})
}

// stripANSIUnderline removes underline (4, 4:N) and no-underline (24) parameters
// from ANSI SGR sequences, preserving all other attributes and colors.
func stripANSIUnderline(s string) string {
	return ansiSGR.ReplaceAllStringFunc(s, func(seq string) string {
		inner := seq[2 : len(seq)-1] // between \x1b[ and m
		if inner == "" {
			return seq
		}
		params := strings.Split(inner, ";")
		var out []string
		for i := 0; i < len(params); i++ {
			p := params[i]
			if p == "4" || p == "24" || strings.HasPrefix(p, "4:") {
				continue
			}
			// 38;5;N / 48;5;N
			if (p == "38" || p == "48") && i+2 < len(params) && params[i+1] == "5" {
				out = append(out, p, params[i+1], params[i+2])
				i += 2
				continue
			}
			// 38;2;R;G;B / 48;2;R;G;B
			if (p == "38" || p == "48") && i+4 < len(params) && params[i+1] == "2" {
				out = append(out, p, params[i+1], params[i+2], params[i+3], params[i+4])
				i += 4
				continue
			}
			out = append(out, p)
		}
		if len(out) == 0 {
			return ""
		}
		return "\x1b[" + strings.Join(out, ";") + "m"
	})
}

// renderMarkdown renders a system prompt for the prompt pane. Prompts are
// frequently markdown; plain text passes through as a paragraph.
func (t *tuiApp) renderMarkdown(content string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return tview.Escape(content)
	}
	out, err := r.Render(content)
	if err != nil {
		t.log.Debug().Err(err).Msg("markdown render failed")
		return tview.Escape(content)
	}
	out = stripANSIUnderline(out)
	translated := tview.TranslateANSI(strings.TrimSpace(out))
	return stripTviewUnderline(translated)
}
