// Package tui is the interactive terminal front end: a home menu over
// the question bank, the quiz loop itself, and the end-of-session
// summary.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/vzwtim/swift-revise/internal/catalog"
	"github.com/vzwtim/swift-revise/internal/config"
	"github.com/vzwtim/swift-revise/internal/quiz"
	"github.com/vzwtim/swift-revise/internal/srs"
	"github.com/vzwtim/swift-revise/internal/store"
)

type view int

const (
	viewHome view = iota
	viewUnitPick
	viewResume
	viewQuiz
	viewSummary
)

// App is the root Bubble Tea model.
type App struct {
	cat *catalog.Catalog
	st  *store.Store
	cfg config.Config

	width  int
	height int
	view   view

	loading bool
	spin    spinner.Model

	cards map[string]srs.Card

	menu   menuModel
	picker unitPicker

	session       *quiz.Session
	cursor        int
	questionStart time.Time

	// set while asking whether to resume an interrupted quiz
	pendingBuild    quiz.BuildResult
	pendingTarget   string
	pendingSnapshot *store.IncompleteQuiz
}

type cardsLoadedMsg struct {
	cards map[string]srs.Card
}

type sessionStartMsg struct {
	target string
	result quiz.BuildResult
	snap   *store.IncompleteQuiz
}

func newApp(cat *catalog.Catalog, st *store.Store, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colPrimary)
	return App{
		cat:     cat,
		st:      st,
		cfg:     cfg,
		loading: true,
		spin:    sp,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, a.loadCards())
}

// loadCards pulls the user's full card state and reconciles it against
// the catalog so every question has a card before the first session.
func (a App) loadCards() tea.Cmd {
	cat, st, cfg := a.cat, a.st, a.cfg
	return func() tea.Msg {
		return cardsLoadedMsg{cards: loadUserCards(context.Background(), st.Cards(), cat, cfg.UserID)}
	}
}

// loadUserCards fetches the user's cards and fills in one for every
// catalog question. A failed load degrades to empty state rather than
// blocking the quiz: every question simply starts over as new.
func loadUserCards(ctx context.Context, repo store.CardRepo, cat *catalog.Catalog, userID string) map[string]srs.Card {
	cards, err := repo.LoadAll(ctx, userID)
	if err != nil {
		slog.Error("load cards", "user", userID, "error", err)
		cards = make(map[string]srs.Card)
	}
	cards, created := store.Reconcile(cards, cat, time.Now())
	if len(created) > 0 {
		repo.SaveCards(ctx, userID, created)
	}
	return cards
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case cardsLoadedMsg:
		a.loading = false
		a.cards = msg.cards
		a.menu = newMenu(a.cat, a.cards)
		return a, nil

	case sessionStartMsg:
		return a.handleSessionStart(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if a.loading {
		return a, nil
	}

	switch a.view {
	case viewHome:
		return a.updateHome(msg)
	case viewUnitPick:
		return a.updateUnitPick(msg)
	case viewResume:
		return a.updateResume(msg)
	case viewQuiz:
		return a.updateQuiz(msg)
	case viewSummary:
		return a.updateSummary(msg)
	}
	return a, nil
}

// startSession builds the question list for a target and checks for an
// interrupted quiz to resume.
func (a App) startSession(target string, unitIDs []string) tea.Cmd {
	cat, st, cfg, cards := a.cat, a.st, a.cfg, a.cards
	return func() tea.Msg {
		res := quiz.Build(cat, cards, quiz.BuildRequest{
			Selector: target,
			UnitIDs:  unitIDs,
		})
		if cfg.QuestionCap > 0 && len(res.Questions) > cfg.QuestionCap {
			res.Questions = res.Questions[:cfg.QuestionCap]
		}

		var snap *store.IncompleteQuiz
		if cfg.UserID != "" && len(res.Questions) > 0 {
			snap, _ = st.Progress().Incomplete(context.Background(), cfg.UserID, target)
		}
		return sessionStartMsg{target: target, result: res, snap: snap}
	}
}

func (a App) handleSessionStart(msg sessionStartMsg) (tea.Model, tea.Cmd) {
	if msg.result.NoUnitsSelected {
		a.picker.warning = "単元を選択してください"
		a.view = viewUnitPick
		return a, nil
	}
	if len(msg.result.Questions) == 0 {
		a.menu.warning = "該当する問題がありません"
		a.view = viewHome
		return a, nil
	}

	if msg.snap != nil {
		a.pendingBuild = msg.result
		a.pendingTarget = msg.target
		a.pendingSnapshot = msg.snap
		a.view = viewResume
		return a, nil
	}

	a.beginQuiz(msg.target, msg.result, nil)
	return a, nil
}

func (a *App) beginQuiz(target string, res quiz.BuildResult, snap *store.IncompleteQuiz) {
	a.session = quiz.NewSession(target, res.Title, res.Questions, a.cards, quiz.Deps{
		Cards:         a.st.Cards(),
		History:       a.st.History(),
		Progress:      a.st.Progress(),
		UserID:        a.cfg.UserID,
		EasyThreshold: a.cfg.EasyThreshold(),
	})
	if snap != nil {
		a.session.RestoreSnapshot(snap)
	}
	a.cursor = 0
	a.questionStart = time.Now()
	a.view = viewQuiz
}

func (a App) updateResume(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		a.beginQuiz(a.pendingTarget, a.pendingBuild, a.pendingSnapshot)
	case "n", "N":
		// Starting over invalidates the saved position; without the
		// delete, quitting before the first answer re-offers it.
		a.discardSnapshot(a.pendingTarget)
		a.beginQuiz(a.pendingTarget, a.pendingBuild, nil)
	case "esc":
		a.view = viewHome
	}
	a.pendingSnapshot = nil
	return a, nil
}

// discardSnapshot deletes the saved resume point for a target.
func (a App) discardSnapshot(target string) {
	if a.cfg.UserID == "" {
		return
	}
	if err := a.st.Progress().ClearIncomplete(context.Background(), a.cfg.UserID, target); err != nil {
		slog.Error("clear incomplete quiz", "target", target, "error", err)
	}
}

func (a App) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if a.width == 0 || a.height == 0 {
		return v
	}

	var content string
	switch {
	case a.loading:
		content = a.spin.View() + " " + subtitleStyle.Render("カードを読み込み中...")
	default:
		switch a.view {
		case viewHome:
			content = a.menu.view()
		case viewUnitPick:
			content = a.picker.view()
		case viewResume:
			content = a.viewResumePrompt()
		case viewQuiz:
			content = a.viewQuestion()
		case viewSummary:
			content = a.viewSummary()
		}
	}

	v.SetContent(lipgloss.NewStyle().Padding(1, 2).MaxWidth(a.width).Render(content))
	return v
}

func (a App) viewResumePrompt() string {
	s := titleStyle.Render(a.pendingBuild.Title) + "\n\n"
	s += bodyStyle.Render(fmt.Sprintf("前回の続きがあります (%d問目から)", a.pendingSnapshot.CurrentIndex+1)) + "\n\n"
	s += hintStyle.Render("y: 続きから  n: 最初から  esc: 戻る")
	return s
}

// Run opens the store-backed quiz UI and blocks until the user quits.
func Run(cat *catalog.Catalog, st *store.Store, cfg config.Config) error {
	p := tea.NewProgram(newApp(cat, st, cfg))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
