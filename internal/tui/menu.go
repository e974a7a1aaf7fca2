package tui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/vzwtim/swift-revise/internal/catalog"
	"github.com/vzwtim/swift-revise/internal/quiz"
	"github.com/vzwtim/swift-revise/internal/srs"
)

type entryKind int

const (
	entryUnit entryKind = iota
	entrySubjectReview
	entryReviewAll
	entryBulkStudy
	entryQuit
)

type menuEntry struct {
	kind   entryKind
	label  string
	detail string
	target string
}

// menuModel is the home screen: one row per unit with its review
// status, plus the review and bulk-study entries.
type menuModel struct {
	entries []menuEntry
	cursor  int
	warning string
}

func newMenu(cat *catalog.Catalog, cards map[string]srs.Card) menuModel {
	now := time.Now()
	var entries []menuEntry
	for _, sub := range cat.Subjects() {
		for _, unit := range sub.Units {
			due, review := unitCounts(unit, cards, now)
			detail := fmt.Sprintf("%s / %d問", sub.Name, len(unit.Questions))
			if review > 0 {
				detail += fmt.Sprintf(" / 要復習%d", review)
			}
			if due > 0 {
				detail += fmt.Sprintf(" / 期限切れ%d", due)
			}
			entries = append(entries, menuEntry{
				kind:   entryUnit,
				label:  unit.Name,
				detail: detail,
				target: unit.ID,
			})
		}
	}
	for _, sub := range cat.Subjects() {
		perfect, total := 0, 0
		for _, q := range cat.SubjectQuestions(sub.ID) {
			total++
			if c, ok := cards[q.ID]; ok && c.Mastery == srs.LevelPerfect {
				perfect++
			}
		}
		detail := ""
		if total > 0 {
			detail = fmt.Sprintf("完璧 %d%%", perfect*100/total)
		}
		entries = append(entries, menuEntry{
			kind:   entrySubjectReview,
			label:  sub.Name + " の復習",
			detail: detail,
			target: "review-" + sub.ID,
		})
	}
	entries = append(entries,
		menuEntry{kind: entryReviewAll, label: "全問復習", target: quiz.SelectorReviewAll},
		menuEntry{kind: entryBulkStudy, label: "まとめて学習", detail: "単元を選んで学習"},
		menuEntry{kind: entryQuit, label: "終了"},
	)
	return menuModel{entries: entries}
}

func unitCounts(unit catalog.Unit, cards map[string]srs.Card, now time.Time) (due, review int) {
	for _, q := range unit.Questions {
		c, ok := cards[q.ID]
		if !ok {
			review++
			continue
		}
		if c.NeedsReview {
			review++
		}
		if c.IsDue(now) {
			due++
		}
	}
	return due, review
}

func (m menuModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("StudyFlow") + "\n")
	b.WriteString(subtitleStyle.Render("毎日の復習、確実に。") + "\n\n")
	for i, e := range m.entries {
		prefix := "  "
		style := bodyStyle
		if i == m.cursor {
			prefix = "▸ "
			style = selectedStyle
		}
		line := prefix + e.label
		if e.detail != "" {
			line += "  " + subtitleStyle.Render(e.detail)
		}
		b.WriteString(style.Render(line) + "\n")
	}
	if m.warning != "" {
		b.WriteString("\n" + accentStyle.Render(m.warning) + "\n")
	}
	b.WriteString("\n" + hintStyle.Render("↑↓: 移動  Enter: 開始  Ctrl+C: 終了"))
	return b.String()
}

func (a App) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if a.menu.cursor > 0 {
			a.menu.cursor--
		}
	case "down", "j":
		if a.menu.cursor < len(a.menu.entries)-1 {
			a.menu.cursor++
		}
	case "enter":
		a.menu.warning = ""
		e := a.menu.entries[a.menu.cursor]
		switch e.kind {
		case entryQuit:
			return a, tea.Quit
		case entryBulkStudy:
			a.picker = newUnitPicker(a.cat)
			a.view = viewUnitPick
		default:
			return a, a.startSession(e.target, nil)
		}
	}
	return a, nil
}

type pickerRow struct {
	unitID  string
	label   string
	checked bool
}

// unitPicker is the multi-select for bulk study.
type unitPicker struct {
	rows    []pickerRow
	cursor  int
	warning string
}

func newUnitPicker(cat *catalog.Catalog) unitPicker {
	var rows []pickerRow
	for _, sub := range cat.Subjects() {
		for _, unit := range sub.Units {
			rows = append(rows, pickerRow{
				unitID: unit.ID,
				label:  fmt.Sprintf("%s / %s", sub.Name, unit.Name),
			})
		}
	}
	return unitPicker{rows: rows}
}

func (p unitPicker) selectedIDs() []string {
	var ids []string
	for _, r := range p.rows {
		if r.checked {
			ids = append(ids, r.unitID)
		}
	}
	return ids
}

func (p unitPicker) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("まとめて学習") + "\n")
	b.WriteString(subtitleStyle.Render("学習する単元を選択") + "\n\n")
	for i, r := range p.rows {
		prefix := "  "
		style := bodyStyle
		if i == p.cursor {
			prefix = "▸ "
			style = selectedStyle
		}
		mark := "[ ]"
		if r.checked {
			mark = "[x]"
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%s %s", prefix, mark, r.label)) + "\n")
	}
	if p.warning != "" {
		b.WriteString("\n" + accentStyle.Render(p.warning) + "\n")
	}
	b.WriteString("\n" + hintStyle.Render("Space: 選択  Enter: 開始  Esc: 戻る"))
	return b.String()
}

func (a App) updateUnitPick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if a.picker.cursor > 0 {
			a.picker.cursor--
		}
	case "down", "j":
		if a.picker.cursor < len(a.picker.rows)-1 {
			a.picker.cursor++
		}
	case " ":
		a.picker.rows[a.picker.cursor].checked = !a.picker.rows[a.picker.cursor].checked
	case "enter":
		a.picker.warning = ""
		return a, a.startSession(quiz.SelectorBulkStudy, a.picker.selectedIDs())
	case "esc":
		a.view = viewHome
	}
	return a, nil
}
