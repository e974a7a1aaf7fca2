package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/vzwtim/swift-revise/internal/quiz"
)

func (a App) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "esc" {
		// Progress is saved after every answer, so leaving mid-quiz
		// only abandons the question on screen.
		a.session = nil
		a.menu = newMenu(a.cat, a.cards)
		a.view = viewHome
		return a, nil
	}

	switch a.session.Phase() {
	case quiz.PhasePresenting:
		q, ok := a.session.Current()
		if !ok {
			return a, nil
		}
		switch key {
		case "up", "k":
			if a.cursor > 0 {
				a.cursor--
			}
		case "down", "j":
			if a.cursor < len(q.Choices)-1 {
				a.cursor++
			}
		case "enter":
			return a.submitChoice(a.cursor)
		case "1", "2", "3", "4":
			idx := int(key[0] - '1')
			if idx < len(q.Choices) {
				return a.submitChoice(idx)
			}
		}

	case quiz.PhaseGraded:
		a.session.Next(context.Background())
		if a.session.Phase() == quiz.PhaseComplete {
			a.view = viewSummary
			return a, nil
		}
		a.cursor = 0
		a.questionStart = time.Now()
	}
	return a, nil
}

func (a App) submitChoice(idx int) (tea.Model, tea.Cmd) {
	elapsed := time.Since(a.questionStart)
	_, _ = a.session.Submit(context.Background(), idx, elapsed)
	return a, nil
}

var choiceLabels = []string{"A", "B", "C", "D", "E", "F"}

func (a App) viewQuestion() string {
	q, ok := a.session.Current()
	if !ok {
		return ""
	}
	graded := a.session.Phase() == quiz.PhaseGraded

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.session.Title))
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("  第%d問 / 全%d問", a.session.Index()+1, len(a.session.Questions))) + "\n\n")
	b.WriteString(cardStyle.Render(bodyStyle.Render(q.Prompt)) + "\n\n")

	ans, hasAns := a.session.LastAnswer()
	for i, opt := range q.Choices {
		label := fmt.Sprintf("%d", i+1)
		if i < len(choiceLabels) {
			label = choiceLabels[i]
		}
		prefix := "  "
		if i == a.cursor && !graded {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, label, opt)

		switch {
		case graded && i == q.Answer:
			b.WriteString(correctStyle.Render(line) + "\n")
		case graded && hasAns && i == ans.Choice:
			b.WriteString(wrongStyle.Render(line) + "\n")
		case graded:
			b.WriteString(subtitleStyle.Render(line) + "\n")
		case i == a.cursor:
			b.WriteString(selectedStyle.Render(line) + "\n")
		default:
			b.WriteString(bodyStyle.Render(line) + "\n")
		}
	}

	if graded && hasAns {
		b.WriteString("\n")
		if ans.Correct {
			b.WriteString(correctStyle.Render("正解！") + "\n")
		} else {
			b.WriteString(wrongStyle.Render("不正解") + "\n")
		}
		if q.Explanation != "" {
			b.WriteString(bodyStyle.Render(q.Explanation) + "\n")
		}
		if card, ok := a.session.Card(q.ID); ok {
			level := lipgloss.NewStyle().Foreground(levelColor(card.Mastery)).Render(levelLabel(card.Mastery))
			b.WriteString(subtitleStyle.Render("習熟度: ") + level + "\n")
		}
		b.WriteString("\n" + hintStyle.Render("いずれかのキーで次へ  Esc: 中断"))
	} else {
		b.WriteString("\n" + hintStyle.Render("↑↓/1-4: 選択  Enter: 回答  Esc: 中断"))
	}
	return b.String()
}

func (a App) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		a.session.Restart(context.Background())
		a.cursor = 0
		a.questionStart = time.Now()
		a.view = viewQuiz
	case "enter", "esc":
		a.session = nil
		a.menu = newMenu(a.cat, a.cards)
		a.view = viewHome
	}
	return a, nil
}

func (a App) viewSummary() string {
	sum := a.session.Summarize()

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.session.Title+" 完了") + "\n\n")
	b.WriteString(accentStyle.Render(fmt.Sprintf("スコア %d点", sum.Score)) + "\n")
	b.WriteString(bodyStyle.Render(fmt.Sprintf("%d問中%d問正解", sum.Answered, sum.Correct)) + "\n")
	if sum.HasNextReview {
		b.WriteString(subtitleStyle.Render("次回の復習: "+sum.NextReview.Format("2006/01/02")) + "\n")
	}
	b.WriteString("\n" + hintStyle.Render("r: もう一度  Enter: ホームへ"))
	return b.String()
}
