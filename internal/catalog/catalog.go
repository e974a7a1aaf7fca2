// Package catalog holds the static question bank: subjects containing
// units containing questions. The catalog is read-only after load; all
// per-user state lives on cards in the store.
package catalog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Difficulty is an optional per-question tag.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is one multiple-choice (or true/false) question. Immutable
// after load.
type Question struct {
	ID          string     `json:"id" validate:"required"`
	SubjectID   string     `json:"subject" validate:"required"`
	UnitID      string     `json:"unit" validate:"required"`
	Prompt      string     `json:"question" validate:"required"`
	Choices     []string   `json:"choices" validate:"required,min=2,dive,required"`
	Answer      int        `json:"answer" validate:"gte=0"`
	Explanation string     `json:"explanation"`
	Difficulty  Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	Category    string     `json:"category,omitempty"`
}

// Unit is an ordered group of questions within a subject.
type Unit struct {
	ID          string     `json:"id" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	SubjectID   string     `json:"subjectId" validate:"required"`
	Questions   []Question `json:"questions" validate:"dive"`
}

// Subject is the top-level grouping shown on the home screen.
type Subject struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Units       []Unit `json:"units" validate:"dive"`
}

// Catalog indexes the subject tree for lookup by id. Build one with New;
// the zero value is empty but usable.
type Catalog struct {
	subjects    []Subject
	subjectByID map[string]*Subject
	unitByID    map[string]*Unit
	questions   []Question // catalog order, the tiebreak order for sessions
	questionIDs map[string]bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New builds a catalog from the subject tree, validating field
// constraints and structural consistency (unique ids, answer index in
// range, unit/subject back-references).
func New(subjects []Subject) (*Catalog, error) {
	c := &Catalog{
		subjects:    subjects,
		subjectByID: make(map[string]*Subject),
		unitByID:    make(map[string]*Unit),
		questionIDs: make(map[string]bool),
	}

	var errs []string
	for si := range subjects {
		s := &c.subjects[si]
		if err := validate.Struct(s); err != nil {
			errs = append(errs, fmt.Sprintf("subject %q: %v", s.ID, err))
		}
		if _, dup := c.subjectByID[s.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate subject id %q", s.ID))
		}
		c.subjectByID[s.ID] = s

		for ui := range s.Units {
			u := &s.Units[ui]
			if _, dup := c.unitByID[u.ID]; dup {
				errs = append(errs, fmt.Sprintf("duplicate unit id %q", u.ID))
			}
			if u.SubjectID != s.ID {
				errs = append(errs, fmt.Sprintf("unit %q declares subject %q but sits under %q", u.ID, u.SubjectID, s.ID))
			}
			c.unitByID[u.ID] = u

			for _, q := range u.Questions {
				if c.questionIDs[q.ID] {
					errs = append(errs, fmt.Sprintf("duplicate question id %q", q.ID))
				}
				c.questionIDs[q.ID] = true
				if q.Answer < 0 || q.Answer >= len(q.Choices) {
					errs = append(errs, fmt.Sprintf("question %q: answer index %d out of range for %d choices", q.ID, q.Answer, len(q.Choices)))
				}
				if q.SubjectID != s.ID || q.UnitID != u.ID {
					errs = append(errs, fmt.Sprintf("question %q: subject/unit refs %q/%q do not match %q/%q", q.ID, q.SubjectID, q.UnitID, s.ID, u.ID))
				}
				c.questions = append(c.questions, q)
			}
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return c, nil
}

// Subjects returns all subjects in display order.
func (c *Catalog) Subjects() []Subject {
	return c.subjects
}

// Subject returns the subject with the given id.
func (c *Catalog) Subject(id string) (*Subject, bool) {
	s, ok := c.subjectByID[id]
	return s, ok
}

// Unit returns the unit with the given id.
func (c *Catalog) Unit(id string) (*Unit, bool) {
	u, ok := c.unitByID[id]
	return u, ok
}

// AllQuestions returns every question in catalog order.
func (c *Catalog) AllQuestions() []Question {
	return c.questions
}

// SubjectQuestions returns all questions under a subject in catalog order.
func (c *Catalog) SubjectQuestions(subjectID string) []Question {
	s, ok := c.subjectByID[subjectID]
	if !ok {
		return nil
	}
	var qs []Question
	for _, u := range s.Units {
		qs = append(qs, u.Questions...)
	}
	return qs
}

// QuestionCount returns the total number of questions.
func (c *Catalog) QuestionCount() int {
	return len(c.questions)
}

// HasQuestion reports whether a question id exists in the catalog.
func (c *Catalog) HasQuestion(id string) bool {
	return c.questionIDs[id]
}
