package exam

import (
	"net/url"
	"strconv"
	"time"

	"github.com/nqhuy/edusystem/core"
)

// Difficulty levels accepted by the backend.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Exam struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Subject        string    `json:"subject"`
	Duration       int       `json:"duration"` // minutes
	QuestionsCount int       `json:"questions_count"`
	Difficulty     string    `json:"difficulty"`
	Description    string    `json:"description,omitempty"`
	IsPremium      bool      `json:"is_premium"`
	Rating         float64   `json:"rating,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewExam contains information needed to create a new Exam.
type NewExam struct {
	Title          string `json:"title" validate:"required"`
	Subject        string `json:"subject" validate:"required,subject"`
	Duration       int    `json:"duration" validate:"required,gt=0"`
	QuestionsCount int    `json:"questions_count" validate:"required,gt=0"`
	Difficulty     string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	Description    string `json:"description,omitempty"`
	IsPremium      bool   `json:"is_premium,omitempty"`
}

func (ne *NewExam) Validate() error {
	ne.Title = core.CleanString(ne.Title)
	if err := core.Validate.Struct(ne); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

type QueryFilter struct {
	Subject    string
	Difficulty string
	Limit      int
}

func (qf QueryFilter) Values() url.Values {
	params := url.Values{}
	if qf.Subject != "" {
		params.Set("subject", qf.Subject)
	}
	if qf.Difficulty != "" {
		params.Set("difficulty", qf.Difficulty)
	}
	if qf.Limit > 0 {
		params.Set("limit", strconv.Itoa(qf.Limit))
	}
	return params
}
