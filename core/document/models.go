package document

import (
	"net/url"
	"strconv"
	"time"

	"github.com/nqhuy/edusystem/core"
)

type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Subject     string    `json:"subject,omitempty"`
	Description string    `json:"description,omitempty"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	Author      string    `json:"author"`
	Downloads   int       `json:"downloads"`
	IsPremium   bool      `json:"is_premium"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDocument contains information needed to register a new library Document.
type NewDocument struct {
	Title       string `json:"title" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Subject     string `json:"subject,omitempty" validate:"omitempty,subject"`
	Description string `json:"description,omitempty"`
	FileType    string `json:"file_type" validate:"required"`
	FileSize    int64  `json:"file_size" validate:"required,gt=0"`
	Author      string `json:"author" validate:"required"`
	AuthorID    string `json:"author_id,omitempty"`
	IsPremium   bool   `json:"is_premium,omitempty"`
}

func (nd *NewDocument) Validate() error {
	nd.Title = core.CleanString(nd.Title)
	nd.Author = core.CleanString(nd.Author)
	if err := core.Validate.Struct(nd); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

type QueryFilter struct {
	Category string
	Subject  string
	Limit    int
}

func (qf QueryFilter) Values() url.Values {
	params := url.Values{}
	if qf.Category != "" {
		params.Set("category", qf.Category)
	}
	if qf.Subject != "" {
		params.Set("subject", qf.Subject)
	}
	if qf.Limit > 0 {
		params.Set("limit", strconv.Itoa(qf.Limit))
	}
	return params
}
