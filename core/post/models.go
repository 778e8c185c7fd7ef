package post

import (
	"net/url"
	"strconv"
	"time"

	"github.com/nqhuy/edusystem/core"
)

// Moderation statuses. Posts start out pending and are moved along by the
// moderation pipeline on the backend; the client only ever reads them.
const (
	StatusPending     = "pending"
	StatusClean       = "clean"
	StatusNeedsReview = "needs_review"
	StatusRejected    = "rejected"
)

// Reaction kinds. Non-exclusive sentiment tags, distinct from "like".
type Reaction string

const (
	ReactionIdea       Reaction = "idea"
	ReactionThinking   Reaction = "thinking"
	ReactionResource   Reaction = "resource"
	ReactionMotivation Reaction = "motivation"
)

var Reactions = []Reaction{ReactionIdea, ReactionThinking, ReactionResource, ReactionMotivation}

// Post types, derived from the composer payload.
const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeDocument = "document"
)

// Attachment is immutable once created; posts reference it by URL.
type Attachment struct {
	URL        string     `json:"url" validate:"required"`
	FileName   string     `json:"file_name" validate:"required"`
	FileType   string     `json:"file_type"`
	FileSize   int64      `json:"file_size"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

type Post struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	AuthorRole string `json:"author_role"`
	Subject    string `json:"subject,omitempty"`
	Grade      int    `json:"grade,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Type       string `json:"post_type"`
	Likes      int    `json:"likes"`
	// Comments is an advisory counter kept roughly in sync by optimistic
	// client updates; the backend is the source of truth.
	Comments  int       `json:"comments"`
	Shares    int       `json:"shares"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// ImageURL predates ImageURLs and is kept for older posts.
	ImageURL    string       `json:"image_url,omitempty"`
	ImageURLs   []string     `json:"image_urls,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	HasQuestion bool         `json:"hasQuestion,omitempty"`
	Status      string       `json:"status,omitempty"`

	// Fields filled in asynchronously by the moderation/AI pipeline.
	IsEducational *bool    `json:"isEducational,omitempty"`
	AITags        []string `json:"aiTags,omitempty"`
	AIComment     string   `json:"aiComment,omitempty"`

	ReactionCounts map[Reaction]int `json:"reactionCounts,omitempty"`
	// UserReactions records which users reacted with what. Display code only
	// consumes the counts for now.
	UserReactions map[string]Reaction `json:"userReactions,omitempty"`
}

type Comment struct {
	ID            string    `json:"id"`
	PostID        string    `json:"post_id"`
	AuthorID      string    `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	AuthorRole    string    `json:"author_role"`
	Content       string    `json:"content"`
	IsAIGenerated bool      `json:"is_ai_generated"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewPost contains information needed to create a new Post.
type NewPost struct {
	Content     string       `json:"content" validate:"required"`
	Subject     string       `json:"subject,omitempty" validate:"omitempty,subject"`
	Type        string       `json:"post_type,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	ImageURLs   []string     `json:"image_urls,omitempty" validate:"omitempty,max=5"`
	Attachments []Attachment `json:"attachments,omitempty" validate:"omitempty,dive"`
	HasQuestion bool         `json:"hasQuestion,omitempty"`
}

func (np *NewPost) Validate() error {
	np.Content = core.CleanString(np.Content)
	if err := core.Validate.Struct(np); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

// UpdatePost defines what may be modified on an existing Post.
type UpdatePost struct {
	Content string `json:"content,omitempty"`
	Subject string `json:"subject,omitempty" validate:"omitempty,subject"`
	Type    string `json:"post_type,omitempty"`
}

func (up *UpdatePost) Validate() error {
	up.Content = core.CleanString(up.Content)
	if err := core.Validate.Struct(up); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

// NewComment contains information needed to create or edit a Comment.
type NewComment struct {
	Content string `json:"content" validate:"required"`
}

func (nc *NewComment) Validate() error {
	nc.Content = core.CleanString(nc.Content)
	if err := core.Validate.Struct(nc); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

// QueryFilter holds the server-side post list filters. Zero-valued fields are
// not sent.
type QueryFilter struct {
	Subject  string
	AuthorID string
	Status   string
	Search   string
	Limit    int
	// Offset is a pointer so that an explicit 0 is still serialized.
	Offset *int
}

func (qf QueryFilter) Values() url.Values {
	params := url.Values{}
	if qf.Subject != "" && qf.Subject != "all" {
		params.Set("subject", qf.Subject)
	}
	if qf.AuthorID != "" {
		params.Set("author_id", qf.AuthorID)
	}
	if qf.Status != "" {
		params.Set("status", qf.Status)
	}
	if qf.Search != "" {
		params.Set("search", qf.Search)
	}
	if qf.Limit > 0 {
		params.Set("limit", strconv.Itoa(qf.Limit))
	}
	if qf.Offset != nil {
		params.Set("offset", strconv.Itoa(*qf.Offset))
	}
	return params
}

// Page is the standardized paginated envelope returned by the enhanced
// posts endpoint.
type Page struct {
	Success    bool       `json:"success"`
	Data       []Post     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Total       int  `json:"total"`
	Limit       int  `json:"limit"`
	Offset      int  `json:"offset"`
	HasMore     bool `json:"has_more"`
	TotalPages  int  `json:"total_pages,omitempty"`
	CurrentPage int  `json:"current_page,omitempty"`
}

// Stats summarizes the posts collection (enhanced API).
type Stats struct {
	Collection     string         `json:"collection"`
	TotalDocuments int            `json:"total_documents"`
	OldestDocument *time.Time     `json:"oldest_document"`
	NewestDocument *time.Time     `json:"newest_document"`
	ByStatus       map[string]int `json:"by_status,omitempty"`
}
