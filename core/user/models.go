package user

import (
	"net/url"
	"strconv"
	"time"

	"github.com/nqhuy/edusystem/core"
)

// Roles. The role is resolved from the backend, never from the identity
// token.
const (
	RoleStudent  = "student"
	RoleTeacher  = "teacher"
	RoleSchool   = "school"
	RoleMinistry = "ministry"
	RoleAdmin    = "admin"
)

var AllRoles = []string{RoleStudent, RoleTeacher, RoleSchool, RoleMinistry, RoleAdmin}

func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

// Account is the identity-provider principal for the signed-in session.
// It deliberately carries no role.
type Account struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
}

// Info is the backend's view of a user, role included.
type Info struct {
	ID        string     `json:"id"`
	UID       string     `json:"uid"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	Role      string     `json:"role"`
	PhotoURL  string     `json:"photo_url,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (i Info) IsAdmin() bool    { return i.Role == RoleAdmin }
func (i Info) IsTeacher() bool  { return i.Role == RoleTeacher }
func (i Info) IsStudent() bool  { return i.Role == RoleStudent }
func (i Info) IsSchool() bool   { return i.Role == RoleSchool }
func (i Info) IsMinistry() bool { return i.Role == RoleMinistry }

// UpdateMe defines what a user may change about themselves.
type UpdateMe struct {
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty" validate:"omitempty,role"`
	PhotoURL string `json:"photo_url,omitempty" validate:"omitempty,url"`
}

func (um *UpdateMe) Validate() error {
	um.Name = core.CleanString(um.Name)
	if err := core.Validate.Struct(um); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

// Overview is the profile summary served by /api/me/overview.
type Overview struct {
	User struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Stats struct {
		TotalPosts      int     `json:"total_posts"`
		TotalComments   int     `json:"total_comments"`
		FavoriteSubject *string `json:"favorite_subject"`
	} `json:"stats"`
	RecentPosts []RecentPost `json:"recent_posts"`
}

type RecentPost struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Subject   string     `json:"subject,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Comments  int        `json:"comments"`
	Likes     int        `json:"likes"`
}

// AdminStats is the platform-wide dashboard summary (admin surface).
type AdminStats struct {
	Users struct {
		Total  int            `json:"total"`
		ByRole map[string]int `json:"by_role"`
	} `json:"users"`
	Posts struct {
		Total     int            `json:"total"`
		BySubject map[string]int `json:"by_subject"`
		ByStatus  map[string]int `json:"by_status"`
	} `json:"posts"`
	Comments struct {
		Total int `json:"total"`
	} `json:"comments"`
	Timestamp time.Time `json:"timestamp"`
}

// QueryFilter holds the admin user list filters.
type QueryFilter struct {
	Search string
	Role   string
	Limit  int
	Offset *int
}

func (qf QueryFilter) Values() url.Values {
	params := url.Values{}
	if qf.Search != "" {
		params.Set("search", qf.Search)
	}
	if qf.Role != "" {
		params.Set("role", qf.Role)
	}
	if qf.Limit > 0 {
		params.Set("limit", strconv.Itoa(qf.Limit))
	}
	if qf.Offset != nil {
		params.Set("offset", strconv.Itoa(*qf.Offset))
	}
	return params
}
