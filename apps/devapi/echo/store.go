package devapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nqhuy/edusystem/core/document"
	"github.com/nqhuy/edusystem/core/exam"
	"github.com/nqhuy/edusystem/core/post"
	"github.com/nqhuy/edusystem/core/user"
)

// Store is the in-memory backing for the dev API. Everything is lost on
// restart, which is the point.
type Store struct {
	mu        sync.RWMutex
	posts     map[string]*post.Post
	comments  map[string][]post.Comment // keyed by post ID
	users     map[string]*user.Info     // keyed by UID
	exams     map[string]*exam.Exam
	documents map[string]*document.Document
}

func NewStore() *Store {
	return &Store{
		posts:     make(map[string]*post.Post),
		comments:  make(map[string][]post.Comment),
		users:     make(map[string]*user.Info),
		exams:     make(map[string]*exam.Exam),
		documents: make(map[string]*document.Document),
	}
}

// Posts

func (s *Store) CreatePost(np post.NewPost, author user.Info) post.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p := post.Post{
		ID:          uuid.NewString(),
		Content:     np.Content,
		AuthorID:    author.UID,
		AuthorName:  author.Name,
		AuthorRole:  author.Role,
		Subject:     np.Subject,
		Type:        np.Type,
		ImageURL:    np.ImageURL,
		ImageURLs:   np.ImageURLs,
		Attachments: np.Attachments,
		HasQuestion: np.HasQuestion,
		Status:      post.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Type == "" {
		p.Type = post.TypeText
	}
	s.posts[p.ID] = &p
	return p
}

func (s *Store) QueryPosts(filter post.QueryFilter, allStatuses bool) []post.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if !allStatuses && p.Status == post.StatusRejected {
			continue
		}
		if filter.Subject != "" && p.Subject != filter.Subject {
			continue
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Content), strings.ToLower(filter.Search)) {
			continue
		}
		posts = append(posts, *p)
	}
	// newest first
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts
}

func (s *Store) GetPost(id string) (post.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.posts[id]; ok {
		return *p, true
	}
	return post.Post{}, false
}

func (s *Store) UpdatePost(id string, up post.UpdatePost) (post.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, false
	}
	if up.Content != "" {
		p.Content = up.Content
	}
	if up.Subject != "" {
		p.Subject = up.Subject
	}
	if up.Type != "" {
		p.Type = up.Type
	}
	p.UpdatedAt = time.Now().UTC()
	return *p, true
}

func (s *Store) DeletePost(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return false
	}
	delete(s.posts, id)
	delete(s.comments, id)
	return true
}

func (s *Store) LikePost(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return 0, false
	}
	p.Likes++
	return p.Likes, true
}

// ReactToPost toggles the user's reaction; reacting twice with the same kind
// removes it, a different kind replaces it.
func (s *Store) ReactToPost(id, userID string, reaction post.Reaction) (post.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, false
	}
	if p.ReactionCounts == nil {
		p.ReactionCounts = make(map[post.Reaction]int)
	}
	if p.UserReactions == nil {
		p.UserReactions = make(map[string]post.Reaction)
	}
	if prev, reacted := p.UserReactions[userID]; reacted {
		if p.ReactionCounts[prev] > 0 {
			p.ReactionCounts[prev]--
		}
		if prev == reaction {
			delete(p.UserReactions, userID)
			return *p, true
		}
	}
	p.UserReactions[userID] = reaction
	p.ReactionCounts[reaction]++
	return *p, true
}

func (s *Store) SetPostStatus(id, status string) (post.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return post.Post{}, false
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return *p, true
}

func (s *Store) PostStats() post.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := post.Stats{
		Collection:     "posts",
		TotalDocuments: len(s.posts),
		ByStatus:       make(map[string]int),
	}
	for _, p := range s.posts {
		stats.ByStatus[p.Status]++
		created := p.CreatedAt
		if stats.OldestDocument == nil || created.Before(*stats.OldestDocument) {
			t := created
			stats.OldestDocument = &t
		}
		if stats.NewestDocument == nil || created.After(*stats.NewestDocument) {
			t := created
			stats.NewestDocument = &t
		}
	}
	return stats
}

// Comments

func (s *Store) QueryComments(postID string, limit int) ([]post.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.posts[postID]; !ok {
		return nil, false
	}
	comments := append([]post.Comment(nil), s.comments[postID]...)
	// newest first
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
	if limit > 0 && len(comments) > limit {
		comments = comments[:limit]
	}
	return comments, true
}

func (s *Store) CreateComment(postID string, nc post.NewComment, author user.Info) (post.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return post.Comment{}, false
	}
	now := time.Now().UTC()
	c := post.Comment{
		ID:         uuid.NewString(),
		PostID:     postID,
		AuthorID:   author.UID,
		AuthorName: author.Name,
		AuthorRole: author.Role,
		Content:    nc.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.comments[postID] = append(s.comments[postID], c)
	p.Comments++
	return c, true
}

func (s *Store) UpdateComment(postID, commentID string, nc post.NewComment) (post.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.comments[postID] {
		if c.ID == commentID {
			c.Content = nc.Content
			c.UpdatedAt = time.Now().UTC()
			s.comments[postID][i] = c
			return c, true
		}
	}
	return post.Comment{}, false
}

func (s *Store) DeleteComment(postID, commentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.comments[postID] {
		if c.ID == commentID {
			s.comments[postID] = append(s.comments[postID][:i], s.comments[postID][i+1:]...)
			if p, ok := s.posts[postID]; ok && p.Comments > 0 {
				p.Comments--
			}
			return true
		}
	}
	return false
}

// Users

// EnsureUser upserts the backend profile for an identity on first contact.
// New users start out as students.
func (s *Store) EnsureUser(uid, email, name string) user.Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	if usr, ok := s.users[uid]; ok {
		return *usr
	}
	now := time.Now().UTC()
	usr := user.Info{
		ID:        uuid.NewString(),
		UID:       uid,
		Email:     email,
		Name:      name,
		Role:      user.RoleStudent,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	s.users[uid] = &usr
	return usr
}

func (s *Store) GetUser(uid string) (user.Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if usr, ok := s.users[uid]; ok {
		return *usr, true
	}
	return user.Info{}, false
}

func (s *Store) UpdateUser(uid string, um user.UpdateMe) (user.Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, ok := s.users[uid]
	if !ok {
		return user.Info{}, false
	}
	if um.Name != "" {
		usr.Name = um.Name
	}
	if um.Role != "" {
		usr.Role = um.Role
	}
	if um.PhotoURL != "" {
		usr.PhotoURL = um.PhotoURL
	}
	now := time.Now().UTC()
	usr.UpdatedAt = &now
	return *usr, true
}

func (s *Store) SetUserRole(uid, role string) (user.Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, ok := s.users[uid]
	if !ok {
		return user.Info{}, false
	}
	usr.Role = role
	now := time.Now().UTC()
	usr.UpdatedAt = &now
	return *usr, true
}

func (s *Store) DeleteUser(uid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[uid]; !ok {
		return false
	}
	delete(s.users, uid)
	return true
}

func (s *Store) QueryUsers(filter user.QueryFilter) []user.Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]user.Info, 0, len(s.users))
	for _, usr := range s.users {
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(usr.Name), needle) &&
				!strings.Contains(strings.ToLower(usr.Email), needle) {
				continue
			}
		}
		users = append(users, *usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users
}

func (s *Store) Overview(uid string) (user.Overview, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usr, ok := s.users[uid]
	if !ok {
		return user.Overview{}, false
	}

	var ov user.Overview
	ov.User.ID = usr.ID
	ov.User.Name = usr.Name

	bySubject := make(map[string]int)
	var posts []post.Post
	for _, p := range s.posts {
		if p.AuthorID != uid {
			continue
		}
		posts = append(posts, *p)
		ov.Stats.TotalPosts++
		ov.Stats.TotalComments += p.Comments
		if p.Subject != "" {
			bySubject[p.Subject]++
		}
	}
	var favorite string
	for subject, n := range bySubject {
		if favorite == "" || n > bySubject[favorite] {
			favorite = subject
		}
	}
	if favorite != "" {
		ov.Stats.FavoriteSubject = &favorite
	}

	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	if len(posts) > 5 {
		posts = posts[:5]
	}
	ov.RecentPosts = make([]user.RecentPost, 0, len(posts))
	for _, p := range posts {
		created := p.CreatedAt
		ov.RecentPosts = append(ov.RecentPosts, user.RecentPost{
			ID:        p.ID,
			Content:   p.Content,
			Subject:   p.Subject,
			CreatedAt: &created,
			Comments:  p.Comments,
			Likes:     p.Likes,
		})
	}
	return ov, true
}

func (s *Store) AdminStats() user.AdminStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats user.AdminStats
	stats.Users.Total = len(s.users)
	stats.Users.ByRole = make(map[string]int)
	for _, usr := range s.users {
		stats.Users.ByRole[usr.Role]++
	}
	stats.Posts.Total = len(s.posts)
	stats.Posts.BySubject = make(map[string]int)
	stats.Posts.ByStatus = make(map[string]int)
	for _, p := range s.posts {
		if p.Subject != "" {
			stats.Posts.BySubject[p.Subject]++
		}
		stats.Posts.ByStatus[p.Status]++
		stats.Comments.Total += p.Comments
	}
	stats.Timestamp = time.Now().UTC()
	return stats
}

// Exams

func (s *Store) CreateExam(ne exam.NewExam) exam.Exam {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	e := exam.Exam{
		ID:             uuid.NewString(),
		Title:          ne.Title,
		Subject:        ne.Subject,
		Duration:       ne.Duration,
		QuestionsCount: ne.QuestionsCount,
		Difficulty:     ne.Difficulty,
		Description:    ne.Description,
		IsPremium:      ne.IsPremium,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.exams[e.ID] = &e
	return e
}

func (s *Store) QueryExams(filter exam.QueryFilter) []exam.Exam {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exams := make([]exam.Exam, 0, len(s.exams))
	for _, e := range s.exams {
		if filter.Subject != "" && e.Subject != filter.Subject {
			continue
		}
		if filter.Difficulty != "" && e.Difficulty != filter.Difficulty {
			continue
		}
		exams = append(exams, *e)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].CreatedAt.After(exams[j].CreatedAt) })
	if filter.Limit > 0 && len(exams) > filter.Limit {
		exams = exams[:filter.Limit]
	}
	return exams
}

func (s *Store) GetExam(id string) (exam.Exam, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.exams[id]; ok {
		return *e, true
	}
	return exam.Exam{}, false
}

func (s *Store) UpdateExam(id string, ne exam.NewExam) (exam.Exam, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.exams[id]
	if !ok {
		return exam.Exam{}, false
	}
	e.Title = ne.Title
	e.Subject = ne.Subject
	e.Duration = ne.Duration
	e.QuestionsCount = ne.QuestionsCount
	e.Difficulty = ne.Difficulty
	e.Description = ne.Description
	e.IsPremium = ne.IsPremium
	e.UpdatedAt = time.Now().UTC()
	return *e, true
}

func (s *Store) DeleteExam(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exams[id]; !ok {
		return false
	}
	delete(s.exams, id)
	return true
}

// Documents

func (s *Store) CreateDocument(nd document.NewDocument) document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	d := document.Document{
		ID:          uuid.NewString(),
		Title:       nd.Title,
		Category:    nd.Category,
		Subject:     nd.Subject,
		Description: nd.Description,
		FileType:    nd.FileType,
		FileSize:    nd.FileSize,
		Author:      nd.Author,
		IsPremium:   nd.IsPremium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.documents[d.ID] = &d
	return d
}

func (s *Store) QueryDocuments(filter document.QueryFilter) []document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]document.Document, 0, len(s.documents))
	for _, d := range s.documents {
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		if filter.Subject != "" && d.Subject != filter.Subject {
			continue
		}
		docs = append(docs, *d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}
	return docs
}

func (s *Store) GetDocument(id string) (document.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.documents[id]; ok {
		return *d, true
	}
	return document.Document{}, false
}

func (s *Store) RecordDownload(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.documents[id]
	if !ok {
		return 0, false
	}
	d.Downloads++
	return d.Downloads, true
}

func (s *Store) DeleteDocument(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return false
	}
	delete(s.documents, id)
	return true
}
