package feed

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core"
	"github.com/nqhuy/edusystem/core/post"
)

const maxImages = 5

var (
	ErrEmptyContent   = errors.New("content must not be empty")
	ErrTooManyImages  = fmt.Errorf("a post can carry at most %d images", maxImages)
	ErrBadAttachment  = errors.New("only PDF or Word attachments are accepted")
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	ErrUploadInFlight = errors.New("an upload is already in flight")
)

var allowedAttachmentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

type (
	// PostCreator is what the composer needs from the posts resource client.
	PostCreator interface {
		Create(ctx context.Context, np post.NewPost) (post.Post, error)
	}

	// Uploader is what the composer needs from the uploads resource client.
	Uploader interface {
		UploadDocument(ctx context.Context, filename string, file io.Reader) (post.Attachment, error)
	}

	draftImage struct {
		data []byte
		mime string
	}
)

// Composer accumulates one draft post: free text (possibly embedding math
// markup), up to five images and any number of document attachments.
// Documents are uploaded individually as they are attached; images are
// data-URL encoded at submission time. On success the new post is unshifted
// into the feed and the draft is cleared.
type Composer struct {
	posts    PostCreator
	uploads  Uploader
	feed     *Controller
	notifier core.Notifier

	mu          sync.Mutex
	content     string
	subject     string
	images      []draftImage
	attachments []post.Attachment
	uploading   bool
	creating    bool
}

func NewComposer(posts PostCreator, uploads Uploader, feed *Controller, notifier core.Notifier) *Composer {
	if notifier == nil {
		notifier = core.NopNotifier{}
	}
	return &Composer{
		posts:    posts,
		uploads:  uploads,
		feed:     feed,
		notifier: notifier,
		subject:  "toan",
	}
}

func (cp *Composer) SetContent(content string) {
	cp.mu.Lock()
	cp.content = content
	cp.mu.Unlock()
}

func (cp *Composer) Content() string {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.content
}

func (cp *Composer) SetSubject(subject string) {
	cp.mu.Lock()
	cp.subject = subject
	cp.mu.Unlock()
}

// InsertFormula appends a block-math snippet to the draft content.
func (cp *Composer) InsertFormula(formula string) {
	formula = core.CleanString(formula)
	if formula == "" {
		return
	}
	cp.mu.Lock()
	block := "$$" + formula + "$$"
	if cp.content != "" {
		cp.content += "\n\n" + block
	} else {
		cp.content = block
	}
	cp.mu.Unlock()
}

// AddImage attaches one already-encoded image to the draft.
func (cp *Composer) AddImage(data []byte, mimeType string) error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if len(cp.images) >= maxImages {
		return ErrTooManyImages
	}
	cp.images = append(cp.images, draftImage{data: data, mime: mimeType})
	return nil
}

func (cp *Composer) RemoveImage(idx int) {
	cp.mu.Lock()
	if idx >= 0 && idx < len(cp.images) {
		cp.images = append(cp.images[:idx], cp.images[idx+1:]...)
	}
	cp.mu.Unlock()
}

func (cp *Composer) ImageCount() int {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return len(cp.images)
}

// AttachDocument uploads one document and keeps the returned attachment
// metadata on the draft. One upload at a time.
func (cp *Composer) AttachDocument(ctx context.Context, filename, mimeType string, file io.Reader) error {
	if !allowedAttachmentTypes[mimeType] {
		cp.notifier.Error(ErrBadAttachment.Error())
		return ErrBadAttachment
	}

	cp.mu.Lock()
	if cp.uploading {
		cp.mu.Unlock()
		return ErrUploadInFlight
	}
	cp.uploading = true
	cp.mu.Unlock()
	defer func() {
		cp.mu.Lock()
		cp.uploading = false
		cp.mu.Unlock()
	}()

	att, err := cp.uploads.UploadDocument(ctx, filename, file)
	if err != nil {
		cp.notifier.Error("could not upload the document: " + core.Classify(err))
		return err
	}

	cp.mu.Lock()
	cp.attachments = append(cp.attachments, att)
	cp.mu.Unlock()
	cp.notifier.Success("document uploaded")
	return nil
}

func (cp *Composer) RemoveAttachment(idx int) {
	cp.mu.Lock()
	if idx >= 0 && idx < len(cp.attachments) {
		cp.attachments = append(cp.attachments[:idx], cp.attachments[idx+1:]...)
	}
	cp.mu.Unlock()
}

func (cp *Composer) AttachmentCount() int {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return len(cp.attachments)
}

// Empty reports whether the draft has no usable text content. Images and
// attachments alone do not make a submittable post.
func (cp *Composer) Empty() bool {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return core.CleanString(cp.content) == ""
}

// Submit assembles the creation payload, posts it and unshifts the created
// post into the feed. An empty (after trim) draft is rejected before any
// network call; only one submission may be in flight.
func (cp *Composer) Submit(ctx context.Context) (post.Post, error) {
	cp.mu.Lock()
	content := core.CleanString(cp.content)
	if content == "" {
		cp.mu.Unlock()
		return post.Post{}, ErrEmptyContent
	}
	if cp.creating {
		cp.mu.Unlock()
		return post.Post{}, ErrSubmitInFlight
	}
	cp.creating = true

	imageURLs := make([]string, 0, len(cp.images))
	for _, img := range cp.images {
		imageURLs = append(imageURLs, dataURL(img))
	}
	attachments := make([]post.Attachment, len(cp.attachments))
	copy(attachments, cp.attachments)
	subject := cp.subject
	cp.mu.Unlock()

	defer func() {
		cp.mu.Lock()
		cp.creating = false
		cp.mu.Unlock()
	}()

	np := post.NewPost{
		Content: content,
		Subject: subject,
		Type:    postType(len(imageURLs), len(attachments)),
	}
	if len(imageURLs) > 0 {
		// older readers only understand the single image_url field
		np.ImageURL = imageURLs[0]
		np.ImageURLs = imageURLs
	}
	if len(attachments) > 0 {
		np.Attachments = attachments
	}
	if err := np.Validate(); err != nil {
		return post.Post{}, err
	}

	created, err := cp.posts.Create(ctx, np)
	if err != nil {
		cp.notifier.Error("could not publish the post: " + core.Classify(err))
		return post.Post{}, err
	}

	if cp.feed != nil {
		cp.feed.Insert(created)
	}
	cp.reset()
	cp.notifier.Success("post published")
	return created, nil
}

// reset clears all draft state. Image buffers are dropped explicitly so the
// backing arrays can be collected right away.
func (cp *Composer) reset() {
	cp.mu.Lock()
	cp.content = ""
	for i := range cp.images {
		cp.images[i] = draftImage{}
	}
	cp.images = nil
	cp.attachments = nil
	cp.mu.Unlock()
}

func postType(images, attachments int) string {
	switch {
	case images > 0:
		return post.TypeImage
	case attachments > 0:
		return post.TypeDocument
	default:
		return post.TypeText
	}
}

func dataURL(img draftImage) string {
	mime := img.mime
	if mime == "" {
		mime = "image/webp"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.data)
}
