package rest

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/nqhuy/edusystem/core/exam"
)

// ExamClient wraps the exams resource.
type ExamClient struct {
	api *Client
}

func NewExamClient(api *Client) *ExamClient {
	return &ExamClient{api: api}
}

func (ec *ExamClient) List(ctx context.Context, filter exam.QueryFilter) ([]exam.Exam, error) {
	endpoint := "/api/exams"
	if query := filter.Values().Encode(); query != "" {
		endpoint += "?" + query
	}
	var exams []exam.Exam
	if err := ec.api.request(ctx, endpoint, requestOptions{}, &exams); err != nil {
		return nil, errors.Wrap(err, "listing exams")
	}
	return exams, nil
}

func (ec *ExamClient) Get(ctx context.Context, examID string) (exam.Exam, error) {
	var e exam.Exam
	if err := ec.api.request(ctx, "/api/exams/"+examID, requestOptions{}, &e); err != nil {
		return exam.Exam{}, errors.Wrap(err, "fetching exam")
	}
	return e, nil
}

func (ec *ExamClient) Create(ctx context.Context, ne exam.NewExam) (exam.Exam, error) {
	var e exam.Exam
	opts := requestOptions{method: http.MethodPost, body: ne, requireAuth: true}
	if err := ec.api.request(ctx, "/api/exams", opts, &e); err != nil {
		return exam.Exam{}, errors.Wrap(err, "creating exam")
	}
	return e, nil
}

func (ec *ExamClient) Update(ctx context.Context, examID string, ne exam.NewExam) (exam.Exam, error) {
	var e exam.Exam
	opts := requestOptions{method: http.MethodPut, body: ne, requireAuth: true}
	if err := ec.api.request(ctx, "/api/exams/"+examID, opts, &e); err != nil {
		return exam.Exam{}, errors.Wrap(err, "updating exam")
	}
	return e, nil
}

func (ec *ExamClient) Delete(ctx context.Context, examID string) error {
	opts := requestOptions{method: http.MethodDelete, requireAuth: true}
	if err := ec.api.request(ctx, "/api/exams/"+examID, opts, nil); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return nil
}
