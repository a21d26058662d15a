package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"grading_service/internal/domain"
	"grading_service/internal/grading"
	"grading_service/internal/service"
	"grading_service/pkg/logger"
)

const maxBodyBytes = 1 << 20

type GradingHandler struct {
	topics      service.TopicServiceInterface
	keys        service.AnswerKeyServiceInterface
	submissions service.SubmissionServiceInterface
	logger      *logger.Logger
}

func NewGradingHandler(
	topics service.TopicServiceInterface,
	keys service.AnswerKeyServiceInterface,
	submissions service.SubmissionServiceInterface,
	log *logger.Logger,
) *GradingHandler {
	return &GradingHandler{
		topics:      topics,
		keys:        keys,
		submissions: submissions,
		logger:      log,
	}
}

func (h *GradingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/topics", h.CreateTopic)
	r.Put("/topics/{topic_id}/keys/{test_code}", h.UpdateAnswerKey)
	r.Post("/submissions", h.CreateSubmission)
}

// NewRouter assembles the full HTTP surface of the service.
func NewRouter(h *GradingHandler, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(NewLoggingMiddleware(log))
	r.Use(func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, maxBodyBytes)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	h.RegisterRoutes(r)
	return r
}

type createTopicRequest struct {
	Title         string            `json:"title"`
	QuestionCount int               `json:"question_count"`
	Deadline      *time.Time        `json:"deadline,omitempty"`
	AnswerKeys    map[string]string `json:"answer_keys,omitempty"`
}

type topicResponse struct {
	ID            uuid.UUID         `json:"id"`
	Title         string            `json:"title"`
	QuestionCount int               `json:"question_count"`
	Deadline      *time.Time        `json:"deadline"`
	AnswerKeys    map[string]string `json:"answer_keys"`
}

func (h *GradingHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req createTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	topic, err := h.topics.CreateTopic(r.Context(), service.CreateTopicRequest{
		Title:         req.Title,
		QuestionCount: req.QuestionCount,
		Deadline:      req.Deadline,
		AnswerKeys:    req.AnswerKeys,
	})
	if err != nil {
		h.writeError(w, r, "failed to create topic", err)
		return
	}

	writeJSON(w, http.StatusCreated, topicResponse{
		ID:            topic.ID,
		Title:         topic.Title,
		QuestionCount: topic.QuestionCount,
		Deadline:      topic.Deadline,
		AnswerKeys:    topic.AnswerKeys,
	})
}

type updateKeyRequest struct {
	Key string `json:"key"`
}

type gradeChange struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	StudentID    uuid.UUID `json:"student_id"`
	OldGrade     *int      `json:"old_grade"`
	NewGrade     int       `json:"new_grade"`
	Delta        int       `json:"delta"`
	Voided       bool      `json:"voided"`
	Notified     bool      `json:"notified"`
}

type failedWrite struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	NewGrade     int       `json:"new_grade"`
	Error        string    `json:"error"`
}

type updateKeyResponse struct {
	Rejected             bool          `json:"rejected"`
	ExpectedQuestions    int           `json:"expected_questions,omitempty"`
	GotQuestions         int           `json:"got_questions,omitempty"`
	Key                  string        `json:"key,omitempty"`
	Form                 string        `json:"form,omitempty"`
	LowConfidence        bool          `json:"low_confidence"`
	ChangedQuestions     []int         `json:"changed_questions,omitempty"`
	Updated              int           `json:"updated"`
	Skipped              int           `json:"skipped"`
	Unchanged            int           `json:"unchanged"`
	NotStarted           int           `json:"not_started,omitempty"`
	FailedWrites         []failedWrite `json:"failed_writes,omitempty"`
	NotificationFailures int           `json:"notification_failures"`
	Changes              []gradeChange `json:"changes"`
}

func (h *GradingHandler) UpdateAnswerKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawTopicID, err := parsePathParam(r, "topic_id")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	topicID, err := parseUUID(rawTopicID, "topic_id")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	testCode, err := parsePathParam(r, "test_code")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.keys.UpdateAnswerKey(ctx, topicID, testCode, req.Key)
	if err != nil {
		if summary != nil && summary.Rejected {
			writeJSON(w, http.StatusUnprocessableEntity, updateKeyResponse{
				Rejected:          true,
				ExpectedQuestions: summary.ExpectedQuestions,
				GotQuestions:      summary.GotQuestions,
			})
			return
		}
		h.writeError(w, r, "failed to update answer key", err)
		return
	}

	writeJSON(w, http.StatusOK, toUpdateKeyResponse(summary))
}

func toUpdateKeyResponse(summary *service.UpdateSummary) updateKeyResponse {
	resp := updateKeyResponse{
		Key:                  summary.CanonicalKey,
		Form:                 summary.Form,
		LowConfidence:        summary.LowConfidence,
		ChangedQuestions:     summary.ChangedQuestions,
		Updated:              summary.UpdatedCount,
		Skipped:              summary.SkippedCount,
		Unchanged:            summary.UnchangedCount,
		NotStarted:           summary.NotStarted,
		NotificationFailures: summary.NotificationFailures,
		Changes:              make([]gradeChange, 0, len(summary.ChangeEvents)),
	}

	failed := make(map[uuid.UUID]bool)
	for _, d := range summary.Deliveries {
		if d.Err != nil {
			failed[d.Event.SubmissionID] = true
		}
	}
	notified := len(summary.Deliveries) > 0

	for _, e := range summary.ChangeEvents {
		resp.Changes = append(resp.Changes, gradeChange{
			SubmissionID: e.SubmissionID,
			StudentID:    e.StudentID,
			OldGrade:     e.OldGrade,
			NewGrade:     e.NewGrade,
			Delta:        e.Delta(),
			Voided:       e.Voided,
			Notified:     notified && !failed[e.SubmissionID],
		})
	}
	for _, f := range summary.FailedWrites {
		resp.FailedWrites = append(resp.FailedWrites, failedWrite{
			SubmissionID: f.SubmissionID,
			NewGrade:     f.NewGrade,
			Error:        f.Err.Error(),
		})
	}
	return resp
}

type createSubmissionRequest struct {
	StudentID string `json:"student_id"`
	TopicID   string `json:"topic_id"`
	TestCode  string `json:"test_code"`
	Answers   string `json:"answers"`
}

type submissionResponse struct {
	ID          uuid.UUID `json:"id"`
	StudentID   uuid.UUID `json:"student_id"`
	TopicID     uuid.UUID `json:"topic_id"`
	TestCode    string    `json:"test_code"`
	SubmittedAt time.Time `json:"submitted_at"`
	Grade       *int      `json:"grade"`
}

func (h *GradingHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	studentID, err := parseUUID(req.StudentID, "student_id")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	topicID, err := parseUUID(req.TopicID, "topic_id")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	submission, err := h.submissions.Submit(r.Context(), service.SubmitRequest{
		StudentID: studentID,
		TopicID:   topicID,
		TestCode:  req.TestCode,
		Answers:   req.Answers,
	})
	if err != nil {
		h.writeError(w, r, "failed to create submission", err)
		return
	}

	writeJSON(w, http.StatusCreated, toSubmissionResponse(submission))
}

func toSubmissionResponse(s *domain.Submission) submissionResponse {
	return submissionResponse{
		ID:          s.ID,
		StudentID:   s.StudentID,
		TopicID:     s.TopicID,
		TestCode:    s.TestCode,
		SubmittedAt: s.SubmittedAt,
		Grade:       s.Grade,
	}
}

func (h *GradingHandler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	statusCode := mapErr(err)
	if statusCode == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), msg, zap.Error(err))
	}

	var mismatch *grading.LengthMismatchError
	if errors.As(err, &mismatch) {
		writeErrorJSON(w, statusCode, fmt.Sprintf("expected %d answers, got %d", mismatch.Expected, mismatch.Got))
		return
	}
	writeErrorJSON(w, statusCode, errorMessage(err, statusCode))
}
