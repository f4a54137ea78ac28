package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"smartgrade_backend/internal/config"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/internal/repository"
	"smartgrade_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type submissionFixture struct {
	db      *gorm.DB
	svc     *SubmissionService
	tasks   *TaskService
	respond http.HandlerFunc
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	f := &submissionFixture{db: newTestDB(t)}
	f.respond = func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse(`{"feedback":"Well done.","score":92}`))
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.respond(w, r)
	}))
	t.Cleanup(server.Close)

	storageCfg := &config.StorageConfig{Type: "local", LocalPath: t.TempDir()}
	storage := &StorageService{Provider: &LocalStorageProvider{Config: storageCfg}}

	taskRepo := repository.NewTaskRepository(f.db)
	f.tasks = NewTaskService(taskRepo, nil)
	f.svc = NewSubmissionService(
		repository.NewSubmissionRepository(f.db),
		taskRepo,
		storage,
		newTestGradingService(server.URL),
	)
	return f
}

// newActiveTask 建一个两题、总分25的已发布任务
func (f *submissionFixture) newActiveTask(t *testing.T) *model.AssignmentTask {
	t.Helper()

	task, err := f.tasks.Create(1, "Quiz 1", "Answer all questions.", []QuestionInput{
		{Text: "Explain polymorphism.", Marks: 10},
		{Text: "Describe the OSI model.", Marks: 15},
	})
	require.NoError(t, err)

	task, err = f.tasks.SetStatus(task.ID, 1, model.TaskActive)
	require.NoError(t, err)
	return task
}

func (f *submissionFixture) rowsFor(t *testing.T, studentID uint, taskID string) []model.Submission {
	t.Helper()
	var subs []model.Submission
	require.NoError(t, f.db.Where("student_id = ? AND task_id = ?", studentID, taskID).Find(&subs).Error)
	return subs
}

func alice() *util.Claims {
	return &util.Claims{UserID: 7, Name: "Alice Johnson", Role: model.Student, Email: "alice@example.com"}
}

func pdfDoc(name string) *UploadedDocument {
	return &UploadedDocument{Name: name, ContentType: "application/pdf", Data: []byte("%PDF-1.4 test body")}
}

func TestSaveDraftUpsert(t *testing.T) {
	f := newSubmissionFixture(t)
	task := f.newActiveTask(t)
	student := alice()

	first, err := f.svc.SaveDraft(context.Background(), student, task.ID, pdfDoc("attempt-1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionDraft, first.Status)
	assert.Equal(t, "Draft saved. Not yet graded.", first.Feedback)

	second, err := f.svc.SaveDraft(context.Background(), student, task.ID, pdfDoc("attempt-2.pdf"))
	require.NoError(t, err)

	rows := f.rowsFor(t, student.UserID, task.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, "attempt-2.pdf", rows[0].DocumentName)
	assert.Equal(t, model.SubmissionDraft, rows[0].Status)
}

func TestSaveDraftRejectsNonPDF(t *testing.T) {
	f := newSubmissionFixture(t)
	task := f.newActiveTask(t)

	tests := []struct {
		name string
		doc  *UploadedDocument
	}{
		{"wrong content type and extension", &UploadedDocument{Name: "essay.png", ContentType: "image/png", Data: []byte("x")}},
		{"empty payload", &UploadedDocument{Name: "essay.pdf", ContentType: "application/pdf", Data: nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SaveDraft(context.Background(), alice(), task.ID, tt.doc)
			assert.ErrorIs(t, err, util.ErrNotPDF)
		})
	}
}

func TestSaveDraftTaskGate(t *testing.T) {
	f := newSubmissionFixture(t)

	// 任务保持DRAFT状态，学生不可提交
	task, err := f.tasks.Create(1, "Unpublished", "", []QuestionInput{{Text: "Q", Marks: 5}})
	require.NoError(t, err)

	_, err = f.svc.SaveDraft(context.Background(), alice(), task.ID, pdfDoc("a.pdf"))
	assert.ErrorIs(t, err, util.ErrTaskNotActive)

	_, err = f.svc.SaveDraft(context.Background(), alice(), "no-such-task", pdfDoc("a.pdf"))
	assert.ErrorIs(t, err, util.ErrTaskNotFound)
}

func TestSubmitFinalReplacesDraft(t *testing.T) {
	f := newSubmissionFixture(t)
	task := f.newActiveTask(t)
	student := alice()

	_, err := f.svc.SaveDraft(context.Background(), student, task.ID, pdfDoc("draft.pdf"))
	require.NoError(t, err)

	sub, err := f.svc.SubmitFinal(context.Background(), student, task.ID, pdfDoc("final.pdf"))
	require.NoError(t, err)

	assert.Equal(t, model.SubmissionGraded, sub.Status)
	assert.Equal(t, float64(92), sub.Score)
	assert.Equal(t, "Well done.", sub.Feedback)
	assert.Equal(t, "Quiz 1", sub.TaskTitle)
	assert.Equal(t, "Alice Johnson", sub.StudentName)
	assert.Contains(t, sub.DocumentURL, "/uploads/submissions/")

	rows := f.rowsFor(t, student.UserID, task.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.SubmissionGraded, rows[0].Status)
	assert.Equal(t, "final.pdf", rows[0].DocumentName)
}

// 判卷失败时账本必须保持原样：草稿还在，没有判卷行
func TestSubmitFinalGradingFailureLeavesLedgerUntouched(t *testing.T) {
	f := newSubmissionFixture(t)
	task := f.newActiveTask(t)
	student := alice()

	_, err := f.svc.SaveDraft(context.Background(), student, task.ID, pdfDoc("draft.pdf"))
	require.NoError(t, err)

	f.respond = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}

	_, err = f.svc.SubmitFinal(context.Background(), student, task.ID, pdfDoc("final.pdf"))
	assert.ErrorIs(t, err, util.ErrGradingUnavailable)

	rows := f.rowsFor(t, student.UserID, task.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.SubmissionDraft, rows[0].Status)
	assert.Equal(t, "draft.pdf", rows[0].DocumentName)
}

func TestSubmitFinalWithoutDraft(t *testing.T) {
	f := newSubmissionFixture(t)
	task := f.newActiveTask(t)

	sub, err := f.svc.SubmitFinal(context.Background(), alice(), task.ID, pdfDoc("final.pdf"))
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionGraded, sub.Status)

	rows := f.rowsFor(t, alice().UserID, task.ID)
	assert.Len(t, rows, 1)
}

func TestListGradedExcludesDrafts(t *testing.T) {
	f := newSubmissionFixture(t)
	task := f.newActiveTask(t)

	bob := &util.Claims{UserID: 8, Name: "Bob Smith", Role: model.Student}
	_, err := f.svc.SaveDraft(context.Background(), bob, task.ID, pdfDoc("draft.pdf"))
	require.NoError(t, err)

	_, err = f.svc.SubmitFinal(context.Background(), alice(), task.ID, pdfDoc("final.pdf"))
	require.NoError(t, err)

	graded, err := f.svc.ListGraded()
	require.NoError(t, err)
	require.Len(t, graded, 1)
	assert.Equal(t, "Alice Johnson", graded[0].StudentName)

	mine, err := f.svc.ListForStudent(bob.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.SubmissionDraft, mine[0].Status)
}
