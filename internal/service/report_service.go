package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"smartgrade_backend/internal/repository"
	"strconv"
	"time"
)

// ReportService 监考端报表：成绩册导出与学生均分
type ReportService struct {
	SubmissionRepo *repository.SubmissionRepository
	UserRepo       *repository.UserRepository
}

func NewReportService(submissionRepo *repository.SubmissionRepository, userRepo *repository.UserRepository) *ReportService {
	return &ReportService{
		SubmissionRepo: submissionRepo,
		UserRepo:       userRepo,
	}
}

// GradebookCSV 导出成绩册。
// 格式固定：表头 Date,Student Name,Assignment,Score，每条已判卷提交一行
func (s *ReportService) GradebookCSV() ([]byte, string, error) {
	subs, err := s.SubmissionRepo.ListGraded()
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Student Name", "Assignment", "Score"}); err != nil {
		return nil, "", err
	}
	for _, sub := range subs {
		record := []string{
			sub.SubmittedAt.Format("2006-01-02"),
			sub.StudentName,
			sub.TaskTitle,
			strconv.FormatFloat(sub.Score, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("grades_%d.csv", time.Now().UnixMilli())
	return buf.Bytes(), filename, nil
}

// StudentAverage 学生均分行
type StudentAverage struct {
	StudentID    uint    `json:"studentId"`
	StudentName  string  `json:"studentName"`
	Submissions  int     `json:"submissions"`
	AverageScore float64 `json:"averageScore"`
}

// StudentAverages 已审核学生的平均得分（四舍五入，无提交记为0）
func (s *ReportService) StudentAverages() ([]StudentAverage, error) {
	students, err := s.UserRepo.ListApprovedStudents()
	if err != nil {
		return nil, err
	}

	rows := make([]StudentAverage, 0, len(students))
	for _, student := range students {
		subs, err := s.SubmissionRepo.ListGradedByStudent(student.ID)
		if err != nil {
			return nil, err
		}
		row := StudentAverage{
			StudentID:   student.ID,
			StudentName: student.Name,
			Submissions: len(subs),
		}
		if len(subs) > 0 {
			total := 0.0
			for _, sub := range subs {
				total += sub.Score
			}
			row.AverageScore = math.Round(total / float64(len(subs)))
		}
		rows = append(rows, row)
	}
	return rows, nil
}
