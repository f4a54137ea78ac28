package model

import "time"

type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "DRAFT"
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionGraded    SubmissionStatus = "GRADED"
)

// Submission 学生针对某任务的提交记录，含AI评分结果
// swagger:model Submission
type Submission struct {
	UUIDBase
	TaskID      string           `gorm:"index;type:varchar(36)" json:"taskId"`
	TaskTitle   string           `gorm:"size:255" json:"taskTitle"` // 冗余存储，任务删除后仍可读
	StudentID   uint             `gorm:"index" json:"studentId"`
	StudentName string           `gorm:"size:100" json:"studentName"`
	Answers     []Answer         `gorm:"foreignKey:SubmissionID" json:"answers,omitempty"`
	Feedback    string           `gorm:"type:text" json:"feedback"`
	Score       float64          `gorm:"default:0" json:"score"`
	SubmittedAt time.Time        `json:"submittedAt"`
	Status      SubmissionStatus `gorm:"size:20;index" json:"status"`

	// 上传文档在对象存储中的位置
	DocumentURL  string `gorm:"size:512" json:"documentUrl"`
	DocumentKey  string `gorm:"size:255" json:"-"`
	DocumentName string `gorm:"size:255" json:"documentName"`
}

func (Submission) TableName() string {
	return "submissions"
}

// Answer 遗留的逐题作答记录，当前提交流程不再写入
type Answer struct {
	BaseModel
	SubmissionID string `gorm:"index;type:varchar(36)" json:"submissionId"`
	QuestionID   string `gorm:"type:varchar(36)" json:"questionId"`
	Text         string `gorm:"type:text" json:"text"`
}

func (Answer) TableName() string {
	return "answers"
}
