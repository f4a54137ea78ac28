package model

type TaskStatus string

const (
	TaskDraft    TaskStatus = "DRAFT"
	TaskActive   TaskStatus = "ACTIVE"
	TaskArchived TaskStatus = "ARCHIVED"
)

// AssignmentTask 监考员布置的作业任务
// swagger:model AssignmentTask
type AssignmentTask struct {
	UUIDBase
	ProctorID    uint       `gorm:"index" json:"proctorId"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Instructions string     `gorm:"type:text" json:"instructions"`
	Status       TaskStatus `gorm:"size:20;default:'DRAFT';index" json:"status"`
	Questions    []Question `gorm:"foreignKey:TaskID" json:"questions,omitempty"`
}

func (AssignmentTask) TableName() string {
	return "assignment_tasks"
}

// Question 任务下的评分小题
type Question struct {
	UUIDBase
	TaskID   string `gorm:"index;type:varchar(36)" json:"taskId"`
	Text     string `gorm:"type:text;not null" json:"text"`
	Marks    int    `gorm:"default:10" json:"marks"`
	Position int    `gorm:"default:0" json:"position"`
}

func (Question) TableName() string {
	return "questions"
}

// TotalMarks 任务满分（各小题分值之和）
func (t *AssignmentTask) TotalMarks() int {
	total := 0
	for _, q := range t.Questions {
		total += q.Marks
	}
	return total
}
