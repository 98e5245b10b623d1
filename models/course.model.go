package models

import (
	"time"

	"gorm.io/datatypes"
)

// PracticeExamSlug identifies the free practice exam every student is enrolled in.
const PracticeExamSlug = "exam2"

type Lesson struct {
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

type Section struct {
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

type Curriculum struct {
	Sections []Section `json:"sections"`
}

type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Points        float64  `json:"points,omitempty"`
}

// Weight is the question's points, 1 when unset.
func (q Question) Weight() float64 {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

type Exam struct {
	Questions    []Question `json:"questions"`
	PassingScore float64    `json:"passingScore,omitempty"`
	TimeLimit    int        `json:"timeLimit,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
}

// Threshold is the passing percentage, 70 when unset.
func (e Exam) Threshold() float64 {
	if e.PassingScore <= 0 {
		return 70
	}
	return e.PassingScore
}

// Public returns a copy without correct answers.
func (e Exam) Public() Exam {
	out := e
	out.Questions = make([]Question, len(e.Questions))
	for i, q := range e.Questions {
		q.CorrectAnswer = -1
		out.Questions[i] = q
	}
	return out
}

type Course struct {
	ID                  uint                            `gorm:"primaryKey" json:"id"`
	Name                string                          `gorm:"not null" json:"name"`
	Description         string                          `gorm:"not null" json:"description"`
	CourseNumber        string                          `gorm:"uniqueIndex;not null" json:"courseNumber"`
	Slug                string                          `gorm:"uniqueIndex;not null" json:"slug"`
	Price               float64                         `gorm:"not null;default:0" json:"price"`
	Duration            int                             `json:"duration,omitempty"`
	Curriculum          *datatypes.JSONType[Curriculum] `json:"curriculum,omitempty"`
	Exam                *datatypes.JSONType[Exam]       `json:"exam,omitempty"`
	ExamPaperURL        string                          `json:"examPaperUrl,omitempty"`
	CertificateTemplate string                          `json:"certificateTemplate,omitempty"`
	TeachableCourseID   *string                         `gorm:"uniqueIndex" json:"teachableCourseId,omitempty"`
	IsActive            bool                            `gorm:"default:true" json:"isActive"`
	CreatedAt           time.Time                       `json:"createdAt"`
	UpdatedAt           time.Time                       `json:"updatedAt"`
}

// ExamDefinition returns the course exam, or nil if none is configured.
func (c Course) ExamDefinition() *Exam {
	if c.Exam == nil {
		return nil
	}
	e := c.Exam.Data()
	return &e
}

// SetExam stores e as the course exam.
func (c *Course) SetExam(e Exam) {
	j := datatypes.NewJSONType(e)
	c.Exam = &j
}

// SetCurriculum stores cur as the course curriculum.
func (c *Course) SetCurriculum(cur Curriculum) {
	j := datatypes.NewJSONType(cur)
	c.Curriculum = &j
}

// Public strips exam answers for student-facing responses.
func (c Course) Public() Course {
	out := c
	if e := c.ExamDefinition(); e != nil {
		out.SetExam(e.Public())
	}
	return out
}
