package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Evaluation struct {
	ID          int64     `db:"id" json:"id"`
	StudentName string    `db:"student_name" json:"student_name"`
	StudentID   string    `db:"student_id" json:"student_id"`
	Course      string    `db:"course" json:"course"`
	Date        string    `db:"date" json:"date"`
	Score       *float64  `db:"score" json:"score"`
	Comments    string    `db:"comments" json:"comments"`
	PinDigest   string    `db:"pin_digest" json:"-"`
	PinHint     string    `db:"pin_hint" json:"pin_hint"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// EvaluationSummary is the row shape of the admin list.
type EvaluationSummary struct {
	ID          int64     `db:"id"`
	StudentName string    `db:"student_name"`
	StudentID   string    `db:"student_id"`
	Course      string    `db:"course"`
	Date        string    `db:"date"`
	Score       *float64  `db:"score"`
	PinHint     string    `db:"pin_hint"`
	CreatedAt   time.Time `db:"created_at"`
}

// EvaluationForm is what the teacher submits on /evaluations, after sanitizing.
type EvaluationForm struct {
	StudentName string `form:"student_name" validate:"required,max=200"`
	StudentID   string `form:"student_id" validate:"max=100"`
	Course      string `form:"course" validate:"max=200"`
	Date        string `form:"date" validate:"max=40"`
	Score       string `form:"score" validate:"max=40"`
	Comments    string `form:"comments" validate:"max=10000"`
	Pin         string `form:"view_code" validate:"required"`
}

var validate = validator.New()

func (f *EvaluationForm) Validate() error {
	return validate.Struct(f)
}

// FormatScore renders a nullable score the way the pages and the CSV show it.
func FormatScore(score *float64) string {
	if score == nil {
		return ""
	}
	return formatFloat(*score)
}
