package models

// MCQModel is one generated multiple-choice question. Options are stored as
// a JSON-serialized string array.
type MCQModel struct {
	Base
	ChatID        string   `json:"chat_id"        gorm:"type:char(36);not null;index"`
	Question      string   `json:"question"       gorm:"type:text;not null"`
	Options       []string `json:"options"        gorm:"type:text;serializer:json;not null"`
	CorrectAnswer string   `json:"correct_answer" gorm:"type:text;not null"`
}

func (MCQModel) TableName() string { return "mcqs" }
