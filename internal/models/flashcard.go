package models

// FlashcardModel is one generated study card.
type FlashcardModel struct {
	Base
	ChatID string `json:"chat_id" gorm:"type:char(36);not null;index"`
	Front  string `json:"front"   gorm:"type:text;not null"`
	Back   string `json:"back"    gorm:"type:text;not null"`
}

func (FlashcardModel) TableName() string { return "flashcards" }
