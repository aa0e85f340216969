package models

// ChatModel binds a user, an uploaded PDF, and a conversation. Child rows
// (messages, flashcards, MCQs, podcast) cascade on delete.
type ChatModel struct {
	Base
	PDFName string `json:"pdf_name" gorm:"not null"`
	PDFURL  string `json:"pdf_url"  gorm:"not null"`
	FileKey string `json:"file_key" gorm:"not null;index"`
	UserID  string `json:"user_id"  gorm:"type:varchar(191);not null;index"`

	Messages   []MessageModel   `json:"-" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Flashcards []FlashcardModel `json:"-" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	MCQs       []MCQModel       `json:"-" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Podcast    *PodcastModel    `json:"-" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
}

func (ChatModel) TableName() string { return "chats" }
