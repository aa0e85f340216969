package models

// MessageRole distinguishes user turns from assistant turns. The assistant
// role is stored as "system" for wire compatibility with the original schema.
type MessageRole string

const (
	RoleUser   MessageRole = "user"
	RoleSystem MessageRole = "system"
)

// MessageModel is one turn of a conversation. Messages are append-only and
// ordered by creation time.
type MessageModel struct {
	Base
	ChatID  string      `json:"chat_id" gorm:"type:char(36);not null;index"`
	Content string      `json:"content" gorm:"type:longtext;not null"`
	Role    MessageRole `json:"role"    gorm:"type:varchar(16);not null"`
}

func (MessageModel) TableName() string { return "messages" }
