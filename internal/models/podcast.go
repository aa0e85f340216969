package models

// PodcastModel holds the generated episode script and the durable URL of the
// synthesized audio. At most one per chat.
type PodcastModel struct {
	Base
	ChatID   string `json:"chat_id"   gorm:"type:char(36);not null;uniqueIndex"`
	Script   string `json:"script"    gorm:"type:longtext;not null"`
	AudioURL string `json:"audio_url" gorm:"not null"`
}

func (PodcastModel) TableName() string { return "podcasts" }
