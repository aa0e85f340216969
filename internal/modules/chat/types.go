package chat

type createChatDTO struct {
	FileKey  string `json:"file_key"  binding:"required"`
	FileName string `json:"file_name" binding:"required"`
}

type sendMessageDTO struct {
	Content string `json:"content" binding:"required"`
	Model   string `json:"model"`
}
