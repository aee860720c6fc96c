package httpdto

type CreateChatRequest struct {
	Kind      string  `json:"kind" binding:"required"`
	Name      string  `json:"name"`
	AvatarURL string  `json:"avatar_url"`
	MemberIDs []int64 `json:"member_ids"`
}

type UpdateChatRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

type AddMemberRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	Admin  bool  `json:"admin"`
}
