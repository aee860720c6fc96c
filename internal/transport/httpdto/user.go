package httpdto

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
