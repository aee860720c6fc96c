package httpdto

type CreateStatusRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}
