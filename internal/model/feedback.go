package model

type FeedbackCategory string

const (
	FeedbackBug     FeedbackCategory = "bug"
	FeedbackIdea    FeedbackCategory = "idea"
	FeedbackContent FeedbackCategory = "content"
	FeedbackOther   FeedbackCategory = "other"
)

type FeedbackRequest struct {
	Category FeedbackCategory `json:"category" validate:"required,oneof=bug idea content other"`
	Message  string           `json:"message" validate:"required,min=1,max=2000"`
	PageURL  string           `json:"page_url,omitempty" validate:"omitempty,url"`
}

type FeedbackResponse struct {
	Delivered bool `json:"delivered"`
}
