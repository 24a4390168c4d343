package dto

// ListCreatorsRequest represents the request to list roster creators
type ListCreatorsRequest struct {
	Niche    string `json:"niche" validate:"omitempty,max=100"`
	Page     int    `json:"page" validate:"omitempty,min=1"`
	PageSize int    `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// CreatorDTO represents one creator profile in list responses
type CreatorDTO struct {
	UUID           string   `json:"uuid"`
	Name           string   `json:"name"`
	Platform       string   `json:"platform"`
	Handle         string   `json:"handle"`
	Niche          string   `json:"niche"`
	FollowerCount  int64    `json:"follower_count"`
	EngagementRate float64  `json:"engagement_rate"`
	TypicalRate    float64  `json:"typical_rate"`
	Tier           string   `json:"tier"`
	Languages      []string `json:"languages,omitempty"`
	ContentTypes   []string `json:"content_types,omitempty"`
	Bio            string   `json:"bio,omitempty"`
}

// ListCreatorsResponse represents the response to list roster creators
type ListCreatorsResponse struct {
	Message    string        `json:"message"`
	Items      []CreatorDTO  `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}
