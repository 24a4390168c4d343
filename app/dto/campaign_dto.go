package dto

import (
	"time"
)

// StartCampaignRequest represents the request to start a new campaign workflow
type StartCampaignRequest struct {
	ClientID           uint    `json:"-"`
	ProductName        string  `json:"product_name" validate:"required,max=255"`
	BrandName          string  `json:"brand_name" validate:"required,max=255"`
	ProductDescription string  `json:"product_description" validate:"omitempty,max=2000"`
	TargetAudience     string  `json:"target_audience" validate:"omitempty,max=1000"`
	CampaignGoal       string  `json:"campaign_goal" validate:"omitempty,max=1000"`
	ProductNiche       string  `json:"product_niche" validate:"required,max=100"`
	TotalBudget        float64 `json:"total_budget" validate:"required,gt=0"`
}

// StartCampaignResponse represents the response to start a new campaign workflow
type StartCampaignResponse struct {
	Message                  string `json:"message"`
	TaskID                   string `json:"task_id"`
	UUID                     string `json:"uuid"`
	Status                   string `json:"status"`
	Stage                    string `json:"stage"`
	EstimatedDurationMinutes int    `json:"estimated_duration_minutes"`
	CreatedAt                string `json:"created_at"`
}

// CampaignStatusRequest represents the request to read a campaign's live status
type CampaignStatusRequest struct {
	TaskID   string `json:"-"`
	ClientID uint   `json:"-"`
}

// NegotiationStatusDTO represents one creator negotiation in a status response
type NegotiationStatusDTO struct {
	CreatorID   uint     `json:"creator_id"`
	CreatorName string   `json:"creator_name,omitempty"`
	Phase       string   `json:"phase"`
	OfferedRate float64  `json:"offered_rate"`
	FinalRate   *float64 `json:"final_rate,omitempty"`
	LastError   string   `json:"last_error,omitempty"`
}

// CampaignStatusResponse represents the live status of a campaign workflow
type CampaignStatusResponse struct {
	TaskID                   string                 `json:"task_id"`
	Stage                    string                 `json:"stage"`
	Progress                 int                    `json:"progress"`
	CreatorsFound            int                    `json:"creators_found"`
	CompletedNegotiations    int                    `json:"completed_negotiations"`
	SuccessfulNegotiations   int                    `json:"successful_negotiations"`
	ContractsGenerated       int                    `json:"contracts_generated"`
	TotalBudget              float64                `json:"total_budget"`
	BudgetCommitted          float64                `json:"budget_committed"`
	EstimatedDurationMinutes int                    `json:"estimated_duration_minutes"`
	LastError                string                 `json:"last_error,omitempty"`
	Negotiations             []NegotiationStatusDTO `json:"negotiations"`
	StartedAt                time.Time              `json:"started_at"`
	FinishedAt               *time.Time             `json:"finished_at,omitempty"`
}

// ListCampaignsRequest represents the request to list a client's campaigns
type ListCampaignsRequest struct {
	ClientID uint `json:"-"`
	Page     int  `json:"page" validate:"omitempty,min=1"`
	PageSize int  `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// CampaignSummaryDTO represents one campaign in a list response
type CampaignSummaryDTO struct {
	UUID               string     `json:"uuid"`
	TaskID             string     `json:"task_id"`
	Stage              string     `json:"stage"`
	ProductName        string     `json:"product_name"`
	BrandName          string     `json:"brand_name"`
	ProductNiche       string     `json:"product_niche"`
	TotalBudget        float64    `json:"total_budget"`
	BudgetCommitted    float64    `json:"budget_committed"`
	ContractsGenerated int        `json:"contracts_generated"`
	CreatedAt          time.Time  `json:"created_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
}

// PaginationDTO represents pagination metadata in list responses
type PaginationDTO struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// ListCampaignsResponse represents the response to list a client's campaigns
type ListCampaignsResponse struct {
	Message    string               `json:"message"`
	Items      []CampaignSummaryDTO `json:"items"`
	Pagination PaginationDTO        `json:"pagination"`
}

// CancelCampaignRequest represents the request to cancel a running campaign
type CancelCampaignRequest struct {
	TaskID   string `json:"-"`
	ClientID uint   `json:"-"`
}

// CancelCampaignResponse represents the response to cancel a running campaign
type CancelCampaignResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
	Stage   string `json:"stage"`
}

// CampaignReportRequest represents the request to export a campaign report
type CampaignReportRequest struct {
	TaskID   string `json:"-"`
	ClientID uint   `json:"-"`
}

// CampaignReportResponse carries the rendered spreadsheet for download
type CampaignReportResponse struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
}
