// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/wolfsbane9513/influencer-ai/app/dto"
	businessflow "github.com/wolfsbane9513/influencer-ai/business_flow"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// CampaignHandlerInterface defines the contract for campaign handlers
type CampaignHandlerInterface interface {
	StartCampaign(c fiber.Ctx) error
	GetCampaignStatus(c fiber.Ctx) error
	ListCampaigns(c fiber.Ctx) error
	CancelCampaign(c fiber.Ctx) error
	DownloadCampaignReport(c fiber.Ctx) error
}

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignFlow businessflow.CampaignFlow
	validator    *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignFlow businessflow.CampaignFlow) *CampaignHandler {
	return &CampaignHandler{
		campaignFlow: campaignFlow,
		validator:    validator.New(),
	}
}

func (h *CampaignHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CampaignHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// StartCampaign handles the campaign start process
// @Summary Start Campaign
// @Description Start a new influencer campaign workflow from a brief
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param request body dto.StartCampaignRequest true "Campaign brief"
// @Success 201 {object} dto.APIResponse{data=dto.StartCampaignResponse} "Campaign started successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) StartCampaign(c fiber.Ctx) error {
	var req dto.StartCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	// Get client information
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	// Get authenticated client ID from context
	clientID, ok := c.Locals("client_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Client ID not found in context", "MISSING_CLIENT_ID", nil)
	}
	req.ClientID = clientID

	// Call business logic with proper context
	result, err := h.campaignFlow.StartCampaign(h.createRequestContext(c, "/api/v1/campaigns"), &req, metadata)
	if err != nil {
		if businessflow.IsProductNameRequired(err) || businessflow.IsBrandNameRequired(err) ||
			businessflow.IsProductNicheRequired(err) || businessflow.IsTotalBudgetInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign validation failed", "CAMPAIGN_VALIDATION_FAILED", err.Error())
		}
		if businessflow.IsCampaignAlreadyRunning(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Campaign is already running", "CAMPAIGN_ALREADY_RUNNING", nil)
		}

		log.Println("Campaign start failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign start failed", "CAMPAIGN_START_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Campaign started successfully", result)
}

// GetCampaignStatus handles live campaign status reads
// @Summary Get Campaign Status
// @Description Read the live status of a campaign workflow by task ID
// @Tags Campaigns
// @Produce json
// @Param task_id path string true "Campaign task ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignStatusResponse} "Campaign status retrieved successfully"
// @Failure 403 {object} dto.APIResponse "Forbidden - campaign belongs to another client"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{task_id}/status [get]
func (h *CampaignHandler) GetCampaignStatus(c fiber.Ctx) error {
	taskID := c.Params("task_id")
	if taskID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Task ID is required", "MISSING_TASK_ID", nil)
	}

	clientID, ok := c.Locals("client_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Client ID not found in context", "MISSING_CLIENT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	req := &dto.CampaignStatusRequest{TaskID: taskID, ClientID: clientID}

	result, err := h.campaignFlow.GetCampaignStatus(h.createRequestContext(c, "/api/v1/campaigns/"+taskID+"/status"), req, metadata)
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsCampaignAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: campaign belongs to another client", "CAMPAIGN_ACCESS_DENIED", nil)
		}

		log.Println("Campaign status read failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read campaign status", "CAMPAIGN_STATUS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign status retrieved successfully", result)
}

// ListCampaigns handles listing the client's campaigns
// @Summary List Campaigns
// @Description List the authenticated client's campaigns, newest first
// @Tags Campaigns
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListCampaignsResponse} "Campaigns retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid pagination parameters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c fiber.Ctx) error {
	clientID, ok := c.Locals("client_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Client ID not found in context", "MISSING_CLIENT_ID", nil)
	}

	req := &dto.ListCampaignsRequest{ClientID: clientID}
	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			req.Page = page
		}
	}
	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		if pageSize, err := strconv.Atoi(pageSizeStr); err == nil {
			req.PageSize = pageSize
		}
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.ListCampaigns(h.createRequestContext(c, "/api/v1/campaigns"), req, metadata)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", err.Error())
		}

		log.Println("Campaign list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list campaigns", "CAMPAIGN_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// CancelCampaign handles campaign cancellation
// @Summary Cancel Campaign
// @Description Cancel a running campaign workflow
// @Tags Campaigns
// @Produce json
// @Param task_id path string true "Campaign task ID"
// @Success 200 {object} dto.APIResponse{data=dto.CancelCampaignResponse} "Campaign cancellation requested"
// @Failure 403 {object} dto.APIResponse "Forbidden - campaign belongs to another client"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Campaign is already terminal"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{task_id}/cancel [post]
func (h *CampaignHandler) CancelCampaign(c fiber.Ctx) error {
	taskID := c.Params("task_id")
	if taskID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Task ID is required", "MISSING_TASK_ID", nil)
	}

	clientID, ok := c.Locals("client_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Client ID not found in context", "MISSING_CLIENT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	req := &dto.CancelCampaignRequest{TaskID: taskID, ClientID: clientID}

	result, err := h.campaignFlow.CancelCampaign(h.createRequestContext(c, "/api/v1/campaigns/"+taskID+"/cancel"), req, metadata)
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsCampaignAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: campaign belongs to another client", "CAMPAIGN_ACCESS_DENIED", nil)
		}
		if businessflow.IsCampaignNotCancellable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Campaign is already terminal", "CAMPAIGN_NOT_CANCELLABLE", nil)
		}

		log.Println("Campaign cancellation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel campaign", "CAMPAIGN_CANCEL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign cancellation requested", result)
}

// DownloadCampaignReport handles the campaign report export
// @Summary Download Campaign Report
// @Description Download the campaign's negotiations and contracts as a spreadsheet
// @Tags Campaigns
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param task_id path string true "Campaign task ID"
// @Success 200 {file} binary "Report file"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Report not available yet"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{task_id}/report [get]
func (h *CampaignHandler) DownloadCampaignReport(c fiber.Ctx) error {
	taskID := c.Params("task_id")
	if taskID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Task ID is required", "MISSING_TASK_ID", nil)
	}

	clientID, ok := c.Locals("client_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Client ID not found in context", "MISSING_CLIENT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	req := &dto.CampaignReportRequest{TaskID: taskID, ClientID: clientID}

	result, err := h.campaignFlow.ExportCampaignReport(h.createRequestContext(c, "/api/v1/campaigns/"+taskID+"/report"), req, metadata)
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsCampaignAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: campaign belongs to another client", "CAMPAIGN_ACCESS_DENIED", nil)
		}
		if businessflow.IsReportNotAvailable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Report is not available yet", "REPORT_NOT_AVAILABLE", nil)
		}

		log.Println("Campaign report export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export campaign report", "CAMPAIGN_REPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.Filename+`"`)
	return c.Status(fiber.StatusOK).Send(result.Content)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *CampaignHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *CampaignHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	// Create context with custom timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel) // Store cancel function for cleanup

	return ctx
}
