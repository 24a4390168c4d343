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

// CreatorHandlerInterface defines the contract for creator handlers
type CreatorHandlerInterface interface {
	ListCreators(c fiber.Ctx) error
}

// CreatorHandler handles creator roster HTTP requests
type CreatorHandler struct {
	campaignFlow businessflow.CampaignFlow
	validator    *validator.Validate
}

// NewCreatorHandler creates a new creator handler
func NewCreatorHandler(campaignFlow businessflow.CampaignFlow) *CreatorHandler {
	return &CreatorHandler{
		campaignFlow: campaignFlow,
		validator:    validator.New(),
	}
}

func (h *CreatorHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CreatorHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListCreators handles listing the creator roster
// @Summary List Creators
// @Description List active roster creators, optionally filtered by niche
// @Tags Creators
// @Produce json
// @Param niche query string false "Niche filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListCreatorsResponse} "Creators retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid pagination parameters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/creators [get]
func (h *CreatorHandler) ListCreators(c fiber.Ctx) error {
	req := &dto.ListCreatorsRequest{Niche: c.Query("niche")}
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

	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.campaignFlow.ListCreators(h.createRequestContext(c, "/api/v1/creators"), req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", err.Error())
		}

		log.Println("Creator list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list creators", "CREATOR_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Creators retrieved successfully", result)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *CreatorHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
