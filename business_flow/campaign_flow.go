// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/wolfsbane9513/influencer-ai/app/dto"
	"github.com/wolfsbane9513/influencer-ai/app/orchestrator"
	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/repository"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// CampaignFlow handles the campaign business logic
type CampaignFlow interface {
	StartCampaign(ctx context.Context, req *dto.StartCampaignRequest, metadata *ClientMetadata) (*dto.StartCampaignResponse, error)
	GetCampaignStatus(ctx context.Context, req *dto.CampaignStatusRequest, metadata *ClientMetadata) (*dto.CampaignStatusResponse, error)
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error)
	CancelCampaign(ctx context.Context, req *dto.CancelCampaignRequest, metadata *ClientMetadata) (*dto.CancelCampaignResponse, error)
	ListCreators(ctx context.Context, req *dto.ListCreatorsRequest) (*dto.ListCreatorsResponse, error)
	ExportCampaignReport(ctx context.Context, req *dto.CampaignReportRequest, metadata *ClientMetadata) (*dto.CampaignReportResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo    repository.CampaignRepository
	creatorRepo     repository.CreatorRepository
	negotiationRepo repository.NegotiationRepository
	contractRepo    repository.ContractRepository
	orchestrator    orchestrator.CampaignOrchestrator
	config          *config.ProductionConfig
	rc              *redis.Client
	db              *gorm.DB
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	creatorRepo repository.CreatorRepository,
	negotiationRepo repository.NegotiationRepository,
	contractRepo repository.ContractRepository,
	orch orchestrator.CampaignOrchestrator,
	db *gorm.DB,
	rc *redis.Client,
	cfg *config.ProductionConfig,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo:    campaignRepo,
		creatorRepo:     creatorRepo,
		negotiationRepo: negotiationRepo,
		contractRepo:    contractRepo,
		orchestrator:    orch,
		config:          cfg,
		rc:              rc,
		db:              db,
	}
}

// StartCampaign persists a new campaign and launches its workflow in the background
func (f *CampaignFlowImpl) StartCampaign(ctx context.Context, req *dto.StartCampaignRequest, metadata *ClientMetadata) (*dto.StartCampaignResponse, error) {
	if err := f.validateStartCampaignRequest(req); err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}

	campaign := &models.Campaign{
		UUID:     uuid.New(),
		TaskID:   uuid.New(),
		ClientID: req.ClientID,
		Stage:    models.CampaignStageStarting,
		Brief: models.CampaignBrief{
			ProductName:        strings.TrimSpace(req.ProductName),
			BrandName:          strings.TrimSpace(req.BrandName),
			ProductDescription: strings.TrimSpace(req.ProductDescription),
			TargetAudience:     strings.TrimSpace(req.TargetAudience),
			CampaignGoal:       strings.TrimSpace(req.CampaignGoal),
			ProductNiche:       strings.ToLower(strings.TrimSpace(req.ProductNiche)),
			TotalBudget:        req.TotalBudget,
		},
	}

	// Use transaction for atomicity
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.campaignRepo.Save(txCtx, campaign)
	})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Campaign creation failed", err)
	}

	if err := f.orchestrator.StartCampaign(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_START_FAILED", "Campaign workflow could not be started", ErrCampaignAlreadyRunning)
	}

	return &dto.StartCampaignResponse{
		Message:                  "Campaign started successfully",
		TaskID:                   campaign.TaskID.String(),
		UUID:                     campaign.UUID.String(),
		Status:                   "started",
		Stage:                    campaign.Stage.String(),
		EstimatedDurationMinutes: f.startEstimateMinutes(),
		CreatedAt:                campaign.CreatedAt.Format(time.RFC3339),
	}, nil
}

// startEstimateMinutes is the pre-discovery duration estimate: the workflow
// negotiates with at most the configured top-N creators.
func (f *CampaignFlowImpl) startEstimateMinutes() int {
	return int(time.Duration(f.config.Matcher.DefaultTopN) * f.config.Orchestrator.EstimatePerCreator / time.Minute)
}

// GetCampaignStatus returns the live status of a campaign workflow
func (f *CampaignFlowImpl) GetCampaignStatus(ctx context.Context, req *dto.CampaignStatusRequest, metadata *ClientMetadata) (*dto.CampaignStatusResponse, error) {
	if _, err := getOwnedCampaign(ctx, f.campaignRepo, req.TaskID, req.ClientID); err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	snap, err := f.orchestrator.Snapshot(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, orchestrator.ErrCampaignNotFound) {
			return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
		}
		return nil, NewBusinessError("CAMPAIGN_STATUS_FAILED", "Failed to read campaign status", err)
	}

	return statusFromSnapshot(snap), nil
}

// ListCampaigns returns the client's campaigns, newest first
func (f *CampaignFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error) {
	page, pageSize, err := normalizePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_VALIDATION_FAILED", "Invalid pagination parameters", err)
	}

	offset := (page - 1) * pageSize
	campaigns, err := f.campaignRepo.ByClientID(ctx, req.ClientID, pageSize, offset)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	total, err := f.campaignRepo.Count(ctx, models.CampaignFilter{ClientID: &req.ClientID})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_COUNT_FAILED", "Failed to count campaigns", err)
	}

	items := make([]dto.CampaignSummaryDTO, 0, len(campaigns))
	for _, c := range campaigns {
		items = append(items, dto.CampaignSummaryDTO{
			UUID:               c.UUID.String(),
			TaskID:             c.TaskID.String(),
			Stage:              c.Stage.String(),
			ProductName:        c.Brief.ProductName,
			BrandName:          c.Brief.BrandName,
			ProductNiche:       c.Brief.ProductNiche,
			TotalBudget:        c.Brief.TotalBudget,
			BudgetCommitted:    c.BudgetCommitted,
			ContractsGenerated: c.ContractsGenerated,
			CreatedAt:          c.CreatedAt,
			FinishedAt:         c.FinishedAt,
		})
	}

	return &dto.ListCampaignsResponse{
		Message: "Campaigns retrieved successfully",
		Items:   items,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// CancelCampaign stops a running campaign workflow
func (f *CampaignFlowImpl) CancelCampaign(ctx context.Context, req *dto.CancelCampaignRequest, metadata *ClientMetadata) (*dto.CancelCampaignResponse, error) {
	if _, err := getOwnedCampaign(ctx, f.campaignRepo, req.TaskID, req.ClientID); err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	if err := f.orchestrator.Cancel(ctx, req.TaskID); err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrCampaignNotFound):
			return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
		case errors.Is(err, orchestrator.ErrCampaignNotCancellable):
			return nil, NewBusinessError("CAMPAIGN_NOT_CANCELLABLE", "Campaign is already terminal", ErrCampaignNotCancellable)
		default:
			return nil, NewBusinessError("CAMPAIGN_CANCEL_FAILED", "Failed to cancel campaign", err)
		}
	}

	stage := models.CampaignStageCancelled.String()
	if snap, err := f.orchestrator.Snapshot(ctx, req.TaskID); err == nil {
		stage = snap.Stage.String()
	}

	return &dto.CancelCampaignResponse{
		Message: "Campaign cancellation requested",
		TaskID:  req.TaskID,
		Stage:   stage,
	}, nil
}

// ListCreators returns the creator roster, optionally filtered by niche
func (f *CampaignFlowImpl) ListCreators(ctx context.Context, req *dto.ListCreatorsRequest) (*dto.ListCreatorsResponse, error) {
	page, pageSize, err := normalizePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_VALIDATION_FAILED", "Invalid pagination parameters", err)
	}

	offset := (page - 1) * pageSize
	niche := strings.ToLower(strings.TrimSpace(req.Niche))

	var creators []*models.Creator
	if niche != "" {
		creators, err = f.creatorRepo.ListByNiche(ctx, niche, pageSize, offset)
	} else {
		creators, err = f.creatorRepo.ListActive(ctx, pageSize, offset)
	}
	if err != nil {
		return nil, NewBusinessError("CREATOR_LIST_FAILED", "Failed to list creators", err)
	}

	filter := models.CreatorFilter{IsActive: utils.ToPtr(true)}
	if niche != "" {
		filter.Niche = &niche
	}
	total, err := f.creatorRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CREATOR_COUNT_FAILED", "Failed to count creators", err)
	}

	items := make([]dto.CreatorDTO, 0, len(creators))
	for _, c := range creators {
		items = append(items, dto.CreatorDTO{
			UUID:           c.UUID.String(),
			Name:           c.Name,
			Platform:       c.Platform,
			Handle:         c.Handle,
			Niche:          c.Niche,
			FollowerCount:  c.FollowerCount,
			EngagementRate: c.EngagementRate,
			TypicalRate:    c.TypicalRate,
			Tier:           string(c.Tier()),
			Languages:      []string(c.Languages),
			ContentTypes:   []string(c.ContentTypes),
			Bio:            c.Bio,
		})
	}

	return &dto.ListCreatorsResponse{
		Message: "Creators retrieved successfully",
		Items:   items,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// ExportCampaignReport renders the campaign's negotiations and contracts as a
// spreadsheet. Finished campaigns are cached; running ones are rebuilt per
// request so the report tracks live progress.
func (f *CampaignFlowImpl) ExportCampaignReport(ctx context.Context, req *dto.CampaignReportRequest, metadata *ClientMetadata) (*dto.CampaignReportResponse, error) {
	campaign, err := getOwnedCampaign(ctx, f.campaignRepo, req.TaskID, req.ClientID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	if campaign.Stage == models.CampaignStageStarting || campaign.Stage == models.CampaignStageDiscovery {
		return nil, NewBusinessError("REPORT_NOT_AVAILABLE", "Report is not available yet", ErrReportNotAvailable)
	}

	filename := fmt.Sprintf("campaign_report_%s.xlsx", campaign.TaskID)

	if campaign.Stage.Terminal() {
		if content := f.cachedReport(ctx, req.TaskID); content != nil {
			return &dto.CampaignReportResponse{Filename: filename, Content: content}, nil
		}
	}

	negotiations, err := f.negotiationRepo.ByCampaignID(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("FETCH_NEGOTIATIONS_FAILED", "Failed to fetch negotiations", err)
	}

	contracts, err := f.contractRepo.ByCampaignID(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("FETCH_CONTRACTS_FAILED", "Failed to fetch contracts", err)
	}

	content, err := f.renderReport(ctx, campaign, negotiations, contracts)
	if err != nil {
		return nil, err
	}

	if campaign.Stage.Terminal() {
		f.storeReport(ctx, req.TaskID, content)
	}

	return &dto.CampaignReportResponse{Filename: filename, Content: content}, nil
}

// renderReport builds the xlsx workbook: a summary sheet, one row per
// negotiation, one row per contract.
func (f *CampaignFlowImpl) renderReport(ctx context.Context, campaign *models.Campaign, negotiations []*models.Negotiation, contracts []*models.Contract) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	creatorNames := f.creatorNames(ctx, negotiations)

	// Summary sheet
	summary := "Summary"
	xl.SetSheetName(xl.GetSheetName(0), summary)
	summaryRows := [][]string{
		{"Task ID", campaign.TaskID.String()},
		{"Product", campaign.Brief.ProductName},
		{"Brand", campaign.Brief.BrandName},
		{"Niche", campaign.Brief.ProductNiche},
		{"Stage", campaign.Stage.String()},
		{"Total budget", fmt.Sprintf("%.2f", campaign.Brief.TotalBudget)},
		{"Budget committed", fmt.Sprintf("%.2f", campaign.BudgetCommitted)},
		{"Creators found", fmt.Sprintf("%d", campaign.CreatorsFound)},
		{"Completed negotiations", fmt.Sprintf("%d", campaign.CompletedNegotiations)},
		{"Successful negotiations", fmt.Sprintf("%d", campaign.SuccessfulNegotiations)},
		{"Contracts generated", fmt.Sprintf("%d", campaign.ContractsGenerated)},
		{"Created at", campaign.CreatedAt.UTC().Format(time.RFC3339)},
	}
	if campaign.FinishedAt != nil {
		summaryRows = append(summaryRows, []string{"Finished at", campaign.FinishedAt.UTC().Format(time.RFC3339)})
	}
	for ri, row := range summaryRows {
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+1)
		_ = xl.SetSheetRow(summary, cellRef, &row)
	}

	// Negotiations sheet
	negSheet := "Negotiations"
	_, _ = xl.NewSheet(negSheet)
	negHeader := []string{"id", "creator_id", "creator_name", "phase", "offered_rate", "max_rate", "final_rate", "attempts", "last_error", "created_at"}
	_ = xl.SetSheetRow(negSheet, "A1", &negHeader)
	for ri, n := range negotiations {
		finalRate := ""
		if n.FinalRate != nil {
			finalRate = fmt.Sprintf("%.2f", *n.FinalRate)
		}
		lastError := ""
		if n.LastError != nil {
			lastError = *n.LastError
		}
		record := []string{
			fmt.Sprintf("%d", n.ID),
			fmt.Sprintf("%d", n.CreatorID),
			creatorNames[n.CreatorID],
			n.Phase.String(),
			fmt.Sprintf("%.2f", n.OfferedRate),
			fmt.Sprintf("%.2f", n.MaxRate),
			finalRate,
			fmt.Sprintf("%d", n.AttemptCount),
			lastError,
			n.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(negSheet, cellRef, &record)
	}

	// Contracts sheet
	conSheet := "Contracts"
	_, _ = xl.NewSheet(conSheet)
	conHeader := []string{"uuid", "creator_id", "creator_name", "tier", "agreed_rate", "currency", "deliverables", "payment_schedule", "delivery_days", "created_at"}
	_ = xl.SetSheetRow(conSheet, "A1", &conHeader)
	for ri, c := range contracts {
		milestones := make([]string, 0, len(c.PaymentSchedule))
		for _, m := range c.PaymentSchedule {
			milestones = append(milestones, fmt.Sprintf("%s %d%% (%.2f)", m.Stage, m.Percentage, m.Amount))
		}
		record := []string{
			c.UUID.String(),
			fmt.Sprintf("%d", c.CreatorID),
			creatorNames[c.CreatorID],
			string(c.Tier),
			fmt.Sprintf("%.2f", c.AgreedRate),
			c.Currency,
			strings.Join(c.Deliverables, "; "),
			strings.Join(milestones, "; "),
			fmt.Sprintf("%d", c.DeliveryDays),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(conSheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return buf.Bytes(), nil
}

// creatorNames resolves creator display names for the report rows. Lookup
// failures leave the name blank; the report still renders.
func (f *CampaignFlowImpl) creatorNames(ctx context.Context, negotiations []*models.Negotiation) map[uint]string {
	names := make(map[uint]string, len(negotiations))
	for _, n := range negotiations {
		if _, ok := names[n.CreatorID]; ok {
			continue
		}
		creator, err := f.creatorRepo.ByID(ctx, n.CreatorID)
		if err != nil || creator == nil {
			names[n.CreatorID] = ""
			continue
		}
		names[n.CreatorID] = creator.Name
	}
	return names
}

func (f *CampaignFlowImpl) validateStartCampaignRequest(req *dto.StartCampaignRequest) error {
	if strings.TrimSpace(req.ProductName) == "" {
		return ErrProductNameRequired
	}
	if strings.TrimSpace(req.BrandName) == "" {
		return ErrBrandNameRequired
	}
	if strings.TrimSpace(req.ProductNiche) == "" {
		return ErrProductNicheRequired
	}
	if req.TotalBudget <= 0 {
		return ErrTotalBudgetInvalid
	}
	return nil
}

func (f *CampaignFlowImpl) reportKey(taskID string) string {
	prefix := "influencer-ai"
	if f.config != nil && f.config.Cache.RedisPrefix != "" {
		prefix = f.config.Cache.RedisPrefix
	}
	return fmt.Sprintf("%s:campaign:report:%s", prefix, taskID)
}

func (f *CampaignFlowImpl) cachedReport(ctx context.Context, taskID string) []byte {
	if f.rc == nil || f.config == nil || !f.config.Cache.Enabled {
		return nil
	}
	bs, err := f.rc.Get(ctx, f.reportKey(taskID)).Bytes()
	if err != nil || len(bs) == 0 {
		return nil
	}
	return bs
}

func (f *CampaignFlowImpl) storeReport(ctx context.Context, taskID string, content []byte) {
	if f.rc == nil || f.config == nil || !f.config.Cache.Enabled {
		return
	}
	_ = f.rc.Set(ctx, f.reportKey(taskID), content, f.config.Cache.DefaultTTL).Err()
}

func statusFromSnapshot(snap *orchestrator.CampaignSnapshot) *dto.CampaignStatusResponse {
	negotiations := make([]dto.NegotiationStatusDTO, 0, len(snap.Negotiations))
	for _, n := range snap.Negotiations {
		negotiations = append(negotiations, dto.NegotiationStatusDTO{
			CreatorID:   n.CreatorID,
			CreatorName: n.CreatorName,
			Phase:       n.Phase.String(),
			OfferedRate: n.OfferedRate,
			FinalRate:   n.FinalRate,
			LastError:   n.LastError,
		})
	}

	return &dto.CampaignStatusResponse{
		TaskID:                   snap.TaskID,
		Stage:                    snap.Stage.String(),
		Progress:                 snap.Progress,
		CreatorsFound:            snap.CreatorsFound,
		CompletedNegotiations:    snap.CompletedNegotiations,
		SuccessfulNegotiations:   snap.SuccessfulNegotiations,
		ContractsGenerated:       snap.ContractsGenerated,
		TotalBudget:              snap.TotalBudget,
		BudgetCommitted:          snap.BudgetCommitted,
		EstimatedDurationMinutes: snap.EstimatedDurationMinutes,
		LastError:                snap.LastError,
		Negotiations:             negotiations,
		StartedAt:                snap.StartedAt,
		FinishedAt:               snap.FinishedAt,
	}
}
