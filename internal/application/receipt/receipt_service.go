package receipt

import (
	"context"
	"fmt"

	"github.com/dropship/backoffice/internal/domain/identity"
	"github.com/dropship/backoffice/internal/domain/printing"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/trade"
	infra "github.com/dropship/backoffice/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRenderingDisabled is returned when no PDF renderer is configured.
// The endpoint replies 503 so the UI can hide the receipt button.
var ErrRenderingDisabled = shared.NewDomainError("UNAVAILABLE", "Receipt rendering is not configured")

// Document is a rendered receipt ready to stream to the client
type Document struct {
	Filename  string
	PDF       []byte
	PageCount int
}

// Service renders order receipts as PDF documents. The receipt HTML is
// produced by the template engine and printed via headless Chrome.
type Service struct {
	leadRepo   trade.LeadRepository
	tenantRepo identity.TenantRepository
	engine     *infra.TemplateEngine
	renderer   infra.PDFRenderer
	logger     *zap.Logger
}

// NewService creates a receipt service. renderer may be nil, in which
// case every render request fails with ErrRenderingDisabled.
func NewService(
	leadRepo trade.LeadRepository,
	tenantRepo identity.TenantRepository,
	engine *infra.TemplateEngine,
	renderer infra.PDFRenderer,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		leadRepo:   leadRepo,
		tenantRepo: tenantRepo,
		engine:     engine,
		renderer:   renderer,
		logger:     logger,
	}
}

// Enabled reports whether a PDF renderer is configured
func (s *Service) Enabled() bool {
	return s.renderer != nil
}

// leadReceiptData is the template context for a lead receipt
type leadReceiptData struct {
	CompanyName string
	Lead        *trade.Lead
}

// RenderLeadReceipt renders the receipt for one lead. Sellers can only
// print receipts for their own leads.
func (s *Service) RenderLeadReceipt(ctx context.Context, tenantID, leadID uuid.UUID, sellerScope *uuid.UUID) (*Document, error) {
	if s.renderer == nil {
		return nil, ErrRenderingDisabled
	}

	lead, err := s.leadRepo.FindByIDForTenant(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	if sellerScope != nil && lead.SellerID() != *sellerScope {
		return nil, shared.ErrNotFound
	}

	companyName := ""
	if tenant, err := s.tenantRepo.FindByID(ctx, tenantID); err == nil {
		companyName = tenant.Name
	}

	html, err := s.engine.RenderString(ctx, "lead-receipt", leadReceiptTemplate, leadReceiptData{
		CompanyName: companyName,
		Lead:        lead,
	})
	if err != nil {
		return nil, fmt.Errorf("render receipt html: %w", err)
	}

	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:        html,
		PaperSize:   printing.PaperSizeA4,
		Orientation: printing.OrientationPortrait,
		Margins:     printing.DefaultMargins(),
		Title:       "Receipt " + lead.Number,
	})
	if err != nil {
		s.logger.Error("receipt rendering failed",
			zap.String("lead_id", leadID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}

	return &Document{
		Filename:  fmt.Sprintf("receipt-%s.pdf", lead.Number),
		PDF:       result.PDFData,
		PageCount: result.PageCount,
	}, nil
}
