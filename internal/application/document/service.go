package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/invoicegen/backend/internal/domain/document"
	"github.com/invoicegen/backend/internal/infrastructure/logger"
	infra "github.com/invoicegen/backend/internal/infrastructure/printing"
	"github.com/invoicegen/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultRenderTimeout bounds a single render when none is configured
const DefaultRenderTimeout = 30 * time.Second

// GenerateInput is one generation request
type GenerateInput struct {
	Kind      domain.Kind
	Record    *domain.DocumentRecord
	Logo      *infra.Upload
	Signature *infra.Upload
}

// GenerateResult is a completed document
type GenerateResult struct {
	GenerationID uuid.UUID
	Filename     string
	PDFData      []byte
	PageCount    int
	Engine       string
	Template     string
	Totals       *TotalsResponse
	Warnings     []*domain.AttachmentError
	Duration     time.Duration
}

// ServiceConfig configures a GenerationService
type ServiceConfig struct {
	// Engine names the renderer, for logs and metrics
	Engine string
	// RenderTimeout bounds the render step of every request
	RenderTimeout time.Duration
}

// GenerationService turns submitted records into PDF documents
type GenerationService struct {
	renderer      infra.PDFRenderer
	attachments   *infra.AttachmentProcessor
	metrics       *telemetry.DocumentMetrics
	engine        string
	renderTimeout time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewGenerationService creates a new GenerationService.
// metrics may be nil.
func NewGenerationService(
	renderer infra.PDFRenderer,
	attachments *infra.AttachmentProcessor,
	metrics *telemetry.DocumentMetrics,
	cfg ServiceConfig,
	log *zap.Logger,
) *GenerationService {
	if log == nil {
		log = zap.NewNop()
	}
	if attachments == nil {
		attachments = infra.NewAttachmentProcessor(&infra.AttachmentConfig{Logger: log})
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = DefaultRenderTimeout
	}
	if cfg.Engine == "" {
		cfg.Engine = infra.EngineFPDF
	}
	return &GenerationService{
		renderer:      renderer,
		attachments:   attachments,
		metrics:       metrics,
		engine:        cfg.Engine,
		renderTimeout: cfg.RenderTimeout,
		logger:        log,
		now:           time.Now,
	}
}

// Engine returns the configured rendering engine name
func (s *GenerationService) Engine() string {
	return s.engine
}

// RenderTimeout returns the per-request render bound
func (s *GenerationService) RenderTimeout() time.Duration {
	return s.renderTimeout
}

// Generate validates the record, computes its totals, processes the attachments
// and renders the PDF. Invalid records are rejected with a *document.ValidationError
// before any rendering work; render failures return a *printing.RenderError.
// Dropped attachments never fail the request and are reported in Warnings.
func (s *GenerationService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	gen := domain.NewGeneration(in.Kind)

	ctx, span := telemetry.StartGenerationSpan(ctx, in.Kind.String())
	defer span.End()

	log := s.log(ctx).With(
		zap.String("generation_id", gen.ID.String()),
		zap.String("kind", in.Kind.String()),
	)

	record := in.Record
	if record == nil {
		record = &domain.DocumentRecord{Kind: in.Kind}
	}
	record.Kind = in.Kind

	if err := domain.ValidateRecord(record); err != nil {
		s.reject(ctx, gen, record, err)
		log.Info("Document rejected", zap.Error(err))
		span.Fail(err)
		return nil, err
	}
	if err := gen.MarkValidated(); err != nil {
		return nil, err
	}
	span.Stage(telemetry.StageValidated)

	totals, err := domain.CalculateRecordTotals(record)
	if err != nil {
		return nil, s.fail(ctx, gen, record, fmt.Errorf("failed to calculate totals: %w", err))
	}
	span.Stage(telemetry.StageTotals,
		telemetry.AttrCurrency.String(record.Currency.String()),
		attribute.Int("document.items", totals.IncludedItems),
	)
	if discrepancies := totals.Reconcile(record.ClientTotals); len(discrepancies) > 0 {
		for _, d := range discrepancies {
			log.Debug("Client total differs from computed total",
				zap.String("field", d.Field),
				zap.String("client", d.Client.String()),
				zap.String("computed", d.Computed.String()),
			)
		}
	}

	logo := s.processAttachment(ctx, gen, span, in.Logo, log)
	signature := s.processAttachment(ctx, gen, span, in.Signature, log)

	tmpl, _ := record.TemplateSpec()
	span.Describe(tmpl.ID.String(), record.Currency.String(), s.engine)

	if err := gen.StartRendering(); err != nil {
		return nil, err
	}

	req := &infra.RenderRequest{
		Record:      record,
		Totals:      totals,
		Template:    tmpl,
		Logo:        logo,
		Signature:   signature,
		GeneratedAt: s.now(),
		Timeout:     s.renderTimeout,
	}

	result, err := s.render(ctx, req)
	if err != nil {
		log.Error("Document rendering failed", zap.Error(err))
		span.Fail(err)
		return nil, s.fail(ctx, gen, record, err)
	}

	if err := gen.Complete(); err != nil {
		return nil, err
	}
	s.metrics.RecordGeneration(ctx, record.Kind.String(), tmpl.ID.String(), s.engine,
		telemetry.OutcomeCompleted, gen.Duration())
	span.Stage(telemetry.StageRendered, telemetry.AttrEngine.String(result.Engine))
	span.Succeed(result.PageCount, len(result.PDFData))

	log.Info("Document generated",
		zap.String("number", record.Number),
		zap.String("template", tmpl.ID.String()),
		zap.Int("pages", result.PageCount),
		zap.Int("size", len(result.PDFData)),
		zap.Int("warnings", len(gen.Warnings)),
		zap.Duration("duration", gen.Duration()),
	)

	return &GenerateResult{
		GenerationID: gen.ID,
		Filename:     Filename(record.Kind, record.Number, req.GeneratedAt),
		PDFData:      result.PDFData,
		PageCount:    result.PageCount,
		Engine:       result.Engine,
		Template:     tmpl.ID.String(),
		Totals:       toTotalsResponse(record.Kind, record.Currency, totals),
		Warnings:     gen.Warnings,
		Duration:     gen.Duration(),
	}, nil
}

// CalculateTotals returns the authoritative totals of record without rendering.
// Only the numeric fields and the currency are checked.
func (s *GenerationService) CalculateTotals(ctx context.Context, kind domain.Kind, record *domain.DocumentRecord) (*TotalsResponse, error) {
	if !kind.IsValid() {
		return nil, domain.NewValidationError("kind", domain.CodeInvalid,
			fmt.Sprintf("unsupported document kind %q", kind))
	}
	if record == nil {
		record = &domain.DocumentRecord{}
	}
	record.Kind = kind

	verr := &domain.ValidationError{}
	if err := record.Normalize(); err != nil {
		verr.Add("currency", domain.CodeInvalid, err.Error())
	}
	totals, err := domain.CalculateRecordTotals(record)
	if err != nil {
		var calcErr *domain.ValidationError
		if !errors.As(err, &calcErr) {
			return nil, err
		}
		verr.Merge(calcErr)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	s.log(ctx).Debug("Totals calculated",
		zap.String("kind", kind.String()),
		zap.Int("included_items", totals.IncludedItems),
		zap.String("total", totals.Total.String()),
	)
	return toTotalsResponse(kind, record.Currency, totals), nil
}

// ListTemplates returns the template catalog, restricted to kind when given
func (s *GenerationService) ListTemplates(kind string) ([]TemplateResponse, error) {
	var specs []domain.TemplateSpec
	if kind == "" {
		specs = domain.AllTemplates()
	} else {
		k := domain.Kind(strings.ToLower(strings.TrimSpace(kind)))
		if !k.IsValid() {
			return nil, domain.NewValidationError("kind", domain.CodeInvalid,
				fmt.Sprintf("unsupported document kind %q", kind))
		}
		specs = domain.TemplatesFor(k)
	}

	out := make([]TemplateResponse, len(specs))
	for i, t := range specs {
		out[i] = toTemplateResponse(t)
	}
	return out, nil
}

// render runs the configured renderer under the render timeout with
// profiling labels attached. Any failure comes back as a *printing.RenderError.
func (s *GenerationService) render(ctx context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	renderCtx, cancel := context.WithTimeout(ctx, s.renderTimeout)
	defer cancel()

	var (
		result *infra.RenderResult
		err    error
	)
	labels := telemetry.RenderLabels(req.Record.Kind.String(), req.Template.ID.String(), s.engine)
	telemetry.WithProfilingLabels(renderCtx, labels, func(ctx context.Context) {
		result, err = s.renderer.Render(ctx, req)
	})

	if err == nil && (result == nil || len(result.PDFData) == 0) {
		err = infra.NewRenderError(infra.ErrCodeRenderFailed, "renderer returned an empty document", nil)
	}
	if err == nil {
		return result, nil
	}

	var renderErr *infra.RenderError
	if errors.As(err, &renderErr) {
		return nil, renderErr
	}
	if errors.Is(renderCtx.Err(), context.DeadlineExceeded) {
		return nil, infra.NewRenderError(infra.ErrCodeRenderTimeout,
			fmt.Sprintf("rendering exceeded %s", s.renderTimeout), err)
	}
	return nil, infra.NewRenderError(infra.ErrCodeRenderFailed, "failed to render document", err)
}

func (s *GenerationService) processAttachment(ctx context.Context, gen *domain.Generation, span *telemetry.GenerationSpan, up *infra.Upload, log *zap.Logger) *infra.Image {
	if up == nil {
		return nil
	}
	img, warning := s.attachments.Process(ctx, *up)
	if warning != nil {
		gen.AddWarning(warning)
		span.Stage(telemetry.StageAttachment,
			telemetry.AttrAttachment.String(warning.Attachment.String()),
			telemetry.AttrAttachmentCode.String(warning.Code),
		)
		s.metrics.RecordAttachmentWarning(ctx, gen.Kind.String(), warning.Attachment.String(), warning.Code)
		log.Warn("Attachment dropped",
			zap.String("attachment", warning.Attachment.String()),
			zap.String("code", warning.Code),
			zap.String("filename", up.Filename),
			zap.Error(warning),
		)
		return nil
	}
	return img
}

func (s *GenerationService) reject(ctx context.Context, gen *domain.Generation, record *domain.DocumentRecord, err error) {
	_ = gen.Reject(err.Error())

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			s.metrics.RecordValidationFailure(ctx, record.Kind.String(), f.Field)
		}
	}
	s.metrics.RecordGeneration(ctx, record.Kind.String(), record.Template.String(), s.engine,
		telemetry.OutcomeRejected, gen.Duration())
}

func (s *GenerationService) fail(ctx context.Context, gen *domain.Generation, record *domain.DocumentRecord, err error) error {
	if failErr := gen.Fail(err.Error()); failErr != nil {
		s.log(ctx).Error("Failed to record generation failure", zap.Error(failErr))
	}
	s.metrics.RecordGeneration(ctx, record.Kind.String(), record.Template.String(), s.engine,
		telemetry.OutcomeFailed, gen.Duration())
	return err
}

// log prefers the request-scoped logger placed in ctx by the HTTP layer
func (s *GenerationService) log(ctx context.Context) *zap.Logger {
	return logger.From(ctx, s.logger)
}

// Filename builds the download name <kind>_<number>_<YYYYmmdd_HHMMSS>.pdf.
// Characters unsafe in a header value or a path are replaced by '_'.
func Filename(kind domain.Kind, number string, at time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, number)
	return fmt.Sprintf("%s_%s_%s.pdf", kind, safe, at.Format("20060102_150405"))
}
