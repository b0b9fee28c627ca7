// Package assay runs the shop workflow: intake tokens, attach XRF results,
// commit certificates to history, print, export and share.
package assay

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xelth-com/xrfdesk/internal/layout"
	"github.com/xelth-com/xrfdesk/internal/models"
	"github.com/xelth-com/xrfdesk/internal/repository"
	"github.com/xelth-com/xrfdesk/internal/services/export"
	"github.com/xelth-com/xrfdesk/internal/services/printer"
	"github.com/xelth-com/xrfdesk/internal/services/share"
	"github.com/xelth-com/xrfdesk/internal/utils"
)

// Events published after successful mutations
const (
	EventTokenCreated    = "token.created"
	EventTokenUpdated    = "token.updated"
	EventTokenDeleted    = "token.deleted"
	EventReportCommitted = "report.committed"
	EventReportUpdated   = "report.updated"
	EventReportDeleted   = "report.deleted"
)

// Publisher receives record change notifications
type Publisher interface {
	Publish(event string, payload any)
}

// Renderer turns draw operations into a document
type Renderer interface {
	Render(ops []layout.DrawOp, page layout.Page) ([]byte, error)
}

// Config holds the presentation settings of the service
type Config struct {
	Letterhead   layout.Letterhead
	Logo         []byte
	Verification bool
	Tags         printer.TagConfig
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service coordinates repository, layout, rendering and delivery
type Service struct {
	repo     repository.Repository
	renderer Renderer
	measurer layout.Measurer
	sink     share.Sink
	pub      Publisher
	log      *zap.Logger
	cfg      Config
}

// NewService creates the workflow service. A nil sink means saving and
// sharing are unsupported on this host.
func NewService(repo repository.Repository, renderer Renderer, measurer layout.Measurer, sink share.Sink, log *zap.Logger, cfg Config) *Service {
	if sink == nil {
		sink = share.Unsupported{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		renderer: renderer,
		measurer: measurer,
		sink:     sink,
		log:      log,
		cfg:      cfg,
	}
}

// SetPublisher attaches a change listener
func (s *Service) SetPublisher(p Publisher) {
	s.pub = p
}

func (s *Service) publish(event string, rec models.Record) {
	if s.pub != nil {
		s.pub.Publish(event, rec.WithoutImage())
	}
}

// TokenInput is the intake form
type TokenInput struct {
	CustomerName    string `json:"customerName"`
	ItemDescription string `json:"itemDescription"`
	ItemWeight      string `json:"itemWeight"`
	PhoneNumber     string `json:"phoneNumber"`
	Image           []byte `json:"-"`
}

func (in TokenInput) validate(op string) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return invalid(op, "customer name is required")
	}
	if strings.TrimSpace(in.ItemDescription) == "" {
		return invalid(op, "item description is required")
	}
	if strings.TrimSpace(in.ItemWeight) == "" {
		return invalid(op, "item weight is required")
	}
	if _, err := utils.ParseDecimal(in.ItemWeight); err != nil {
		return invalid(op, "item weight: %w", err)
	}
	if len(in.Image) > 0 {
		if err := printer.CheckImage(in.Image); err != nil {
			return invalid(op, "photo: %w", err)
		}
	}
	return nil
}

// AnalysisInput is the XRF result form
type AnalysisInput struct {
	Percentage string `json:"percentage"`
	Element    string `json:"element"`
	Remarks    string `json:"remarks"`
}

// Analyse validates the result form and derives the words string.
func (in AnalysisInput) Analyse() (models.Analysis, error) {
	const op = "analyse"
	if strings.TrimSpace(in.Percentage) == "" || strings.TrimSpace(in.Element) == "" {
		return models.Analysis{}, invalid(op, "percentage and element are required")
	}
	pct, err := utils.ParseDecimal(in.Percentage)
	if err != nil {
		return models.Analysis{}, invalid(op, "percentage: %w", err)
	}
	el, err := models.ParseElement(in.Element)
	if err != nil {
		return models.Analysis{}, invalid(op, "%w", err)
	}
	return models.Analysis{
		Percentage:        strings.TrimSpace(in.Percentage),
		Element:           el,
		PercentageInWords: utils.PercentageToWords(pct),
	}, nil
}

// Promote attaches the analysis to rec without persisting anything
func Promote(rec models.Record, in AnalysisInput) (models.Record, error) {
	a, err := in.Analyse()
	if err != nil {
		return rec, err
	}
	return rec.WithAnalysis(a, strings.TrimSpace(in.Remarks)), nil
}

// storeErr maps repository failures onto the service taxonomy
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(ErrNotFound, op, err)
	case errors.Is(err, repository.ErrIncomplete), errors.Is(err, models.ErrPartialAnalysis):
		return fail(ErrValidation, op, err)
	default:
		return fail(ErrPersistence, op, err)
	}
}

// CreateToken numbers and stores a new intake token. If the store rejects the
// photo as too large the token is stored without it.
func (s *Service) CreateToken(ctx context.Context, in TokenInput) (models.Record, error) {
	const op = "create token"
	if err := in.validate(op); err != nil {
		return models.Record{}, err
	}

	now := s.cfg.Clock()
	rec := models.Record{
		ID:              uuid.NewString(),
		CustomerName:    strings.TrimSpace(in.CustomerName),
		ItemDescription: strings.TrimSpace(in.ItemDescription),
		ItemWeight:      strings.TrimSpace(in.ItemWeight),
		PhoneNumber:     strings.TrimSpace(in.PhoneNumber),
		Image:           in.Image,
		Date:            utils.FormatDate(now),
		Time:            utils.FormatClock(now),
		Timestamp:       now.UnixMilli(),
	}

	saved, err := s.repo.AppendPendingWithSequence(ctx, rec, now)
	if errors.Is(err, repository.ErrPayloadTooLarge) {
		s.log.Warn("Photo too large for store, saving token without it",
			zap.String("id", rec.ID), zap.Int("bytes", len(rec.Image)))
		saved, err = s.repo.AppendPendingWithSequence(ctx, rec.WithoutImage(), now)
	}
	if err != nil {
		return models.Record{}, storeErr(op, err)
	}

	s.log.Info("Token created", zap.String("token", saved.TokenNumber), zap.String("id", saved.ID))
	s.publish(EventTokenCreated, saved)
	return saved, nil
}

// ListTodayTokens returns the pending tokens created today, for billing
func (s *Service) ListTodayTokens(ctx context.Context) ([]models.Record, error) {
	recs, err := s.repo.ListPendingForDay(ctx, s.cfg.Clock())
	if err != nil {
		return nil, storeErr("list tokens", err)
	}
	return recs, nil
}

// ListTokens returns every pending token
func (s *Service) ListTokens(ctx context.Context) ([]models.Record, error) {
	recs, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, storeErr("list tokens", err)
	}
	return recs, nil
}

// GetToken loads a pending token by id
func (s *Service) GetToken(ctx context.Context, id string) (models.Record, error) {
	rec, err := s.repo.GetPending(ctx, id)
	if err != nil {
		return rec, storeErr("get token", err)
	}
	return rec, nil
}

// DeleteToken discards a pending token
func (s *Service) DeleteToken(ctx context.Context, id string) error {
	if err := s.repo.RemovePending(ctx, id); err != nil {
		return storeErr("delete token", err)
	}
	s.log.Info("Token deleted", zap.String("id", id))
	if s.pub != nil {
		s.pub.Publish(EventTokenDeleted, map[string]string{"id": id})
	}
	return nil
}

// AttachAnalysis records the XRF result on a pending token. The token stays
// pending until committed.
func (s *Service) AttachAnalysis(ctx context.Context, id string, in AnalysisInput) (models.Record, error) {
	const op = "attach analysis"
	rec, err := s.repo.GetPending(ctx, id)
	if err != nil {
		return rec, storeErr(op, err)
	}
	rec, err = Promote(rec, in)
	if err != nil {
		return rec, err
	}
	if err := s.repo.ReplacePending(ctx, rec); err != nil {
		return rec, storeErr(op, err)
	}
	s.publish(EventTokenUpdated, rec)
	return rec, nil
}

// Preview renders the report a token would become with in, without storing it.
func (s *Service) Preview(ctx context.Context, id string, in AnalysisInput, masked bool) (share.Artifact, error) {
	rec, err := s.repo.GetPending(ctx, id)
	if err != nil {
		return share.Artifact{}, storeErr("preview", err)
	}
	rec, err = Promote(rec, in)
	if err != nil {
		return share.Artifact{}, err
	}
	return s.document(rec, layout.ModeReport, masked)
}

// Commit moves a pending token into history. When in is non-nil it is
// attached first; otherwise the stored analysis is used. A photo the history
// store rejects as too large is dropped and the commit retried once.
func (s *Service) Commit(ctx context.Context, id string, in *AnalysisInput) (models.Record, error) {
	const op = "commit report"
	rec, err := s.repo.GetPending(ctx, id)
	if err != nil {
		return rec, storeErr(op, err)
	}
	if in != nil {
		if rec, err = Promote(rec, *in); err != nil {
			return rec, err
		}
	}
	if rec.Kind() != models.KindCompleted {
		return rec, invalid(op, "token %s has no analysis", rec.TokenNumber)
	}

	committed, err := s.repo.CommitToHistory(ctx, rec)
	if errors.Is(err, repository.ErrPayloadTooLarge) {
		s.log.Warn("Photo too large for history, committing report without it",
			zap.String("id", rec.ID), zap.Int("bytes", len(rec.Image)))
		committed, err = s.repo.CommitToHistory(ctx, rec.WithoutImage())
	}
	if err != nil {
		return rec, storeErr(op, err)
	}
	rec = committed
	s.log.Info("Report committed", zap.String("token", rec.TokenNumber), zap.String("id", rec.ID))
	s.publish(EventReportCommitted, rec)
	return rec, nil
}

// SearchHistory lists committed reports matching q, newest first
func (s *Service) SearchHistory(ctx context.Context, q string) ([]models.Record, error) {
	recs, err := s.repo.SearchHistory(ctx, q)
	if err != nil {
		return nil, storeErr("search history", err)
	}
	return recs, nil
}

// GetReport loads a committed report by id
func (s *Service) GetReport(ctx context.Context, id string) (models.Record, error) {
	rec, err := s.repo.GetHistory(ctx, id)
	if err != nil {
		return rec, storeErr("get report", err)
	}
	return rec, nil
}

// ReportInput edits a committed report. The photo is kept.
type ReportInput struct {
	TokenInput
	AnalysisInput
}

// UpdateReport rewrites a committed report's fields and recomputes its words.
func (s *Service) UpdateReport(ctx context.Context, id string, in ReportInput) (models.Record, error) {
	const op = "update report"
	if err := in.TokenInput.validate(op); err != nil {
		return models.Record{}, err
	}
	rec, err := s.repo.GetHistory(ctx, id)
	if err != nil {
		return rec, storeErr(op, err)
	}
	rec.CustomerName = strings.TrimSpace(in.CustomerName)
	rec.ItemDescription = strings.TrimSpace(in.ItemDescription)
	rec.ItemWeight = strings.TrimSpace(in.ItemWeight)
	rec.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if rec, err = Promote(rec, in.AnalysisInput); err != nil {
		return rec, err
	}

	if err := s.repo.ReplaceHistory(ctx, rec); err != nil {
		return rec, storeErr(op, err)
	}
	s.publish(EventReportUpdated, rec)
	return rec, nil
}

// DeleteReport permanently removes a committed report
func (s *Service) DeleteReport(ctx context.Context, id string) error {
	if err := s.repo.RemoveHistory(ctx, id); err != nil {
		return storeErr("delete report", err)
	}
	s.log.Info("Report deleted", zap.String("id", id))
	if s.pub != nil {
		s.pub.Publish(EventReportDeleted, map[string]string{"id": id})
	}
	return nil
}

// TokenDocument renders the intake slip of a pending token
func (s *Service) TokenDocument(ctx context.Context, id string, masked bool) (share.Artifact, error) {
	rec, err := s.repo.GetPending(ctx, id)
	if err != nil {
		return share.Artifact{}, storeErr("print token", err)
	}
	return s.document(rec, layout.ModeToken, masked)
}

// ReportDocument renders the certificate of a committed report
func (s *Service) ReportDocument(ctx context.Context, id string, masked bool) (share.Artifact, error) {
	rec, err := s.repo.GetHistory(ctx, id)
	if err != nil {
		return share.Artifact{}, storeErr("print report", err)
	}
	return s.document(rec, layout.ModeReport, masked)
}

// Render lays out and renders rec. It never modifies rec or the store.
func (s *Service) Render(rec models.Record, mode layout.Mode, masked bool) ([]byte, error) {
	const op = "render"
	opts := layout.Options{
		Mode:       mode,
		Masked:     masked,
		Now:        s.cfg.Clock(),
		Measurer:   s.measurer,
		Letterhead: s.cfg.Letterhead,
		Logo:       s.cfg.Logo,
	}
	if s.cfg.Verification && !masked && rec.Kind() == models.KindCompleted {
		mark, err := printer.VerificationMark(rec)
		if err != nil {
			return nil, fail(ErrRender, op, err)
		}
		opts.Verification = mark
	}

	ops, err := layout.Layout(rec, opts)
	if err != nil {
		return nil, fail(ErrRender, op, err)
	}
	pdf, err := s.renderer.Render(ops, layout.A5Landscape)
	if err != nil {
		return nil, fail(ErrRender, op, err)
	}
	return pdf, nil
}

func (s *Service) document(rec models.Record, mode layout.Mode, masked bool) (share.Artifact, error) {
	data, err := s.Render(rec, mode, masked)
	if err != nil {
		return share.Artifact{}, err
	}
	return share.Artifact{Name: printer.Filename(rec), ContentType: "application/pdf", Data: data}, nil
}

// ExportHistory serializes every committed report as CSV
func (s *Service) ExportHistory(ctx context.Context) (share.Artifact, error) {
	const op = "export history"
	recs, err := s.repo.ListHistory(ctx)
	if err != nil {
		return share.Artifact{}, storeErr(op, err)
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, recs); err != nil {
		return share.Artifact{}, fail(ErrExport, op, err)
	}
	return share.Artifact{
		Name:        export.Filename(s.cfg.Clock()),
		ContentType: export.ContentType,
		Data:        buf.Bytes(),
	}, nil
}

// Capabilities reports what the configured sink can do
func (s *Service) Capabilities() share.Capability {
	return s.sink.Capabilities()
}

// Deliver hands an artifact to the sink, sharing it when asked. It returns
// the saved location when the artifact was saved.
func (s *Service) Deliver(ctx context.Context, a share.Artifact, wantShare bool) (string, error) {
	where, err := share.Deliver(ctx, s.sink, a, wantShare)
	if err != nil {
		return "", fail(ErrShare, "deliver "+a.Name, err)
	}
	s.log.Info("Artifact delivered", zap.String("name", a.Name), zap.String("location", where), zap.Bool("shared", wantShare))
	return where, nil
}

// TagSheet prints bag tags for today's pending tokens
func (s *Service) TagSheet(ctx context.Context) (share.Artifact, error) {
	recs, err := s.ListTodayTokens(ctx)
	if err != nil {
		return share.Artifact{}, err
	}
	if len(recs) == 0 {
		return share.Artifact{}, invalid("tag sheet", "no pending tokens today")
	}
	data, err := printer.GenerateTagsPDF(recs, s.cfg.Tags)
	if err != nil {
		return share.Artifact{}, fail(ErrRender, "tag sheet", err)
	}
	name := "Tags_" + strings.ReplaceAll(utils.FormatDate(s.cfg.Clock()), "/", "") + ".pdf"
	return share.Artifact{Name: name, ContentType: "application/pdf", Data: data}, nil
}
