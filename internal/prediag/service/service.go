package service

import (
	"context"
	"errors"
	"time"

	"github.com/prediag/inference-service/internal/prediag"
	"github.com/prediag/inference-service/internal/prediag/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("diagnostic already exists")
	ErrInvalidLabel = errors.New("invalid diagnostic label")
)

// Repository is the persistence surface the service depends on.
type Repository interface {
	CreateCase(ctx context.Context, p *prediag.Prediagnostic) error
	GetCase(ctx context.Context, id string) (*prediag.Prediagnostic, error)
	ListCasesByUser(ctx context.Context, userID string) ([]*prediag.Prediagnostic, error)
	SetCaseStatus(ctx context.Context, id, status string) error
	CreateDiagnostic(ctx context.Context, d *prediag.Diagnostic) error
	GetDiagnostic(ctx context.Context, prediagnosticID string) (*prediag.Diagnostic, error)
}

// Service wraps repository operations with the case-review business logic.
type Service struct {
	repo Repository
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() *Service {
	return &Service{repo: repository.NewMemoryRepo()}
}

// NewMongoService returns a Service backed by the given Mongo collections.
func NewMongoService(cases, diagnostics *mongo.Collection) *Service {
	return &Service{repo: repository.NewMongoRepo(cases, diagnostics)}
}

// NewService wires an arbitrary repository (used by tests).
func NewService(r Repository) *Service { return &Service{repo: r} }

// RecordCase stores a freshly predicted case awaiting doctor review.
func (s *Service) RecordCase(ctx context.Context, p *prediag.Prediagnostic) error {
	now := time.Now().UTC()
	if p.ProcessedAt.IsZero() {
		p.ProcessedAt = now
	}
	if p.UploadedAt.IsZero() {
		p.UploadedAt = now
	}
	if p.Status == "" {
		p.Status = prediag.StatusProcessed
	}
	return s.repo.CreateCase(ctx, p)
}

// GetCase fetches one case by its prediagnostic id.
func (s *Service) GetCase(ctx context.Context, id string) (*prediag.Prediagnostic, error) {
	p, err := s.repo.GetCase(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListCases returns case summaries for a user's overview.
func (s *Service) ListCases(ctx context.Context, userID string) ([]prediag.CaseSummary, error) {
	cases, err := s.repo.ListCasesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]prediag.CaseSummary, 0, len(cases))
	for _, p := range cases {
		date := p.ProcessedAt
		if date.IsZero() {
			date = p.UploadedAt
		}
		fecha := ""
		if !date.IsZero() {
			fecha = date.Format(time.RFC3339)
		}
		out = append(out, prediag.CaseSummary{
			PrediagnosticID: p.PrediagnosticID,
			PatientName:     p.PatientName,
			Date:            fecha,
			Status:          p.Status,
			AILabel:         p.ModelResult.Label,
			Probability:     p.ModelResult.PneumoniaProbability,
		})
	}
	return out, nil
}

// SaveDiagnostic stores a doctor's review and marks the case validated.
// The label must be one of the review constants; a case may only be
// reviewed once.
func (s *Service) SaveDiagnostic(ctx context.Context, prediagnosticID, label, comment string) (*prediag.Diagnostic, error) {
	if label != prediag.ReviewApproved && label != prediag.ReviewRejected {
		return nil, ErrInvalidLabel
	}
	if _, err := s.GetCase(ctx, prediagnosticID); err != nil {
		return nil, err
	}
	d := &prediag.Diagnostic{
		PrediagnosticID: prediagnosticID,
		Label:           label,
		Comment:         comment,
		ReviewedAt:      time.Now().UTC(),
	}
	if err := s.repo.CreateDiagnostic(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	// review closes the case
	if err := s.repo.SetCaseStatus(ctx, prediagnosticID, prediag.StatusValidated); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDiagnostic fetches a doctor's review for a case.
func (s *Service) GetDiagnostic(ctx context.Context, prediagnosticID string) (*prediag.Diagnostic, error) {
	d, err := s.repo.GetDiagnostic(ctx, prediagnosticID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}
