package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/prediag/inference-service/internal/prediag"
)

var (
	ErrNotFound  = errors.New("case not found")
	ErrDuplicate = errors.New("diagnostic already exists")
)

// MemoryRepo is an in-memory repository used for unit tests and for running
// the service without a MongoDB deployment.
type MemoryRepo struct {
	mu          sync.RWMutex
	cases       map[string]*prediag.Prediagnostic
	diagnostics map[string]*prediag.Diagnostic
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		cases:       make(map[string]*prediag.Prediagnostic),
		diagnostics: make(map[string]*prediag.Diagnostic),
	}
}

func (m *MemoryRepo) CreateCase(_ context.Context, p *prediag.Prediagnostic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[p.PrediagnosticID] = p
	return nil
}

func (m *MemoryRepo) GetCase(_ context.Context, id string) (*prediag.Prediagnostic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.cases[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) ListCasesByUser(_ context.Context, userID string) ([]*prediag.Prediagnostic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*prediag.Prediagnostic{}
	for _, p := range m.cases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryRepo) SetCaseStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.cases[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	return nil
}

func (m *MemoryRepo) CreateDiagnostic(_ context.Context, d *prediag.Diagnostic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.diagnostics[d.PrediagnosticID]; ok {
		return ErrDuplicate
	}
	m.diagnostics[d.PrediagnosticID] = d
	return nil
}

func (m *MemoryRepo) GetDiagnostic(_ context.Context, prediagnosticID string) (*prediag.Diagnostic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.diagnostics[prediagnosticID]; ok {
		return d, nil
	}
	return nil, ErrNotFound
}
