package repository

import (
	"context"
	"testing"
	"time"

	"github.com/prediag/inference-service/internal/prediag"
	"github.com/stretchr/testify/require"
)

func testCase(id, user string) *prediag.Prediagnostic {
	return &prediag.Prediagnostic{
		UserID:          user,
		PrediagnosticID: id,
		RadiographURL:   "http://storage/" + id,
		ModelResult:     prediag.ModelResult{PneumoniaProbability: 0.91, Label: "Viral Pneumonia"},
		ProcessedAt:     time.Now().UTC(),
		Status:          prediag.StatusProcessed,
		UploadedAt:      time.Now().UTC(),
	}
}

func TestMemoryRepo_CaseLifecycle(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.CreateCase(ctx, testCase("p1", "doc1")))
	require.NoError(t, repo.CreateCase(ctx, testCase("p2", "doc1")))
	require.NoError(t, repo.CreateCase(ctx, testCase("p3", "doc2")))

	got, err := repo.GetCase(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "doc1", got.UserID)

	_, err = repo.GetCase(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	list, err := repo.ListCasesByUser(ctx, "doc1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, repo.SetCaseStatus(ctx, "p1", prediag.StatusValidated))
	got, err = repo.GetCase(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, prediag.StatusValidated, got.Status)

	require.ErrorIs(t, repo.SetCaseStatus(ctx, "missing", prediag.StatusValidated), ErrNotFound)
}

func TestMemoryRepo_Diagnostics(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	d := &prediag.Diagnostic{PrediagnosticID: "p1", Label: prediag.ReviewApproved, Comment: "clear lungs", ReviewedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateDiagnostic(ctx, d))
	require.ErrorIs(t, repo.CreateDiagnostic(ctx, d), ErrDuplicate)

	got, err := repo.GetDiagnostic(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, prediag.ReviewApproved, got.Label)

	_, err = repo.GetDiagnostic(ctx, "p2")
	require.ErrorIs(t, err, ErrNotFound)
}
