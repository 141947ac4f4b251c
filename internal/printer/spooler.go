package printer

import (
	"context"
	"fmt"
	"image"
	"time"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/render"

	"go.uber.org/zap"
)

// FailurePolicy decides what happens to a document the printer rejected
type FailurePolicy int

const (
	// ReportOnly surfaces the failure and discards the image
	ReportOnly FailurePolicy = iota
	// PersistArtifact saves the image so the paper record can be recovered
	PersistArtifact
)

// DefaultPolicies keeps every sale recoverable while labels are simply reported
var DefaultPolicies = map[render.Kind]FailurePolicy{
	render.KindReceipt: PersistArtifact,
	render.KindLabel:   ReportOnly,
}

// Job is one rendered document ready to print
type Job struct {
	Kind  render.Kind
	Name  string
	Image *image.Paletted
}

// Spooler delivers jobs and applies the per-kind failure policy
type Spooler struct {
	printer   Deliverer
	artifacts ArtifactStore
	policies  map[render.Kind]FailurePolicy
	logger    *zap.Logger
}

// NewSpooler creates a spooler. A nil policies map uses DefaultPolicies;
// a nil artifact store downgrades PersistArtifact to ReportOnly.
func NewSpooler(printer Deliverer, artifacts ArtifactStore, policies map[render.Kind]FailurePolicy, logger *zap.Logger) *Spooler {
	if policies == nil {
		policies = DefaultPolicies
	}
	return &Spooler{
		printer:   printer,
		artifacts: artifacts,
		policies:  policies,
		logger:    logger,
	}
}

// Print delivers the job. The returned error is the delivery failure, if
// any; the status describes whether an artifact was kept instead.
func (s *Spooler) Print(ctx context.Context, job Job) (domain.PrintStatus, error) {
	err := s.printer.Deliver(ctx, job.Image)
	if err == nil {
		s.logger.Debug("Document printed", zap.String("kind", string(job.Kind)), zap.String("name", job.Name))
		return domain.PrintStatus{Printed: true}, nil
	}

	status := domain.PrintStatus{Error: err.Error()}
	s.logger.Warn("Print failed",
		zap.String("kind", string(job.Kind)),
		zap.String("name", job.Name),
		zap.Error(err),
	)

	if s.policies[job.Kind] != PersistArtifact || s.artifacts == nil {
		return status, err
	}

	name := fmt.Sprintf("%s-%s-%s", job.Kind, job.Name, time.Now().Format("20060102T150405"))
	key, saveErr := s.artifacts.Save(ctx, name, job.Image)
	if saveErr != nil {
		s.logger.Error("Failed to persist fallback artifact", zap.String("name", name), zap.Error(saveErr))
		status.Error = fmt.Sprintf("%s; artifact not saved: %v", status.Error, saveErr)
		return status, err
	}

	s.logger.Info("Stored fallback artifact", zap.String("key", key))
	status.Artifact = key
	return status, err
}
