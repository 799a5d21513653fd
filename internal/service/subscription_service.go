package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/coolify-admin/internal/models"
	"github.com/maheshrc27/coolify-admin/internal/repository"
	"github.com/maheshrc27/coolify-admin/internal/transfer"
)

// Deployer stops and starts every resource of a Coolify project.
type Deployer interface {
	StopProject(ctx context.Context, projectUUID string) error
	StartProject(ctx context.Context, projectUUID string) error
}

// SubscriptionService manages the client_projects rows an operator edits by
// hand. Automatic expiry is handled by the reconciler job.
type SubscriptionService interface {
	Attach(ctx context.Context, clientID int64, req *transfer.AttachProjectRequest) (*models.ClientProject, error)
	Reschedule(ctx context.Context, id int64, req *transfer.UpdateClientProjectRequest) (*models.ClientProject, error)
	Start(ctx context.Context, id int64) (*models.ClientProject, error)
	Stop(ctx context.Context, id int64) (*models.ClientProject, error)
	Remove(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type subscriptionService struct {
	c        repository.ClientRepository
	p        repository.ProjectRepository
	cp       repository.ClientProjectRepository
	deployer Deployer
	now      func() time.Time
}

func NewSubscriptionService(
	c repository.ClientRepository,
	p repository.ProjectRepository,
	cp repository.ClientProjectRepository,
	deployer Deployer) SubscriptionService {
	return &subscriptionService{
		c:        c,
		p:        p,
		cp:       cp,
		deployer: deployer,
		now:      time.Now,
	}
}

const expiringWithin = 7 * 24 * time.Hour

func (s *subscriptionService) Attach(ctx context.Context, clientID int64, req *transfer.AttachProjectRequest) (*models.ClientProject, error) {
	if req.ProjectID == 0 || req.EndDate == "" {
		return nil, fmt.Errorf("%w: projectId and endDate are required", ErrValidation)
	}

	endDate, err := ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	startDate := s.now().UTC()
	if req.StartDate != "" {
		if startDate, err = ParseDate(req.StartDate); err != nil {
			return nil, err
		}
	}

	if _, isExist, err := s.c.GetByID(ctx, clientID); err != nil {
		return nil, err
	} else if !isExist {
		return nil, ErrNotFound
	}

	if _, isExist, err := s.p.GetByID(ctx, req.ProjectID); err != nil {
		return nil, err
	} else if !isExist {
		return nil, fmt.Errorf("%w: project %d does not exist", ErrValidation, req.ProjectID)
	}

	attached, err := s.cp.Exists(ctx, clientID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if attached {
		return nil, ErrAlreadyAttached
	}

	id, err := s.cp.Create(ctx, &models.ClientProject{
		ClientID:  clientID,
		ProjectID: req.ProjectID,
		Status:    models.ClientProjectStatusActive,
		StartDate: startDate,
		EndDate:   endDate,
		Notes:     blankToNil(req.Notes),
	})
	if err != nil {
		return nil, err
	}

	return s.get(ctx, id)
}

func (s *subscriptionService) Reschedule(ctx context.Context, id int64, req *transfer.UpdateClientProjectRequest) (*models.ClientProject, error) {
	if req.EndDate == "" {
		return nil, fmt.Errorf("%w: endDate is required", ErrValidation)
	}

	endDate, err := ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	updated, err := s.cp.UpdateSchedule(ctx, id, endDate, req.Notes)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}

	return s.get(ctx, id)
}

// Start brings the project back up in Coolify and marks the subscription
// active. A subscription whose end date has passed is paused again by the
// next reconciler run.
func (s *subscriptionService) Start(ctx context.Context, id int64) (*models.ClientProject, error) {
	cp, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.deployer.StartProject(ctx, cp.CoolifyUUID); err != nil {
		slog.Info("manual start failed", "client_project", id, "uuid", cp.CoolifyUUID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDeployment, err)
	}

	if cp.Expired(s.now()) {
		slog.Warn("started an expired subscription; the next reconciler run will pause it",
			"client_project", id, "end_date", cp.EndDate)
	}

	return s.setStatus(ctx, id, models.ClientProjectStatusActive)
}

func (s *subscriptionService) Stop(ctx context.Context, id int64) (*models.ClientProject, error) {
	cp, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.deployer.StopProject(ctx, cp.CoolifyUUID); err != nil {
		slog.Info("manual stop failed", "client_project", id, "uuid", cp.CoolifyUUID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDeployment, err)
	}

	return s.setStatus(ctx, id, models.ClientProjectStatusPaused)
}

func (s *subscriptionService) Remove(ctx context.Context, id int64) error {
	removed, err := s.cp.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *subscriptionService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	return s.cp.Stats(ctx, s.now(), expiringWithin)
}

func (s *subscriptionService) setStatus(ctx context.Context, id int64, status string) (*models.ClientProject, error) {
	updated, err := s.cp.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}
	return s.get(ctx, id)
}

func (s *subscriptionService) get(ctx context.Context, id int64) (*models.ClientProject, error) {
	cp, isExist, err := s.cp.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrNotFound
	}
	return cp, nil
}
