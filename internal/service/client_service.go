package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/maheshrc27/coolify-admin/internal/models"
	"github.com/maheshrc27/coolify-admin/internal/repository"
	"github.com/maheshrc27/coolify-admin/internal/transfer"
)

type ClientService interface {
	List(ctx context.Context) ([]*models.Client, error)
	Get(ctx context.Context, id int64) (*models.Client, []*models.ClientProject, error)
	Create(ctx context.Context, req *transfer.ClientRequest) (*models.Client, error)
	Update(ctx context.Context, id int64, req *transfer.ClientRequest) (*models.Client, error)
	Remove(ctx context.Context, id int64) error
}

type clientService struct {
	c  repository.ClientRepository
	cp repository.ClientProjectRepository
}

func NewClientService(c repository.ClientRepository, cp repository.ClientProjectRepository) ClientService {
	return &clientService{
		c:  c,
		cp: cp,
	}
}

func (s *clientService) List(ctx context.Context) ([]*models.Client, error) {
	return s.c.List(ctx)
}

func (s *clientService) Get(ctx context.Context, id int64) (*models.Client, []*models.ClientProject, error) {
	client, isExist, err := s.c.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !isExist {
		return nil, nil, ErrNotFound
	}

	projects, err := s.cp.ListByClientID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return client, projects, nil
}

func (s *clientService) Create(ctx context.Context, req *transfer.ClientRequest) (*models.Client, error) {
	client, err := clientFromRequest(req)
	if err != nil {
		return nil, err
	}
	return s.c.Create(ctx, client)
}

func (s *clientService) Update(ctx context.Context, id int64, req *transfer.ClientRequest) (*models.Client, error) {
	client, err := clientFromRequest(req)
	if err != nil {
		return nil, err
	}
	client.ID = id

	updated, isExist, err := s.c.Update(ctx, client)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrNotFound
	}
	return updated, nil
}

func (s *clientService) Remove(ctx context.Context, id int64) error {
	removed, err := s.c.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func clientFromRequest(req *transfer.ClientRequest) (*models.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	return &models.Client{
		Name:    name,
		Email:   blankToNil(req.Email),
		Phone:   blankToNil(req.Phone),
		Company: blankToNil(req.Company),
		Notes:   blankToNil(req.Notes),
	}, nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
