package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("patient not found")
	ErrDuplicateEmail = errors.New("patient email already registered")
	ErrInvalidInput   = errors.New("invalid patient")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	if existing, err := s.repo.GetByEmail(ctx, p.Email); err == nil && existing != nil {
		return ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(current.Email, p.Email) {
		if existing, err := s.repo.GetByEmail(ctx, p.Email); err == nil && existing != nil {
			return ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Search(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	params := map[string]string{}
	if name != "" {
		params["name"] = name
	}
	return s.repo.Search(ctx, params, limit, offset)
}

func validate(p *Patient) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return nil
}
