package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jufeed/feedback-backend/internal/model"
	"github.com/jufeed/feedback-backend/internal/repository"
)

// ErrAdminNotFound is returned when an admin id or username does not exist.
var ErrAdminNotFound = errors.New("admin not found")

// AdminService manages administrator accounts.
type AdminService struct {
	repo *repository.AdminRepository
	auth *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(repo *repository.AdminRepository, auth *AuthService) *AdminService {
	return &AdminService{repo: repo, auth: auth}
}

// GetByID retrieves one admin.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// GetByUsername retrieves one admin by username.
func (s *AdminService) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// Create adds an admin account with a hashed password.
func (s *AdminService) Create(ctx context.Context, username, name, password string) (*model.Admin, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin := &model.Admin{
		Username:     username,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
