package location

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/poscore/backend/internal/domain/location"
	"github.com/poscore/backend/internal/domain/shared"
)

// CreateLocationRequest creates a location
type CreateLocationRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Type    string `json:"type" binding:"required,oneof=PRODUCTION STORES SHOP"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty" binding:"max=50"`
}

// UpdateLocationRequest updates a location's details
type UpdateLocationRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty" binding:"max=50"`
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ToLocationResponse converts a domain location to its response form
func ToLocationResponse(l *location.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Type:      l.Type.String(),
		Address:   l.Address,
		Phone:     l.Phone,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
		Version:   l.GetVersion(),
	}
}

// ToLocationResponses converts a slice of locations
func ToLocationResponses(locations []*location.Location) []LocationResponse {
	responses := make([]LocationResponse, len(locations))
	for i, l := range locations {
		responses[i] = ToLocationResponse(l)
	}
	return responses
}

// ListFilter represents filter options for location lists
type ListFilter struct {
	Type     *string `form:"type" binding:"omitempty,oneof=PRODUCTION STORES SHOP"`
	Page     int     `form:"page" binding:"omitempty,min=1"`
	PageSize int     `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Service handles location operations
type Service struct {
	repo location.Repository
}

// NewService creates a new location Service
func NewService(repo location.Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a location. Names are unique within the tenant.
func (s *Service) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreateLocationRequest) (*LocationResponse, error) {
	existing, err := s.repo.FindByName(ctx, tenantID, req.Name)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	loc, err := location.NewLocation(tenantID, req.Name, location.LocationType(req.Type))
	if err != nil {
		return nil, err
	}
	loc.SetCreatedBy(actorID)
	loc.UpdateContact(req.Address, req.Phone)

	if err := s.repo.Save(ctx, loc); err != nil {
		return nil, err
	}

	resp := ToLocationResponse(loc)
	return &resp, nil
}

// Update changes a location's details. The type is fixed at creation;
// historical ledger rows depend on it.
func (s *Service) Update(ctx context.Context, tenantID, locationID uuid.UUID, req UpdateLocationRequest) (*LocationResponse, error) {
	loc, err := s.repo.FindByID(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}

	if err := loc.Rename(req.Name); err != nil {
		return nil, err
	}
	loc.UpdateContact(req.Address, req.Phone)

	if err := s.repo.SaveWithLock(ctx, loc); err != nil {
		return nil, err
	}

	resp := ToLocationResponse(loc)
	return &resp, nil
}

// Deactivate marks a location as inactive
func (s *Service) Deactivate(ctx context.Context, tenantID, locationID uuid.UUID) (*LocationResponse, error) {
	loc, err := s.repo.FindByID(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}

	loc.Deactivate()
	if err := s.repo.SaveWithLock(ctx, loc); err != nil {
		return nil, err
	}

	resp := ToLocationResponse(loc)
	return &resp, nil
}

// GetByID retrieves a location by ID
func (s *Service) GetByID(ctx context.Context, tenantID, locationID uuid.UUID) (*LocationResponse, error) {
	loc, err := s.repo.FindByID(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	resp := ToLocationResponse(loc)
	return &resp, nil
}

// List retrieves locations with optional type filtering
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]LocationResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
	}

	var locations []*location.Location
	var err error
	if filter.Type != nil {
		locations, err = s.repo.FindByType(ctx, tenantID, location.LocationType(*filter.Type), domainFilter)
	} else {
		locations, err = s.repo.FindAll(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	return ToLocationResponses(locations), total, nil
}
