package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zjrosen/propdesk/internal/api"
	"github.com/zjrosen/propdesk/internal/domain"
)

// LocationRepository serves /city. Cities are listed in full.
type LocationRepository struct{ api api.Doer }

func (r *LocationRepository) List(ctx context.Context) ([]domain.Location, error) {
	return listAll[domain.Location](ctx, r.api, "locations", "/city", nil)
}

func (r *LocationRepository) Create(ctx context.Context, p domain.LocationPayload) (domain.Location, error) {
	return send[domain.Location](ctx, r.api, http.MethodPost, "location", "/city", p)
}

// BuilderRepository serves /builder.
type BuilderRepository struct{ api api.Doer }

func (r *BuilderRepository) List(ctx context.Context) ([]domain.Builder, error) {
	return listAll[domain.Builder](ctx, r.api, "builders", "/builder", nil)
}

// GetByID fetches one builder, optionally with its contact persons.
func (r *BuilderRepository) GetByID(ctx context.Context, id domain.ID, includeContactPersons bool) (domain.Builder, error) {
	params := url.Values{"include_contact_persons": {strconv.FormatBool(includeContactPersons)}}
	return getOne[domain.Builder](ctx, r.api, "builder", itemPath("/builder", id), params)
}

func (r *BuilderRepository) Create(ctx context.Context, p domain.BuilderPayload) (domain.Builder, error) {
	return send[domain.Builder](ctx, r.api, http.MethodPost, "builder", "/builder", p)
}

// AddContactPerson attaches a contact to builder id.
func (r *BuilderRepository) AddContactPerson(ctx context.Context, id domain.ID, p domain.ContactPersonPayload) (domain.ContactPerson, error) {
	return send[domain.ContactPerson](ctx, r.api, http.MethodPost, "contact person", itemPath("/builder", id)+"/contact", p)
}

// ProjectRepository serves /project with server-side paging.
type ProjectRepository struct{ api api.Doer }

func (r *ProjectRepository) List(ctx context.Context, f domain.ProjectFilter) (domain.Page[domain.Project], error) {
	return listPage[domain.Project](ctx, r.api, "projects", "/project", f)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id domain.ID) (domain.Project, error) {
	return getOne[domain.Project](ctx, r.api, "project", itemPath("/project", id), nil)
}

func (r *ProjectRepository) Create(ctx context.Context, p domain.ProjectPayload) (domain.Project, error) {
	return send[domain.Project](ctx, r.api, http.MethodPost, "project", "/project", p)
}

func (r *ProjectRepository) Update(ctx context.Context, id domain.ID, p domain.ProjectPayload) (domain.Project, error) {
	return send[domain.Project](ctx, r.api, http.MethodPut, "project", itemPath("/project", id), p)
}

// Delete removes a project. Callers refresh their listing afterwards.
func (r *ProjectRepository) Delete(ctx context.Context, id domain.ID) error {
	return remove(ctx, r.api, "project", itemPath("/project", id))
}

// PropertyRepository serves /property-management with server-side paging.
type PropertyRepository struct{ api api.Doer }

func (r *PropertyRepository) List(ctx context.Context, f domain.PropertyFilter) (domain.Page[domain.Property], error) {
	return listPage[domain.Property](ctx, r.api, "properties", "/property-management", f)
}

func (r *PropertyRepository) GetByID(ctx context.Context, id domain.ID) (domain.Property, error) {
	return getOne[domain.Property](ctx, r.api, "property", itemPath("/property-management", id), nil)
}

func (r *PropertyRepository) Create(ctx context.Context, p domain.PropertyPayload) (domain.Property, error) {
	return send[domain.Property](ctx, r.api, http.MethodPost, "property", "/property-management", p)
}

func (r *PropertyRepository) Update(ctx context.Context, id domain.ID, p domain.PropertyPayload) (domain.Property, error) {
	return send[domain.Property](ctx, r.api, http.MethodPut, "property", itemPath("/property-management", id), p)
}

// Delete removes a property. Callers refresh their listing afterwards.
func (r *PropertyRepository) Delete(ctx context.Context, id domain.ID) error {
	return remove(ctx, r.api, "property", itemPath("/property-management", id))
}

// UserRepository lists staff accounts.
type UserRepository struct{ api api.Doer }

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return listAll[domain.User](ctx, r.api, "users", "/user/get-all-users", nil)
}

// LeadRepository lists leads. The endpoint wraps the array in {data}.
type LeadRepository struct{ api api.Doer }

type leadEnvelope struct {
	Data []domain.Lead `json:"data"`
}

func (r *LeadRepository) List(ctx context.Context) ([]domain.Lead, error) {
	env, err := api.Fetch[leadEnvelope](ctx, r.api, http.MethodGet, "/leads", api.Options{})
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	return env.Data, nil
}

// AmenityRepository lists project amenities.
type AmenityRepository struct{ api api.Doer }

func (r *AmenityRepository) List(ctx context.Context) ([]domain.Amenity, error) {
	return listAll[domain.Amenity](ctx, r.api, "amenities", "/project/amenities/list", nil)
}
