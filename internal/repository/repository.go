// Package repository exposes one repository per back-office resource over
// the API client. Repositories validate payloads and filters before any
// request, serialise only the filter fields that are set, and pass client
// errors through wrapped so errors.As still finds them.
package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/zjrosen/propdesk/internal/api"
	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/log"
)

// Set bundles every repository behind one client.
type Set struct {
	Locations  *LocationRepository
	Builders   *BuilderRepository
	Projects   *ProjectRepository
	Properties *PropertyRepository
	Users      *UserRepository
	Leads      *LeadRepository
	Amenities  *AmenityRepository
}

// New builds the repository set.
func New(d api.Doer) *Set {
	return &Set{
		Locations:  &LocationRepository{api: d},
		Builders:   &BuilderRepository{api: d},
		Projects:   &ProjectRepository{api: d},
		Properties: &PropertyRepository{api: d},
		Users:      &UserRepository{api: d},
		Leads:      &LeadRepository{api: d},
		Amenities:  &AmenityRepository{api: d},
	}
}

func itemPath(base string, id domain.ID) string {
	return base + "/" + url.PathEscape(id.String())
}

func listAll[T any](ctx context.Context, d api.Doer, resource, path string, params url.Values) ([]T, error) {
	items, err := api.Fetch[[]T](ctx, d, http.MethodGet, path, api.Options{Params: params})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", resource, err)
	}
	log.Debug(log.CatRepo, "listed", "resource", resource, "count", len(items))
	return items, nil
}

func listPage[T any, F domain.Filter[F]](ctx context.Context, d api.Doer, resource, path string, filter F) (domain.Page[T], error) {
	if err := filter.Validate(); err != nil {
		return domain.Page[T]{}, fmt.Errorf("listing %s: %w", resource, err)
	}
	page, err := api.Fetch[domain.Page[T]](ctx, d, http.MethodGet, path, api.Options{Params: filter.Query()})
	if err != nil {
		return domain.Page[T]{}, fmt.Errorf("listing %s: %w", resource, err)
	}
	if err := page.Validate(); err != nil {
		log.ErrorErr(log.CatRepo, "rejected malformed page", err, "resource", resource)
		return domain.Page[T]{}, fmt.Errorf("listing %s: %w", resource, err)
	}
	log.Debug(log.CatRepo, "listed page", "resource", resource,
		"page", page.Page, "total", page.Total, "rows", len(page.Data))
	return page, nil
}

func getOne[T any](ctx context.Context, d api.Doer, resource, path string, params url.Values) (T, error) {
	item, err := api.Fetch[T](ctx, d, http.MethodGet, path, api.Options{Params: params})
	if err != nil {
		return item, fmt.Errorf("getting %s: %w", resource, err)
	}
	return item, nil
}

type validator interface {
	Validate() error
}

func send[T any](ctx context.Context, d api.Doer, method, resource, path string, payload validator) (T, error) {
	var zero T
	if err := payload.Validate(); err != nil {
		return zero, fmt.Errorf("%s %s: %w", verb(method), resource, err)
	}
	item, err := api.Fetch[T](ctx, d, method, path, api.Options{Body: payload})
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", verb(method), resource, err)
	}
	log.Info(log.CatRepo, verb(method)+" "+resource, "path", path)
	return item, nil
}

func remove(ctx context.Context, d api.Doer, resource, path string) error {
	if _, err := d.Do(ctx, http.MethodDelete, path, api.Options{}); err != nil {
		return fmt.Errorf("deleting %s: %w", resource, err)
	}
	log.Info(log.CatRepo, "deleted "+resource, "path", path)
	return nil
}

func verb(method string) string {
	switch method {
	case http.MethodPost:
		return "creating"
	case http.MethodPut, http.MethodPatch:
		return "updating"
	default:
		return method
	}
}
