package refcache

import (
	"context"

	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/repository"
)

// FromRepositories wires each kind to its listing endpoint.
func FromRepositories(repos *repository.Set) map[Kind]Source {
	return map[Kind]Source{
		KindLocations: func(ctx context.Context) ([]domain.Ref, error) {
			items, err := repos.Locations.List(ctx)
			return domain.Refs(items), err
		},
		KindBuilders: func(ctx context.Context) ([]domain.Ref, error) {
			items, err := repos.Builders.List(ctx)
			return domain.Refs(items), err
		},
		KindAmenities: func(ctx context.Context) ([]domain.Ref, error) {
			items, err := repos.Amenities.List(ctx)
			return domain.Refs(items), err
		},
	}
}
