package cmd

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/refcache"
	"github.com/zjrosen/propdesk/internal/render"
)

var resourceAliases = map[string]string{
	"location":   "locations",
	"locations":  "locations",
	"developer":  "developers",
	"developers": "developers",
	"builder":    "developers",
	"builders":   "developers",
	"project":    "projects",
	"projects":   "projects",
	"property":   "properties",
	"properties": "properties",
	"user":       "users",
	"users":      "users",
	"lead":       "leads",
	"leads":      "leads",
	"amenity":    "amenities",
	"amenities":  "amenities",
}

// resourceNames is the canonical set shown in help and errors.
var resourceNames = []string{"locations", "developers", "projects", "properties", "users", "leads", "amenities"}

func canonicalResource(name string) (string, error) {
	if r, ok := resourceAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown resource %q (want one of %s)", name, strings.Join(resourceNames, ", "))
}

// listing is one fetched page ready for output.
type listing struct {
	resource string
	headers  []string
	rows     []render.Row
	records  any
	page     int
	pages    int
	total    int
}

func (l listing) footer() string {
	if l.pages <= 1 {
		return fmt.Sprintf("%d total", l.total)
	}
	return fmt.Sprintf("%d total · page %d of %d", l.total, l.page, l.pages)
}

func newListing[T any](resource string, page domain.Page[T], columns []render.Column[T], refs render.Refs) listing {
	columns = render.Visible(columns, cfg.UI.HiddenColumns[resource])
	return listing{
		resource: resource,
		headers:  render.Headers(columns),
		rows:     render.PageRows(page, columns, refs),
		records:  page.Data,
		page:     page.Page,
		pages:    page.TotalPages,
		total:    page.Total,
	}
}

// listOptions holds the filter flags shared by list and export.
type listOptions struct {
	name       string
	ready      string
	propType   string
	subType    string
	listingFor string
	furnishing string
	bhk        int
	minPrice   int
	maxPrice   int
	page       int
	limit      int
}

var (
	projectFlags  = []string{"name", "ready"}
	propertyFlags = []string{"type", "sub-type", "listing-for", "furnishing", "bhk", "min-price", "max-price"}
	pagingFlags   = []string{"page", "limit"}
)

func addListFlags(cmd *cobra.Command, o *listOptions) {
	f := cmd.Flags()
	f.StringVar(&o.name, "name", "", "projects: name contains")
	f.StringVar(&o.ready, "ready", "", "projects: ready possession (true|false)")
	f.StringVar(&o.propType, "type", "", "properties: "+strings.Join(domain.Values(domain.PropertyTypes), "|"))
	f.StringVar(&o.subType, "sub-type", "", "properties: "+strings.Join(domain.Values(domain.PropertySubTypes), "|"))
	f.StringVar(&o.listingFor, "listing-for", "", "properties: "+strings.Join(domain.Values(domain.ListingFors), "|"))
	f.StringVar(&o.furnishing, "furnishing", "", "properties: "+strings.Join(domain.Values(domain.Furnishings), "|"))
	f.IntVar(&o.bhk, "bhk", 0, "properties: bedrooms")
	f.IntVar(&o.minPrice, "min-price", 0, "properties: minimum total price in rupees")
	f.IntVar(&o.maxPrice, "max-price", 0, "properties: maximum total price in rupees")
	f.IntVar(&o.page, "page", 1, "page number (projects and properties)")
	f.IntVar(&o.limit, "limit", 0, "rows per page (default: ui.page_size)")
}

// rejectFlags fails when a flag that does not apply to resource was set.
func rejectFlags(cmd *cobra.Command, resource string, allowed ...string) error {
	for _, group := range [][]string{projectFlags, propertyFlags, pagingFlags} {
		for _, name := range group {
			if cmd.Flags().Changed(name) && !slices.Contains(allowed, name) {
				return fmt.Errorf("flag --%s does not apply to %s", name, resource)
			}
		}
	}
	return nil
}

func (o listOptions) pagination() domain.Pagination {
	limit := o.limit
	if limit == 0 {
		limit = cfg.UI.PageSize
	}
	p := domain.FirstPage(limit)
	p.Page = o.page
	return p
}

func (o listOptions) projectFilter(cmd *cobra.Command) (domain.ProjectFilter, error) {
	f := domain.ProjectFilter{Pagination: o.pagination()}
	if cmd.Flags().Changed("name") {
		f.Name = domain.Ptr(o.name)
	}
	if cmd.Flags().Changed("ready") {
		ready, err := strconv.ParseBool(o.ready)
		if err != nil {
			return f, fmt.Errorf("--ready: want true or false, got %q", o.ready)
		}
		f.IsReadyPossession = domain.Ptr(ready)
	}
	return f, f.Validate()
}

func (o listOptions) propertyFilter(cmd *cobra.Command) (domain.PropertyFilter, error) {
	f := domain.PropertyFilter{Pagination: o.pagination()}
	changed := cmd.Flags().Changed
	if changed("type") {
		f.PropertyType = domain.Ptr(domain.PropertyType(o.propType))
	}
	if changed("sub-type") {
		f.PropertySubType = domain.Ptr(domain.PropertySubType(o.subType))
	}
	if changed("listing-for") {
		f.ListingFor = domain.Ptr(domain.ListingFor(o.listingFor))
	}
	if changed("furnishing") {
		f.Furnishing = domain.Ptr(domain.Furnishing(o.furnishing))
	}
	if changed("bhk") {
		f.BHK = domain.Ptr(o.bhk)
	}
	if changed("min-price") {
		f.MinPrice = domain.Ptr(o.minPrice)
	}
	if changed("max-price") {
		f.MaxPrice = domain.Ptr(o.maxPrice)
	}
	return f, f.Validate()
}

// prefetch loads reference kinds for one-shot rendering. A kind that fails
// to load resolves every id as not found.
func prefetch(ctx context.Context, rt *runtime, kinds ...refcache.Kind) render.StaticRefs {
	refs := render.StaticRefs{}
	for _, kind := range kinds {
		idx, err := rt.refs.GetOrFetch(ctx, kind)
		if err != nil {
			log.Warn(log.CatCache, "Reference data unavailable", "kind", string(kind), "error", err)
			idx = refcache.NewIndex(nil)
		}
		refs[kind] = idx
	}
	return refs
}

func fetchListing(ctx context.Context, cmd *cobra.Command, rt *runtime, resource string, o listOptions) (listing, error) {
	switch resource {
	case "projects":
		if err := rejectFlags(cmd, resource, append(projectFlags, pagingFlags...)...); err != nil {
			return listing{}, err
		}
		f, err := o.projectFilter(cmd)
		if err != nil {
			return listing{}, err
		}
		page, err := rt.repos.Projects.List(ctx, f)
		if err != nil {
			return listing{}, err
		}
		refs := prefetch(ctx, rt, refcache.KindBuilders, refcache.KindLocations)
		return newListing(resource, page, render.ProjectColumns(), refs), nil

	case "properties":
		if err := rejectFlags(cmd, resource, append(propertyFlags, pagingFlags...)...); err != nil {
			return listing{}, err
		}
		f, err := o.propertyFilter(cmd)
		if err != nil {
			return listing{}, err
		}
		page, err := rt.repos.Properties.List(ctx, f)
		if err != nil {
			return listing{}, err
		}
		refs := prefetch(ctx, rt, refcache.KindLocations)
		return newListing(resource, page, render.PropertyColumns(), refs), nil
	}

	if err := rejectFlags(cmd, resource); err != nil {
		return listing{}, err
	}
	switch resource {
	case "locations":
		items, err := rt.repos.Locations.List(ctx)
		if err != nil {
			return listing{}, err
		}
		return newListing(resource, domain.SinglePage(items), render.LocationColumns(), nil), nil
	case "developers":
		items, err := rt.repos.Builders.List(ctx)
		if err != nil {
			return listing{}, err
		}
		return newListing(resource, domain.SinglePage(items), render.BuilderColumns(), nil), nil
	case "users":
		items, err := rt.repos.Users.List(ctx)
		if err != nil {
			return listing{}, err
		}
		return newListing(resource, domain.SinglePage(items), render.UserColumns(), nil), nil
	case "leads":
		items, err := rt.repos.Leads.List(ctx)
		if err != nil {
			return listing{}, err
		}
		return newListing(resource, domain.SinglePage(items), render.LeadColumns(), nil), nil
	case "amenities":
		items, err := rt.repos.Amenities.List(ctx)
		if err != nil {
			return listing{}, err
		}
		return newListing(resource, domain.SinglePage(items), amenityColumns(), nil), nil
	}
	return listing{}, fmt.Errorf("cannot list %s", resource)
}

func amenityColumns() []render.Column[domain.Amenity] {
	return []render.Column[domain.Amenity]{
		{Key: "no", Header: "No.", Pinned: true, RowNumber: true},
		{Key: "id", Header: "ID", Value: func(a domain.Amenity) string { return a.ID.String() }},
		{Key: "name", Header: "Name", Pinned: true, Value: func(a domain.Amenity) string { return a.Name }},
	}
}

// fetchRecord returns a single record by id.
func fetchRecord(ctx context.Context, rt *runtime, resource string, id domain.ID) (any, error) {
	switch resource {
	case "projects":
		return rt.repos.Projects.GetByID(ctx, id)
	case "properties":
		return rt.repos.Properties.GetByID(ctx, id)
	case "developers":
		return rt.repos.Builders.GetByID(ctx, id, true)
	case "locations":
		return findByID(ctx, rt.repos.Locations.List, id, func(l domain.Location) domain.ID { return l.ID })
	case "users":
		return findByID(ctx, rt.repos.Users.List, id, func(u domain.User) domain.ID { return u.ID })
	case "leads":
		return findByID(ctx, rt.repos.Leads.List, id, func(l domain.Lead) domain.ID { return l.ID })
	case "amenities":
		return findByID(ctx, rt.repos.Amenities.List, id, func(a domain.Amenity) domain.ID { return a.ID })
	}
	return nil, fmt.Errorf("cannot get %s", resource)
}

// findByID scans an unpaginated collection; the API has no single-record
// endpoint for these resources.
func findByID[T any](ctx context.Context, list func(context.Context) ([]T, error), id domain.ID, idOf func(T) domain.ID) (T, error) {
	var zero T
	items, err := list(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if idOf(item) == id {
			return item, nil
		}
	}
	return zero, fmt.Errorf("no record with id %s", id)
}
