package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 10

// Pagination is the 1-based page and page size of a list request.
type Pagination struct {
	Page  int
	Limit int
}

// FirstPage returns page 1 with the given limit.
func FirstPage(limit int) Pagination {
	if limit < 1 {
		limit = DefaultLimit
	}
	return Pagination{Page: 1, Limit: limit}
}

// Validate rejects non-positive page or limit.
func (p Pagination) Validate() error {
	if p.Page < 1 {
		return &ValidationError{Field: "page", Reason: "must be at least 1"}
	}
	if p.Limit < 1 {
		return &ValidationError{Field: "limit", Reason: "must be at least 1"}
	}
	return nil
}

func (p Pagination) encode(v url.Values) {
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
}

// Filter is implemented by every list filter. Only fields that are set
// are serialised into the query.
type Filter[F any] interface {
	Query() url.Values
	Validate() error
	Paging() Pagination
	WithPaging(Pagination) F
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Unfiltered is the filter for resources listed in full without paging.
type Unfiltered struct{}

func (Unfiltered) Query() url.Values                  { return nil }
func (Unfiltered) Validate() error                    { return nil }
func (Unfiltered) Paging() Pagination                 { return Pagination{Page: 1} }
func (u Unfiltered) WithPaging(Pagination) Unfiltered { return u }

// ProjectFilter narrows GET /project.
type ProjectFilter struct {
	Name              *string
	IsReadyPossession *bool
	Pagination
}

// NewProjectFilter returns an empty filter on page 1.
func NewProjectFilter(limit int) ProjectFilter {
	return ProjectFilter{Pagination: FirstPage(limit)}
}

// Paging implements Filter.
func (f ProjectFilter) Paging() Pagination { return f.Pagination }

// WithPaging implements Filter.
func (f ProjectFilter) WithPaging(p Pagination) ProjectFilter {
	f.Pagination = p
	return f
}

// WithName sets the name substring; blank clears it. Resets to page 1.
func (f ProjectFilter) WithName(name string) ProjectFilter {
	if name = strings.TrimSpace(name); name == "" {
		f.Name = nil
	} else {
		f.Name = &name
	}
	f.Page = 1
	return f
}

// WithReadyPossession sets or clears (nil) the ready-possession flag.
// Resets to page 1.
func (f ProjectFilter) WithReadyPossession(ready *bool) ProjectFilter {
	f.IsReadyPossession = ready
	f.Page = 1
	return f
}

// Query implements Filter.
func (f ProjectFilter) Query() url.Values {
	v := url.Values{}
	f.encode(v)
	if f.Name != nil {
		v.Set("name", *f.Name)
	}
	if f.IsReadyPossession != nil {
		v.Set("is_ready_possession", strconv.FormatBool(*f.IsReadyPossession))
	}
	return v
}

// Validate implements Filter.
func (f ProjectFilter) Validate() error {
	return f.Pagination.Validate()
}

// PropertyFilter narrows GET /property-management.
type PropertyFilter struct {
	PropertyType    *PropertyType
	PropertySubType *PropertySubType
	ListingFor      *ListingFor
	Furnishing      *Furnishing
	BHK             *int
	MinPrice        *int
	MaxPrice        *int
	Pagination
}

// NewPropertyFilter returns an empty filter on page 1.
func NewPropertyFilter(limit int) PropertyFilter {
	return PropertyFilter{Pagination: FirstPage(limit)}
}

// Paging implements Filter.
func (f PropertyFilter) Paging() Pagination { return f.Pagination }

// WithPaging implements Filter.
func (f PropertyFilter) WithPaging(p Pagination) PropertyFilter {
	f.Pagination = p
	return f
}

// Merge overlays every set field of other onto f and resets to page 1.
func (f PropertyFilter) Merge(other PropertyFilter) PropertyFilter {
	if other.PropertyType != nil {
		f.PropertyType = other.PropertyType
	}
	if other.PropertySubType != nil {
		f.PropertySubType = other.PropertySubType
	}
	if other.ListingFor != nil {
		f.ListingFor = other.ListingFor
	}
	if other.Furnishing != nil {
		f.Furnishing = other.Furnishing
	}
	if other.BHK != nil {
		f.BHK = other.BHK
	}
	if other.MinPrice != nil {
		f.MinPrice = other.MinPrice
	}
	if other.MaxPrice != nil {
		f.MaxPrice = other.MaxPrice
	}
	f.Page = 1
	return f
}

// Reset clears every filter field and returns to page 1.
func (f PropertyFilter) Reset() PropertyFilter {
	return PropertyFilter{Pagination: FirstPage(f.Limit)}
}

// Query implements Filter.
func (f PropertyFilter) Query() url.Values {
	v := url.Values{}
	f.encode(v)
	if f.PropertyType != nil {
		v.Set("propertyType", string(*f.PropertyType))
	}
	if f.PropertySubType != nil {
		v.Set("propertySubType", string(*f.PropertySubType))
	}
	if f.ListingFor != nil {
		v.Set("listingFor", string(*f.ListingFor))
	}
	if f.Furnishing != nil {
		v.Set("furnishing", string(*f.Furnishing))
	}
	if f.BHK != nil {
		v.Set("bhk", strconv.Itoa(*f.BHK))
	}
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.Itoa(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", strconv.Itoa(*f.MaxPrice))
	}
	return v
}

// Validate implements Filter.
func (f PropertyFilter) Validate() error {
	if err := f.Pagination.Validate(); err != nil {
		return err
	}
	if f.PropertyType != nil && !f.PropertyType.Valid() {
		return &ValidationError{Field: "propertyType", Reason: fmt.Sprintf("unknown value %q", *f.PropertyType)}
	}
	if f.PropertySubType != nil && !f.PropertySubType.Valid() {
		return &ValidationError{Field: "propertySubType", Reason: fmt.Sprintf("unknown value %q", *f.PropertySubType)}
	}
	if f.ListingFor != nil && !f.ListingFor.Valid() {
		return &ValidationError{Field: "listingFor", Reason: fmt.Sprintf("unknown value %q", *f.ListingFor)}
	}
	if f.Furnishing != nil && !f.Furnishing.Valid() {
		return &ValidationError{Field: "furnishing", Reason: fmt.Sprintf("unknown value %q", *f.Furnishing)}
	}
	if f.BHK != nil && *f.BHK < 0 {
		return &ValidationError{Field: "bhk", Reason: "must not be negative"}
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return &ValidationError{Field: "minPrice", Reason: "must not be negative"}
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return &ValidationError{Field: "maxPrice", Reason: "must not be negative"}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return &ValidationError{Field: "minPrice", Reason: "must not exceed maxPrice"}
	}
	return nil
}
