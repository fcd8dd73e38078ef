package render

import (
	"strconv"

	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/refcache"
)

const (
	UnknownDeveloper     = "Unknown Developer"
	LocationNotSpecified = "Location not specified"
	CitiesNotFound       = "Cities not found"
)

func numberColumn[T any]() Column[T] {
	return Column[T]{Key: "no", Header: "No.", Width: 4, Align: AlignRight, Pinned: true, RowNumber: true}
}

func locationsCell(ids []domain.ID, refs Refs) Cell {
	return ResolveMany(refs, refcache.KindLocations, ids, LocationNotSpecified, CitiesNotFound)
}

// LocationColumns lists cities.
func LocationColumns() []Column[domain.Location] {
	return []Column[domain.Location]{
		numberColumn[domain.Location](),
		{Key: "name", Header: "Name", MinWidth: 12, Pinned: true, Value: func(l domain.Location) string { return l.Name }},
		{Key: "state", Header: "State", MinWidth: 10, Value: func(l domain.Location) string { return OrNotSpecified(l.State) }},
		{Key: "country", Header: "Country", MinWidth: 8, Value: func(l domain.Location) string { return OrNotSpecified(l.Country) }},
		{Key: "pincode", Header: "Pincode", Width: 8, Value: func(l domain.Location) string { return OrNotSpecified(l.Pincode) }},
		{Key: "created_at", Header: "Created", Width: 12, Value: func(l domain.Location) string { return FormatDate(l.CreatedAt) }},
	}
}

// BuilderColumns lists developers.
func BuilderColumns() []Column[domain.Builder] {
	return []Column[domain.Builder]{
		numberColumn[domain.Builder](),
		{Key: "name", Header: "Developer Name", MinWidth: 14, Pinned: true, Value: func(b domain.Builder) string { return b.Name }},
		{Key: "phone", Header: "Phone", MinWidth: 12, Value: func(b domain.Builder) string { return OrNotSpecified(b.Phone) }},
		{Key: "email", Header: "Email", MinWidth: 16, Value: func(b domain.Builder) string { return OrNotSpecified(b.Email) }},
		{Key: "status", Header: "Status", Width: 10, Value: func(b domain.Builder) string { return Humanize(b.Status) }},
	}
}

// ProjectColumns lists projects with their developer and cities resolved.
func ProjectColumns() []Column[domain.Project] {
	return []Column[domain.Project]{
		numberColumn[domain.Project](),
		{Key: "name", Header: "Project Name", MinWidth: 14, Pinned: true, Value: func(p domain.Project) string { return p.Name }},
		{Key: "developer", Header: "Developer", MinWidth: 14, Resolve: func(p domain.Project, refs Refs) Cell {
			return ResolveOne(refs, refcache.KindBuilders, p.BuilderID, UnknownDeveloper)
		}},
		{Key: "location", Header: "Location", MinWidth: 16, Resolve: func(p domain.Project, refs Refs) Cell {
			return locationsCell(p.CityIDs, refs)
		}},
		{Key: "property_type", Header: "Property Type", MinWidth: 12, Value: func(p domain.Project) string { return Humanize(p.ConstructionType) }},
		{Key: "launch", Header: "Launch Date", Width: 11, Value: func(p domain.Project) string {
			if p.PossessionYear <= 0 {
				return TBD
			}
			return strconv.Itoa(p.PossessionYear)
		}},
		{Key: "possession", Header: "Possession Date", MinWidth: 14, Value: func(p domain.Project) string {
			return Possession(p.PossessionMonth, p.PossessionYear)
		}},
	}
}

// PropertyColumns lists properties with their locations resolved.
func PropertyColumns() []Column[domain.Property] {
	return []Column[domain.Property]{
		numberColumn[domain.Property](),
		{Key: "title", Header: "Title", MinWidth: 16, Pinned: true, Value: func(p domain.Property) string { return p.Title }},
		{Key: "property_type", Header: "Property Type", MinWidth: 12, Value: func(p domain.Property) string { return Humanize(string(p.PropertySubType)) }},
		{Key: "bhk", Header: "BHK", Width: 4, Align: AlignRight, Value: func(p domain.Property) string { return strconv.Itoa(p.BHK) }},
		{Key: "furnishing", Header: "Furnishing", MinWidth: 12, Value: func(p domain.Property) string { return Humanize(string(p.Furnishing)) }},
		{Key: "price", Header: "Price", MinWidth: 12, Align: AlignRight, Value: func(p domain.Property) string { return FormatINR(p.Pricing.TotalAmount) }},
		{Key: "location", Header: "Location", MinWidth: 16, Resolve: func(p domain.Property, refs Refs) Cell {
			return locationsCell(p.LocationIDs, refs)
		}},
	}
}

// UserColumns lists staff accounts.
func UserColumns() []Column[domain.User] {
	return []Column[domain.User]{
		numberColumn[domain.User](),
		{Key: "email", Header: "Email", MinWidth: 18, Pinned: true, Value: func(u domain.User) string { return u.Email }},
		{Key: "first_name", Header: "First Name", MinWidth: 10, Value: func(u domain.User) string { return OrNotSpecified(u.FirstName) }},
		{Key: "last_name", Header: "Last Name", MinWidth: 10, Value: func(u domain.User) string { return OrNotSpecified(u.LastName) }},
		{Key: "phone", Header: "Phone", MinWidth: 12, Value: func(u domain.User) string { return OrNotSpecified(u.Phone) }},
		{Key: "role", Header: "Role", Width: 6, Value: func(u domain.User) string { return Humanize(string(u.Role)) }},
	}
}

// LeadColumns lists leads.
func LeadColumns() []Column[domain.Lead] {
	return []Column[domain.Lead]{
		numberColumn[domain.Lead](),
		{Key: "name", Header: "Name", MinWidth: 14, Pinned: true, Value: func(l domain.Lead) string { return OrNotSpecified(l.FullName()) }},
		{Key: "phone", Header: "Phone", MinWidth: 12, Value: func(l domain.Lead) string { return OrNotSpecified(l.Phone) }},
		{Key: "email", Header: "Email", MinWidth: 16, Value: func(l domain.Lead) string { return OrNotSpecified(l.Email) }},
		{Key: "source", Header: "Source", MinWidth: 10, Value: func(l domain.Lead) string {
			if l.Source == nil {
				return NotSpecified
			}
			return OrNotSpecified(l.Source.Name)
		}},
		{Key: "status", Header: "Status", MinWidth: 12, Value: func(l domain.Lead) string { return Humanize(string(l.Status)) }},
		{Key: "interested_property", Header: "Interested Property", MinWidth: 16, Value: func(l domain.Lead) string {
			if l.InterestedProperty == nil {
				return NotSpecified
			}
			return OrNotSpecified(l.InterestedProperty.Title)
		}},
		{Key: "created_at", Header: "Inquiry Date", Width: 12, Value: func(l domain.Lead) string { return FormatDate(l.CreatedAt) }},
		{Key: "updated_at", Header: "Last Updated", Width: 12, Value: func(l domain.Lead) string { return FormatDate(l.UpdatedAt) }},
	}
}
