package browse

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/listview"
	"github.com/zjrosen/propdesk/internal/mode"
	"github.com/zjrosen/propdesk/internal/refcache"
	"github.com/zjrosen/propdesk/internal/render"
	"github.com/zjrosen/propdesk/internal/ui/shared/markdown"
)

// Screens builds the tab screens in display order.
func Screens(svc mode.Services) []mode.Controller {
	return []mode.Controller{
		New(Projects(svc), svc),
		New(Properties(svc), svc),
		New(Developers(svc), svc),
		New(Locations(svc), svc),
		New(Leads(svc), svc),
		New(Users(svc), svc),
	}
}

func pageSize(svc mode.Services) int {
	if svc.Config != nil {
		return svc.Config.UI.PageSize
	}
	return domain.DefaultLimit
}

// Projects is the paginated project list with name search and a
// ready-possession toggle.
func Projects(svc mode.Services) Definition[domain.Project, domain.ProjectFilter] {
	repo := svc.Repos.Projects
	return Definition[domain.Project, domain.ProjectFilter]{
		Resource: "projects",
		Title:    "Projects",
		Columns:  render.ProjectColumns(),
		Fetch:    repo.List,
		Filter:   domain.NewProjectFilter(pageSize(svc)),
		RefKinds: []refcache.Kind{refcache.KindBuilders, refcache.KindLocations},
		Search:   domain.ProjectFilter.WithName,
		Toggles: []Toggle[domain.ProjectFilter]{{
			Key:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "ready possession")),
			Label: "Ready",
			Next: func(f domain.ProjectFilter) domain.ProjectFilter {
				switch {
				case f.IsReadyPossession == nil:
					return f.WithReadyPossession(domain.Ptr(true))
				case *f.IsReadyPossession:
					return f.WithReadyPossession(domain.Ptr(false))
				default:
					return f.WithReadyPossession(nil)
				}
			},
			Value: func(f domain.ProjectFilter) string {
				if f.IsReadyPossession == nil {
					return ""
				}
				if *f.IsReadyPossession {
					return "Yes"
				}
				return "No"
			},
		}},
		Clear: func(f domain.ProjectFilter) domain.ProjectFilter {
			return domain.NewProjectFilter(f.Limit)
		},
		ID:   func(p domain.Project) domain.ID { return p.ID },
		Name: func(p domain.Project) string { return p.Name },
		Detail: func(ctx context.Context, p domain.Project, refs render.Refs) (string, error) {
			full, err := repo.GetByID(ctx, p.ID)
			if err != nil {
				return "", err
			}
			fields := rowFields(render.ProjectColumns(), full, refs)
			fields = append(fields,
				markdown.Field{Label: "Project Type", Value: render.Humanize(string(full.ProjectType))},
				markdown.Field{Label: "Status", Value: render.Humanize(string(full.Status))},
				markdown.Field{Label: "Ready Possession", Value: yesNo(full.IsReadyPossession)},
			)
			if svc.Refs != nil && len(full.AmenityIDs) > 0 {
				if idx, err := svc.Refs.GetOrFetch(ctx, refcache.KindAmenities); err == nil {
					cell := render.ResolveMany(render.StaticRefs{refcache.KindAmenities: idx}, refcache.KindAmenities,
						full.AmenityIDs, render.NotSpecified, render.NotSpecified)
					fields = append(fields, markdown.Field{Label: "Amenities", Value: fullText(cell)})
				}
			}
			return markdown.Document(full.Name, fields, full.Description), nil
		},
		Deletion: &Deletion{
			Delete:      repo.Delete,
			Noun:        "project",
			SuccessText: "Project deleted successfully",
			FailureText: "Failed to delete project",
		},
	}
}

type priceBand struct {
	label    string
	min, max *int
}

var priceBands = []priceBand{
	{label: ""},
	{label: "< ₹50L", max: domain.Ptr(5_000_000)},
	{label: "₹50L – ₹1Cr", min: domain.Ptr(5_000_000), max: domain.Ptr(10_000_000)},
	{label: "> ₹1Cr", min: domain.Ptr(10_000_000)},
}

func currentBand(f domain.PropertyFilter) int {
	for i, b := range priceBands {
		if equalPtr(b.min, f.MinPrice) && equalPtr(b.max, f.MaxPrice) {
			return i
		}
	}
	return 0
}

func equalPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// cycle advances through values and wraps back to unset.
func cycle[E comparable](cur *E, values []E) *E {
	if cur == nil {
		return domain.Ptr(values[0])
	}
	for i, v := range values {
		if v == *cur && i+1 < len(values) {
			return domain.Ptr(values[i+1])
		}
	}
	return nil
}

func label[E ~string](v *E) string {
	if v == nil {
		return ""
	}
	return render.Humanize(string(*v))
}

func enumToggle[E ~string](keys, help, name string, values []E, get func(domain.PropertyFilter) *E, set func(*domain.PropertyFilter, *E)) Toggle[domain.PropertyFilter] {
	return Toggle[domain.PropertyFilter]{
		Key:   key.NewBinding(key.WithKeys(keys), key.WithHelp(keys, help)),
		Label: name,
		Next: func(f domain.PropertyFilter) domain.PropertyFilter {
			set(&f, cycle(get(f), values))
			f.Page = 1
			return f
		},
		Value: func(f domain.PropertyFilter) string { return label(get(f)) },
	}
}

// Properties is the paginated property list with enum, BHK and price
// filters.
func Properties(svc mode.Services) Definition[domain.Property, domain.PropertyFilter] {
	repo := svc.Repos.Properties
	return Definition[domain.Property, domain.PropertyFilter]{
		Resource: "properties",
		Title:    "Properties",
		Columns:  render.PropertyColumns(),
		Fetch:    repo.List,
		Filter:   domain.NewPropertyFilter(pageSize(svc)),
		RefKinds: []refcache.Kind{refcache.KindLocations},
		Toggles: []Toggle[domain.PropertyFilter]{
			enumToggle("t", "property type", "Type", domain.PropertyTypes,
				func(f domain.PropertyFilter) *domain.PropertyType { return f.PropertyType },
				func(f *domain.PropertyFilter, v *domain.PropertyType) { f.PropertyType = v }),
			enumToggle("s", "sub type", "Sub type", domain.PropertySubTypes,
				func(f domain.PropertyFilter) *domain.PropertySubType { return f.PropertySubType },
				func(f *domain.PropertyFilter, v *domain.PropertySubType) { f.PropertySubType = v }),
			enumToggle("g", "listing", "Listing", domain.ListingFors,
				func(f domain.PropertyFilter) *domain.ListingFor { return f.ListingFor },
				func(f *domain.PropertyFilter, v *domain.ListingFor) { f.ListingFor = v }),
			enumToggle("f", "furnishing", "Furnishing", domain.Furnishings,
				func(f domain.PropertyFilter) *domain.Furnishing { return f.Furnishing },
				func(f *domain.PropertyFilter, v *domain.Furnishing) { f.Furnishing = v }),
			{
				Key:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bhk")),
				Label: "BHK",
				Next: func(f domain.PropertyFilter) domain.PropertyFilter {
					f.BHK = cycle(f.BHK, []int{1, 2, 3, 4, 5})
					f.Page = 1
					return f
				},
				Value: func(f domain.PropertyFilter) string {
					if f.BHK == nil {
						return ""
					}
					return strconv.Itoa(*f.BHK)
				},
			},
			{
				Key:   key.NewBinding(key.WithKeys("$"), key.WithHelp("$", "price")),
				Label: "Price",
				Next: func(f domain.PropertyFilter) domain.PropertyFilter {
					b := priceBands[(currentBand(f)+1)%len(priceBands)]
					f.MinPrice, f.MaxPrice = b.min, b.max
					f.Page = 1
					return f
				},
				Value: func(f domain.PropertyFilter) string { return priceBands[currentBand(f)].label },
			},
		},
		Clear: domain.PropertyFilter.Reset,
		ID:    func(p domain.Property) domain.ID { return p.ID },
		Name:  func(p domain.Property) string { return p.Title },
		Detail: func(ctx context.Context, p domain.Property, refs render.Refs) (string, error) {
			full, err := repo.GetByID(ctx, p.ID)
			if err != nil {
				return "", err
			}
			fields := rowFields(render.PropertyColumns(), full, refs)
			fields = append(fields,
				markdown.Field{Label: "Category", Value: render.Humanize(string(full.PropertyType))},
				markdown.Field{Label: "Listing For", Value: render.Humanize(string(full.ListingFor))},
			)
			return markdown.Document(full.Title, fields, full.Description), nil
		},
		Deletion: &Deletion{
			Delete:      repo.Delete,
			Noun:        "property",
			SuccessText: "Property deleted successfully",
			FailureText: "Failed to delete property.",
		},
	}
}

// Developers lists builders; the detail view includes contact persons.
func Developers(svc mode.Services) Definition[domain.Builder, domain.Unfiltered] {
	repo := svc.Repos.Builders
	return Definition[domain.Builder, domain.Unfiltered]{
		Resource: "developers",
		Title:    "Developers",
		Columns:  render.BuilderColumns(),
		Fetch:    listview.SinglePage(repo.List),
		ID:       func(b domain.Builder) domain.ID { return b.ID },
		Name:     func(b domain.Builder) string { return b.Name },
		Detail: func(ctx context.Context, b domain.Builder, refs render.Refs) (string, error) {
			full, err := repo.GetByID(ctx, b.ID, true)
			if err != nil {
				return "", err
			}
			fields := rowFields(render.BuilderColumns(), full, refs)
			fields = append(fields, markdown.Field{Label: "Commission Rate", Value: strconv.FormatFloat(full.CommissionRate, 'f', -1, 64) + "%"})
			return markdown.Document(full.Name, fields, contactList(full.ContactPersons)), nil
		},
	}
}

func contactList(people []domain.ContactPerson) string {
	if len(people) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("**Contact persons**\n\n")
	for _, p := range people {
		fmt.Fprintf(&b, "- %s, %s, %s\n", p.Name, render.OrNotSpecified(p.Email), render.OrNotSpecified(p.PhoneNumber))
	}
	return b.String()
}

// Locations lists cities.
func Locations(svc mode.Services) Definition[domain.Location, domain.Unfiltered] {
	return Definition[domain.Location, domain.Unfiltered]{
		Resource: "locations",
		Title:    "Locations",
		Columns:  render.LocationColumns(),
		Fetch:    listview.SinglePage(svc.Repos.Locations.List),
		ID:       func(l domain.Location) domain.ID { return l.ID },
		Name:     func(l domain.Location) string { return l.Name },
		Detail:   rowDetail(render.LocationColumns(), func(l domain.Location) string { return l.Name }),
	}
}

// Users lists staff accounts.
func Users(svc mode.Services) Definition[domain.User, domain.Unfiltered] {
	return Definition[domain.User, domain.Unfiltered]{
		Resource: "users",
		Title:    "Users",
		Columns:  render.UserColumns(),
		Fetch:    listview.SinglePage(svc.Repos.Users.List),
		ID:       func(u domain.User) domain.ID { return u.ID },
		Name:     func(u domain.User) string { return u.Email },
		Detail:   rowDetail(render.UserColumns(), func(u domain.User) string { return render.OrNotSpecified(u.FullName()) }),
	}
}

// Leads lists prospective buyers and tenants.
func Leads(svc mode.Services) Definition[domain.Lead, domain.Unfiltered] {
	return Definition[domain.Lead, domain.Unfiltered]{
		Resource: "leads",
		Title:    "Leads",
		Columns:  render.LeadColumns(),
		Fetch:    listview.SinglePage(svc.Repos.Leads.List),
		ID:       func(l domain.Lead) domain.ID { return l.ID },
		Name:     func(l domain.Lead) string { return l.FullName() },
		Detail: func(_ context.Context, l domain.Lead, refs render.Refs) (string, error) {
			fields := rowFields(render.LeadColumns(), l, refs)
			fields = append(fields, markdown.Field{Label: "Budget", Value: budget(l)})
			if l.AssignedTo != nil {
				fields = append(fields, markdown.Field{Label: "Assigned To", Value: render.OrNotSpecified(l.AssignedTo.FullName())})
			}
			return markdown.Document(render.OrNotSpecified(l.FullName()), fields, ""), nil
		},
	}
}

func budget(l domain.Lead) string {
	switch {
	case l.BudgetMin == 0 && l.BudgetMax == 0:
		return render.NotSpecified
	case l.BudgetMax == 0:
		return render.FormatINR(l.BudgetMin) + "+"
	default:
		return render.FormatINR(l.BudgetMin) + " – " + render.FormatINR(l.BudgetMax)
	}
}

// rowDetail documents a record from its own columns.
func rowDetail[T any](cols []render.Column[T], title func(T) string) func(context.Context, T, render.Refs) (string, error) {
	return func(_ context.Context, item T, refs render.Refs) (string, error) {
		return markdown.Document(title(item), rowFields(cols, item, refs), ""), nil
	}
}

func rowFields[T any](cols []render.Column[T], item T, refs render.Refs) []markdown.Field {
	row := render.Rows([]T{item}, cols, refs, 0)[0]
	fields := make([]markdown.Field, 0, len(cols))
	for i, c := range cols {
		if c.RowNumber {
			continue
		}
		fields = append(fields, markdown.Field{Label: c.Header, Value: fullText(row.Cells[i])})
	}
	return fields
}

func fullText(c render.Cell) string {
	if c.Detail != "" {
		return c.Detail
	}
	return c.Text
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
