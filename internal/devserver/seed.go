package devserver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zjrosen/propdesk/internal/domain"
	"github.com/zjrosen/propdesk/internal/log"
)

type seedSet struct {
	locations  []domain.Location
	builders   []domain.Builder
	amenities  []domain.Amenity
	projects   []domain.Project
	properties []domain.Property
	users      []domain.User
	leads      []domain.Lead
}

// Seed inserts the sample data set when the database holds no locations.
// It reports whether anything was written.
func Seed(ctx context.Context, store *Store) (bool, error) {
	n, err := store.Count(ctx, ResLocations)
	if err != nil {
		return false, fmt.Errorf("checking seed state: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	set := sampleData(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC))
	batches := []struct {
		resource string
		docs     []any
		ids      []domain.ID
	}{
		{ResLocations, toAny(set.locations), idsOf(set.locations, func(l domain.Location) domain.ID { return l.ID })},
		{ResBuilders, toAny(set.builders), idsOf(set.builders, func(b domain.Builder) domain.ID { return b.ID })},
		{ResAmenities, toAny(set.amenities), idsOf(set.amenities, func(a domain.Amenity) domain.ID { return a.ID })},
		{ResProjects, toAny(set.projects), idsOf(set.projects, func(p domain.Project) domain.ID { return p.ID })},
		{ResProperties, toAny(set.properties), idsOf(set.properties, func(p domain.Property) domain.ID { return p.ID })},
		{ResUsers, toAny(set.users), idsOf(set.users, func(u domain.User) domain.ID { return u.ID })},
		{ResLeads, toAny(set.leads), idsOf(set.leads, func(l domain.Lead) domain.ID { return l.ID })},
	}
	for _, b := range batches {
		for i, doc := range b.docs {
			if err := store.Insert(ctx, b.resource, b.ids[i].String(), doc); err != nil {
				return false, err
			}
		}
	}
	log.Info(log.CatServer, "Seeded playground data", "projects", len(set.projects), "properties", len(set.properties))
	return true, nil
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func idsOf[T any](items []T, id func(T) domain.ID) []domain.ID {
	out := make([]domain.ID, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}

func ids(values ...int) []domain.ID {
	out := make([]domain.ID, len(values))
	for i, v := range values {
		out[i] = domain.ID(strconv.Itoa(v))
	}
	return out
}

func sampleData(at time.Time) seedSet {
	var set seedSet

	cities := []struct{ name, pincode, state string }{
		{"Mumbai", "400001", "Maharashtra"},
		{"Pune", "411001", "Maharashtra"},
		{"Bengaluru", "560001", "Karnataka"},
		{"Hyderabad", "500001", "Telangana"},
		{"Chennai", "600001", "Tamil Nadu"},
		{"Gurugram", "122001", "Haryana"},
		{"Noida", "201301", "Uttar Pradesh"},
		{"Ahmedabad", "380001", "Gujarat"},
	}
	for i, c := range cities {
		set.locations = append(set.locations, domain.Location{
			ID: domain.ID(strconv.Itoa(i + 1)), Name: c.name, Pincode: c.pincode, State: c.state,
			Country: "India", CreatedAt: at, UpdatedAt: at,
		})
	}

	builders := []struct {
		name, email, phone string
		rate               float64
	}{
		{"Lodha Group", "sales@lodha.example", "+91 22 6133 4400", 2.5},
		{"Godrej Properties", "info@godrej.example", "+91 22 6169 8500", 2},
		{"Prestige Group", "enquiry@prestige.example", "+91 80 2559 1080", 1.75},
		{"Sobha Limited", "contact@sobha.example", "+91 80 4932 0000", 2},
		{"DLF Limited", "homes@dlf.example", "+91 124 457 8000", 1.5},
	}
	for i, b := range builders {
		set.builders = append(set.builders, domain.Builder{
			ID: domain.ID(strconv.Itoa(i + 1)), Name: b.name, Email: b.email, Phone: b.phone,
			Status: "active", CommissionRate: b.rate, CreatedAt: at,
			ContactPersons: []domain.ContactPerson{{
				ID: domain.ID(strconv.Itoa(100 + i)), Name: "Sales Desk", Email: b.email, PhoneNumber: b.phone,
			}},
		})
	}

	for i, name := range []string{"Swimming Pool", "Gymnasium", "Clubhouse", "Children's Play Area", "Power Backup", "24x7 Security", "Jogging Track"} {
		set.amenities = append(set.amenities, domain.Amenity{ID: domain.ID(strconv.Itoa(i + 1)), Name: name})
	}

	projects := []struct {
		name, builder string
		cities        []domain.ID
		kind          domain.ProjectType
		status        domain.ProjectStatus
		month, year   int
		ready         bool
	}{
		{"World Towers", "1", ids(1), domain.ProjectResidential, domain.ProjectCompleted, 6, 2023, true},
		{"Palava City", "1", ids(1, 2), domain.ProjectMixed, domain.ProjectOngoing, 12, 2026, false},
		{"Godrej Woods", "2", ids(7), domain.ProjectResidential, domain.ProjectOngoing, 3, 2027, false},
		{"Godrej Reserve", "2", ids(3, 4, 5, 2), domain.ProjectResidential, domain.ProjectUpcoming, 0, 0, false},
		{"Prestige Lakeside Habitat", "3", ids(3), domain.ProjectResidential, domain.ProjectCompleted, 9, 2022, true},
		{"Prestige Tech Cloud", "3", ids(3, 4), domain.ProjectCommercial, domain.ProjectOngoing, 1, 2026, false},
		{"Sobha Dream Acres", "4", ids(3), domain.ProjectResidential, domain.ProjectCompleted, 11, 2021, true},
		{"Sobha City", "4", ids(6, 7, 3), domain.ProjectResidential, domain.ProjectOngoing, 8, 2025, false},
		{"DLF The Camellias", "5", ids(6), domain.ProjectResidential, domain.ProjectCompleted, 4, 2020, true},
		{"DLF Cyber Park", "5", ids(6), domain.ProjectCommercial, domain.ProjectCompleted, 7, 2019, true},
		{"Riverfront Residences", "9", ids(8), domain.ProjectResidential, domain.ProjectUpcoming, 5, 2028, false},
		{"Harbour Point", "1", ids(42), domain.ProjectCommercial, domain.ProjectUpcoming, 0, 0, false},
		{"Lodha Park", "1", ids(1), domain.ProjectResidential, domain.ProjectCompleted, 2, 2021, true},
		{"Godrej Air", "2", ids(3), domain.ProjectResidential, domain.ProjectOngoing, 10, 2025, false},
	}
	for i, p := range projects {
		set.projects = append(set.projects, domain.Project{
			ID:                domain.ID(strconv.Itoa(i + 1)),
			BuilderID:         domain.ID(p.builder),
			Name:              p.name,
			Description:       fmt.Sprintf("## %s\n\nA **%s** development.\n\n- Possession: %s\n", p.name, p.kind, possessionText(p.month, p.year)),
			CityIDs:           p.cities,
			ConstructionType:  string(p.kind),
			ProjectType:       p.kind,
			Status:            p.status,
			PossessionMonth:   p.month,
			PossessionYear:    p.year,
			IsReadyPossession: p.ready,
			AmenityIDs:        ids(1, 2, 5, 6),
			CreatedAt:         at.Add(time.Duration(i) * time.Hour),
			UpdatedAt:         at.Add(time.Duration(i) * time.Hour),
		})
	}

	properties := []struct {
		title     string
		kind      domain.PropertyType
		sub       domain.PropertySubType
		listing   domain.ListingFor
		furnish   domain.Furnishing
		bhk       int
		price     domain.Amount
		locations []domain.ID
		project   string
	}{
		{"Sea-facing 3 BHK, Worli", domain.PropertyResidential, domain.SubTypeApartment, domain.ListingSale, domain.Furnished, 3, 65000000, ids(1), "1"},
		{"2 BHK near Hinjewadi", domain.PropertyResidential, domain.SubTypeApartment, domain.ListingRent, domain.SemiFurnished, 2, 32000, ids(2), "2"},
		{"Garden Villa", domain.PropertyResidential, domain.SubTypeVilla, domain.ListingSale, domain.Unfurnished, 4, 42500000, ids(3), "7"},
		{"Penthouse, Golf Course Road", domain.PropertyResidential, domain.SubTypePenthouse, domain.ListingSale, domain.Furnished, 5, 120000000, ids(6), "9"},
		{"Grade A Office Floor", domain.PropertyCommercial, domain.SubTypeOffice, domain.ListingRent, domain.Furnished, 0, 850000, ids(3, 4), "6"},
		{"High Street Shop", domain.PropertyCommercial, domain.SubTypeShop, domain.ListingSale, domain.Unfurnished, 0, 18000000, ids(7), ""},
		{"Corner Plot, Sector 150", domain.PropertyLand, domain.SubTypePlot, domain.ListingSale, domain.Unfurnished, 0, 9500000, ids(7), ""},
		{"1 BHK Studio, Whitefield", domain.PropertyResidential, domain.SubTypeApartment, domain.ListingRent, domain.Furnished, 1, 21000, ids(3), "5"},
		{"3 BHK, Gachibowli", domain.PropertyResidential, domain.SubTypeApartment, domain.ListingSale, domain.SemiFurnished, 3, 14500000, ids(4), ""},
		{"Duplex, OMR", domain.PropertyResidential, domain.SubTypeVilla, domain.ListingSale, domain.SemiFurnished, 4, 23500000, ids(5), ""},
		{"2 BHK, SG Highway", domain.PropertyResidential, domain.SubTypeApartment, domain.ListingRent, domain.Unfurnished, 2, 18000, ids(8), ""},
		{"Co-working Bay", domain.PropertyCommercial, domain.SubTypeOffice, domain.ListingRent, domain.Furnished, 0, 120000, ids(1, 2, 3), ""},
	}
	for i, p := range properties {
		set.properties = append(set.properties, domain.Property{
			ID:              domain.ID(strconv.Itoa(i + 1)),
			Title:           p.title,
			Description:     fmt.Sprintf("%s listed for %s.", p.title, p.listing),
			ProjectID:       domain.ID(p.project),
			PropertyType:    p.kind,
			PropertySubType: p.sub,
			ListingFor:      p.listing,
			Furnishing:      p.furnish,
			BHK:             p.bhk,
			Pricing:         domain.Pricing{TotalAmount: p.price},
			LocationIDs:     p.locations,
			CreatedAt:       at.Add(time.Duration(i) * time.Hour),
			UpdatedAt:       at.Add(time.Duration(i) * time.Hour),
		})
	}

	set.users = []domain.User{
		{ID: "1", Email: "admin@propdesk.example", FirstName: "Asha", LastName: "Menon", Phone: "+91 98200 11111", Role: domain.RoleAdmin},
		{ID: "2", Email: "ravi@propdesk.example", FirstName: "Ravi", LastName: "Kulkarni", Phone: "+91 98200 22222", Role: domain.RoleRM},
		{ID: "3", Email: "neha@propdesk.example", FirstName: "Neha", LastName: "Iyer", Phone: "+91 98200 33333", Role: domain.RoleRM},
	}

	leads := []struct {
		first, last, phone string
		status             domain.LeadStatus
		source             string
		property           int
		assignee           int
	}{
		{"Karan", "Shah", "+91 99300 10001", domain.LeadNew, "website", 1, 2},
		{"Meera", "Pillai", "+91 99300 10002", domain.LeadContacted, "referral", 3, 3},
		{"Arjun", "Rao", "+91 99300 10003", domain.LeadSiteVisitScheduled, "walk_in", 9, 2},
		{"Fatima", "Khan", "+91 99300 10004", domain.LeadNegotiation, "website", 4, 0},
		{"Vikram", "Singh", "+91 99300 10005", domain.LeadDealClosed, "broker", 0, 3},
	}
	for i, l := range leads {
		lead := domain.Lead{
			ID: domain.ID(strconv.Itoa(i + 1)), FirstName: l.first, LastName: l.last, Phone: l.phone,
			Email:     fmt.Sprintf("%s.%s@mail.example", l.first, l.last),
			Status:    l.status,
			Source:    &domain.LeadSource{Name: l.source, Type: l.source},
			CreatedAt: at.Add(time.Duration(i) * 24 * time.Hour),
			UpdatedAt: at.Add(time.Duration(i) * 36 * time.Hour),
		}
		if l.property > 0 {
			p := set.properties[l.property-1]
			lead.InterestedProperty = &domain.PropertySummary{ID: p.ID, Title: p.Title}
		}
		if l.assignee > 0 {
			u := set.users[l.assignee-1]
			lead.AssignedTo = &u
		}
		set.leads = append(set.leads, lead)
	}
	return set
}

func possessionText(month, year int) string {
	if month == 0 || year == 0 {
		return "TBD"
	}
	return time.Month(month).String() + " " + strconv.Itoa(year)
}
