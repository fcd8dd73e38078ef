package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Location is a city that projects and properties are placed in.
type Location struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Pincode   string    `json:"pincode"`
	State     string    `json:"state"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref implements Referenceable.
func (l Location) Ref() Ref { return Ref{ID: l.ID, Name: l.Name} }

// ContactPerson is a named contact at a builder.
type ContactPerson struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// Builder is a developer company.
type Builder struct {
	ID             ID              `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Status         string          `json:"status"`
	CommissionRate float64         `json:"commission_rate"`
	ContactPersons []ContactPerson `json:"contact_persons,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Ref implements Referenceable.
func (b Builder) Ref() Ref { return Ref{ID: b.ID, Name: b.Name} }

// Amenity is a facility a project can offer.
type Amenity struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Ref implements Referenceable.
func (a Amenity) Ref() Ref { return Ref{ID: a.ID, Name: a.Name} }

// Referenceable entities can populate a reference cache.
type Referenceable interface {
	Ref() Ref
}

// Refs converts a slice of entities into reference records, dropping
// records without an id or name.
func Refs[T Referenceable](items []T) []Ref {
	out := make([]Ref, 0, len(items))
	for _, item := range items {
		r := item.Ref()
		if r.ID.Empty() || strings.TrimSpace(r.Name) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Project is a development by a builder spanning one or more cities.
type Project struct {
	ID                ID            `json:"id"`
	BuilderID         ID            `json:"builder_id"`
	Name              string        `json:"name"`
	Description       string        `json:"description,omitempty"`
	CityIDs           []ID          `json:"city_id"`
	ConstructionType  string        `json:"construction_type,omitempty"`
	ProjectType       ProjectType   `json:"project_type,omitempty"`
	Status            ProjectStatus `json:"status,omitempty"`
	PossessionMonth   int           `json:"possession_month,omitempty"`
	PossessionYear    int           `json:"possession_year,omitempty"`
	IsReadyPossession bool          `json:"is_ready_possession"`
	AmenityIDs        []ID          `json:"amenities,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Pricing holds a property's asking price.
type Pricing struct {
	TotalAmount Amount `json:"total_amount" yaml:"total_amount"`
}

// Property is a single listed unit.
type Property struct {
	ID              ID              `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	ProjectID       ID              `json:"project_id,omitempty"`
	PropertyType    PropertyType    `json:"property_type,omitempty"`
	PropertySubType PropertySubType `json:"property_sub_type,omitempty"`
	ListingFor      ListingFor      `json:"listing_for,omitempty"`
	Furnishing      Furnishing      `json:"furnishing,omitempty"`
	BHK             int             `json:"bhk"`
	Pricing         Pricing         `json:"pricing"`
	LocationIDs     []ID            `json:"locations"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// User is a back-office staff account.
type User struct {
	ID        ID       `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Role      UserRole `json:"role,omitempty"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// LeadSource says where a lead came from.
type LeadSource struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// PropertySummary is the embedded property on a lead.
type PropertySummary struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// Lead is a prospective buyer or tenant.
type Lead struct {
	ID                 ID               `json:"id"`
	FirstName          string           `json:"first_name"`
	LastName           string           `json:"last_name"`
	Phone              string           `json:"phone"`
	Email              string           `json:"email"`
	Source             *LeadSource      `json:"source,omitempty"`
	Status             LeadStatus       `json:"status"`
	BudgetMin          Amount           `json:"budget_min,omitempty"`
	BudgetMax          Amount           `json:"budget_max,omitempty"`
	InterestedProperty *PropertySummary `json:"interested_property,omitempty"`
	AssignedTo         *User            `json:"assigned_to_user,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// FullName joins first and last name.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// Amount is a rupee amount. The API sends it either as a number or as a
// numeric string.
type Amount float64

// UnmarshalJSON accepts numbers, numeric strings and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("amount %q: %w", s, err)
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(f)
	return nil
}
