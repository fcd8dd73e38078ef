package domain

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// ValidationError reports a payload or filter rejected before any request
// is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var (
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9][0-9 -]{8,14}[0-9]$`)
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

func validEmail(field, value string) error {
	if err := required(field, value); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return &ValidationError{Field: field, Reason: "must be a valid email address"}
	}
	return nil
}

func validPhone(field, value string) error {
	if err := required(field, value); err != nil {
		return err
	}
	if !phonePattern.MatchString(value) {
		return &ValidationError{Field: field, Reason: "must be a valid phone number"}
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// LocationPayload creates a city.
type LocationPayload struct {
	Name    string `json:"name" yaml:"name"`
	Pincode string `json:"pincode" yaml:"pincode"`
	State   string `json:"state" yaml:"state"`
	Country string `json:"country" yaml:"country"`
}

// Validate checks required fields and the pincode format.
func (p LocationPayload) Validate() error {
	if err := firstError(
		required("name", p.Name),
		required("state", p.State),
		required("country", p.Country),
	); err != nil {
		return err
	}
	if p.Pincode != "" && !pincodePattern.MatchString(p.Pincode) {
		return &ValidationError{Field: "pincode", Reason: "must be a 6 digit pincode"}
	}
	return nil
}

// BuilderPayload creates a developer.
type BuilderPayload struct {
	Name           string  `json:"name" yaml:"name"`
	ContactPerson  string  `json:"contact_person,omitempty" yaml:"contact_person"`
	Email          string  `json:"email" yaml:"email"`
	PhoneNumber    string  `json:"phone_number" yaml:"phone_number"`
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
}

// Validate checks required fields, contact formats and the commission range.
func (p BuilderPayload) Validate() error {
	if err := firstError(
		required("name", p.Name),
		validEmail("email", p.Email),
		validPhone("phone_number", p.PhoneNumber),
	); err != nil {
		return err
	}
	if p.CommissionRate < 0 || p.CommissionRate > 100 {
		return &ValidationError{Field: "commission_rate", Reason: "must be between 0 and 100"}
	}
	return nil
}

// ContactPersonPayload adds a contact to a builder.
type ContactPersonPayload struct {
	Name        string `json:"name" yaml:"name"`
	Email       string `json:"email" yaml:"email"`
	PhoneNumber string `json:"phone_number" yaml:"phone_number"`
}

// Validate checks every field.
func (p ContactPersonPayload) Validate() error {
	return firstError(
		required("name", p.Name),
		validEmail("email", p.Email),
		validPhone("phone_number", p.PhoneNumber),
	)
}

// ProjectPayload creates or replaces a project.
type ProjectPayload struct {
	BuilderID         ID            `json:"builder_id" yaml:"builder_id"`
	Name              string        `json:"name" yaml:"name"`
	Description       string        `json:"description,omitempty" yaml:"description"`
	CityIDs           []ID          `json:"city_id" yaml:"city_id"`
	ConstructionType  string        `json:"construction_type,omitempty" yaml:"construction_type"`
	ProjectType       ProjectType   `json:"project_type" yaml:"project_type"`
	Status            ProjectStatus `json:"status" yaml:"status"`
	PossessionMonth   int           `json:"possession_month,omitempty" yaml:"possession_month"`
	PossessionYear    int           `json:"possession_year,omitempty" yaml:"possession_year"`
	IsReadyPossession bool          `json:"is_ready_possession" yaml:"is_ready_possession"`
	AmenityIDs        []ID          `json:"amenities,omitempty" yaml:"amenities"`
}

// MarshalJSON sends builder_id and city_id as strings, the type the API
// declares for them, whatever their text looks like.
func (p ProjectPayload) MarshalJSON() ([]byte, error) {
	type wire ProjectPayload
	return json.Marshal(struct {
		wire
		BuilderID string   `json:"builder_id"`
		CityIDs   []string `json:"city_id"`
	}{wire(p), p.BuilderID.String(), Strings(p.CityIDs)})
}

// Validate checks references, enums and the possession date.
func (p ProjectPayload) Validate() error {
	if err := required("name", p.Name); err != nil {
		return err
	}
	if p.BuilderID.Empty() {
		return &ValidationError{Field: "builder_id", Reason: "is required"}
	}
	if len(p.CityIDs) == 0 {
		return &ValidationError{Field: "city_id", Reason: "needs at least one city"}
	}
	for _, id := range p.CityIDs {
		if id.Empty() {
			return &ValidationError{Field: "city_id", Reason: "contains an empty id"}
		}
	}
	if !p.ProjectType.Valid() {
		return &ValidationError{Field: "project_type", Reason: fmt.Sprintf("unknown value %q", p.ProjectType)}
	}
	if !p.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", p.Status)}
	}
	if p.PossessionMonth != 0 && (p.PossessionMonth < 1 || p.PossessionMonth > 12) {
		return &ValidationError{Field: "possession_month", Reason: "must be between 1 and 12"}
	}
	if p.PossessionYear != 0 && (p.PossessionYear < 1900 || p.PossessionYear > time.Now().Year()+50) {
		return &ValidationError{Field: "possession_year", Reason: "is out of range"}
	}
	if (p.PossessionMonth == 0) != (p.PossessionYear == 0) {
		return &ValidationError{Field: "possession_month", Reason: "month and year must be set together"}
	}
	return nil
}

// PropertyPayload creates or replaces a property.
type PropertyPayload struct {
	Title           string          `json:"title" yaml:"title"`
	Description     string          `json:"description,omitempty" yaml:"description"`
	ProjectID       ID              `json:"project_id,omitempty" yaml:"project_id"`
	PropertyType    PropertyType    `json:"property_type" yaml:"property_type"`
	PropertySubType PropertySubType `json:"property_sub_type" yaml:"property_sub_type"`
	ListingFor      ListingFor      `json:"listing_for" yaml:"listing_for"`
	Furnishing      Furnishing      `json:"furnishing" yaml:"furnishing"`
	BHK             int             `json:"bhk" yaml:"bhk"`
	Pricing         Pricing         `json:"pricing" yaml:"pricing"`
	LocationIDs     []ID            `json:"locations" yaml:"locations"`
}

// MarshalJSON sends project_id as a string. Location ids keep the
// number form of ID.
func (p PropertyPayload) MarshalJSON() ([]byte, error) {
	type wire PropertyPayload
	return json.Marshal(struct {
		wire
		ProjectID string `json:"project_id,omitempty"`
	}{wire(p), p.ProjectID.String()})
}

// Validate checks required fields, enums and price.
func (p PropertyPayload) Validate() error {
	if err := required("title", p.Title); err != nil {
		return err
	}
	if !p.PropertyType.Valid() {
		return &ValidationError{Field: "property_type", Reason: fmt.Sprintf("unknown value %q", p.PropertyType)}
	}
	if !p.PropertySubType.Valid() {
		return &ValidationError{Field: "property_sub_type", Reason: fmt.Sprintf("unknown value %q", p.PropertySubType)}
	}
	if !p.ListingFor.Valid() {
		return &ValidationError{Field: "listing_for", Reason: fmt.Sprintf("unknown value %q", p.ListingFor)}
	}
	if !p.Furnishing.Valid() {
		return &ValidationError{Field: "furnishing", Reason: fmt.Sprintf("unknown value %q", p.Furnishing)}
	}
	if p.BHK < 0 || p.BHK > 20 {
		return &ValidationError{Field: "bhk", Reason: "must be between 0 and 20"}
	}
	if p.Pricing.TotalAmount <= 0 {
		return &ValidationError{Field: "pricing.total_amount", Reason: "must be positive"}
	}
	if len(p.LocationIDs) == 0 {
		return &ValidationError{Field: "locations", Reason: "needs at least one location"}
	}
	return nil
}
