package domain

import "slices"

// ProjectType classifies a project.
type ProjectType string

const (
	ProjectResidential ProjectType = "residential"
	ProjectCommercial  ProjectType = "commercial"
	ProjectMixed       ProjectType = "mixed"
)

// ProjectTypes lists every ProjectType.
var ProjectTypes = []ProjectType{ProjectResidential, ProjectCommercial, ProjectMixed}

func (t ProjectType) Valid() bool { return slices.Contains(ProjectTypes, t) }

// ProjectStatus is the construction stage of a project.
type ProjectStatus string

const (
	ProjectUpcoming  ProjectStatus = "upcoming"
	ProjectOngoing   ProjectStatus = "ongoing"
	ProjectCompleted ProjectStatus = "completed"
)

// ProjectStatuses lists every ProjectStatus.
var ProjectStatuses = []ProjectStatus{ProjectUpcoming, ProjectOngoing, ProjectCompleted}

func (s ProjectStatus) Valid() bool { return slices.Contains(ProjectStatuses, s) }

// PropertyType is the broad category of a listed property.
type PropertyType string

const (
	PropertyResidential PropertyType = "residential"
	PropertyCommercial  PropertyType = "commercial"
	PropertyLand        PropertyType = "land"
)

// PropertyTypes lists every PropertyType.
var PropertyTypes = []PropertyType{PropertyResidential, PropertyCommercial, PropertyLand}

func (t PropertyType) Valid() bool { return slices.Contains(PropertyTypes, t) }

// PropertySubType narrows PropertyType.
type PropertySubType string

const (
	SubTypeApartment PropertySubType = "apartment"
	SubTypeVilla     PropertySubType = "villa"
	SubTypePenthouse PropertySubType = "penthouse"
	SubTypePlot      PropertySubType = "plot"
	SubTypeOffice    PropertySubType = "office"
	SubTypeShop      PropertySubType = "shop"
)

// PropertySubTypes lists every PropertySubType.
var PropertySubTypes = []PropertySubType{SubTypeApartment, SubTypeVilla, SubTypePenthouse, SubTypePlot, SubTypeOffice, SubTypeShop}

func (t PropertySubType) Valid() bool { return slices.Contains(PropertySubTypes, t) }

// ListingFor says whether a property is offered for sale or rent.
type ListingFor string

const (
	ListingSale ListingFor = "sale"
	ListingRent ListingFor = "rent"
)

// ListingFors lists every ListingFor.
var ListingFors = []ListingFor{ListingSale, ListingRent}

func (l ListingFor) Valid() bool { return slices.Contains(ListingFors, l) }

// Furnishing describes what a property comes furnished with.
type Furnishing string

const (
	Furnished     Furnishing = "furnished"
	SemiFurnished Furnishing = "semi_furnished"
	Unfurnished   Furnishing = "unfurnished"
)

// Furnishings lists every Furnishing.
var Furnishings = []Furnishing{Furnished, SemiFurnished, Unfurnished}

func (f Furnishing) Valid() bool { return slices.Contains(Furnishings, f) }

// LeadStatus tracks a lead through the sales funnel.
type LeadStatus string

const (
	LeadNew                LeadStatus = "new"
	LeadContacted          LeadStatus = "contacted"
	LeadQualified          LeadStatus = "qualified"
	LeadSiteVisitScheduled LeadStatus = "site_visit_scheduled"
	LeadSiteVisitDone      LeadStatus = "site_visit_done"
	LeadNegotiation        LeadStatus = "negotiation"
	LeadPaperwork          LeadStatus = "paperwork"
	LeadDealClosed         LeadStatus = "deal_closed"
	LeadDealLost           LeadStatus = "deal_lost"
)

// LeadStatuses lists every LeadStatus in funnel order.
var LeadStatuses = []LeadStatus{
	LeadNew, LeadContacted, LeadQualified, LeadSiteVisitScheduled, LeadSiteVisitDone,
	LeadNegotiation, LeadPaperwork, LeadDealClosed, LeadDealLost,
}

func (s LeadStatus) Valid() bool { return slices.Contains(LeadStatuses, s) }

// UserRole is the back-office role of a staff member.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleRM    UserRole = "rm"
)

func (r UserRole) Valid() bool { return r == RoleAdmin || r == RoleRM }

// Values converts a typed enum list to strings, e.g. for flag help text.
func Values[E ~string](list []E) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = string(v)
	}
	return out
}
