package devserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/zjrosen/propdesk/internal/domain"
)

func newID() domain.ID { return domain.ID(uuid.NewString()) }

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	writeAll[domain.Location](w, r, s, ResLocations)
}

func (s *Server) createLocation(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload[domain.LocationPayload](w, r)
	if !ok {
		return
	}
	now := s.now()
	loc := domain.Location{
		ID: newID(), Name: p.Name, Pincode: p.Pincode, State: p.State, Country: p.Country,
		CreatedAt: now, UpdatedAt: now,
	}
	s.insert(w, r, ResLocations, loc.ID, loc)
}

func (s *Server) listBuilders(w http.ResponseWriter, r *http.Request) {
	builders, err := All[domain.Builder](r.Context(), s.store, ResBuilders)
	if err != nil {
		writeInternal(w, err)
		return
	}
	for i := range builders {
		builders[i].ContactPersons = nil
	}
	writeJSON(w, http.StatusOK, builders)
}

func (s *Server) getBuilder(w http.ResponseWriter, r *http.Request) {
	b, ok := getOne[domain.Builder](w, r, s, ResBuilders, "Builder")
	if !ok {
		return
	}
	if include, _ := strconv.ParseBool(r.URL.Query().Get("include_contact_persons")); !include {
		b.ContactPersons = nil
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) createBuilder(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload[domain.BuilderPayload](w, r)
	if !ok {
		return
	}
	b := domain.Builder{
		ID: newID(), Name: p.Name, Email: p.Email, Phone: p.PhoneNumber,
		Status: "active", CommissionRate: p.CommissionRate, CreatedAt: s.now(),
	}
	if p.ContactPerson != "" {
		b.ContactPersons = []domain.ContactPerson{{
			ID: newID(), Name: p.ContactPerson, Email: p.Email, PhoneNumber: p.PhoneNumber,
		}}
	}
	s.insert(w, r, ResBuilders, b.ID, b)
}

func (s *Server) addContactPerson(w http.ResponseWriter, r *http.Request) {
	b, ok := getOne[domain.Builder](w, r, s, ResBuilders, "Builder")
	if !ok {
		return
	}
	p, ok := decodePayload[domain.ContactPersonPayload](w, r)
	if !ok {
		return
	}
	contact := domain.ContactPerson{ID: newID(), Name: p.Name, Email: p.Email, PhoneNumber: p.PhoneNumber}
	b.ContactPersons = append(b.ContactPersons, contact)
	if _, err := s.store.Replace(r.Context(), ResBuilders, b.ID.String(), b); err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (s *Server) listAmenities(w http.ResponseWriter, r *http.Request) {
	writeAll[domain.Amenity](w, r, s, ResAmenities)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	paging, ok := parsePaging(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var conds []Cond
	if name := q.Get("name"); name != "" {
		conds = append(conds, Cond{Expr: "json_extract(body, '$.name') LIKE ?", Arg: "%" + name + "%"})
	}
	if v := q.Get("is_ready_possession"); v != "" {
		ready, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, []string{"is_ready_possession must be a boolean"})
			return
		}
		conds = append(conds, Cond{Expr: "json_extract(body, '$.is_ready_possession') = ?", Arg: ready})
	}
	writePage[domain.Project](w, r, s, ResProjects, conds, paging)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	if p, ok := getOne[domain.Project](w, r, s, ResProjects, "Project"); ok {
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload[domain.ProjectPayload](w, r)
	if !ok {
		return
	}
	now := s.now()
	project := projectFrom(p)
	project.ID, project.CreatedAt, project.UpdatedAt = newID(), now, now
	s.insert(w, r, ResProjects, project.ID, project)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	current, ok := getOne[domain.Project](w, r, s, ResProjects, "Project")
	if !ok {
		return
	}
	p, ok := decodePayload[domain.ProjectPayload](w, r)
	if !ok {
		return
	}
	project := projectFrom(p)
	project.ID, project.CreatedAt, project.UpdatedAt = current.ID, current.CreatedAt, s.now()
	s.replace(w, r, ResProjects, project.ID, project)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	s.deleteOne(w, r, ResProjects, "Project")
}

func projectFrom(p domain.ProjectPayload) domain.Project {
	return domain.Project{
		BuilderID:         p.BuilderID,
		Name:              p.Name,
		Description:       p.Description,
		CityIDs:           p.CityIDs,
		ConstructionType:  p.ConstructionType,
		ProjectType:       p.ProjectType,
		Status:            p.Status,
		PossessionMonth:   p.PossessionMonth,
		PossessionYear:    p.PossessionYear,
		IsReadyPossession: p.IsReadyPossession,
		AmenityIDs:        p.AmenityIDs,
	}
}

func (s *Server) listProperties(w http.ResponseWriter, r *http.Request) {
	paging, ok := parsePaging(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var conds []Cond
	var problems []string

	enum := func(param, field string, valid bool) {
		v := q.Get(param)
		if v == "" {
			return
		}
		if !valid {
			problems = append(problems, param+" has an unknown value")
			return
		}
		conds = append(conds, Cond{Expr: "json_extract(body, '$." + field + "') = ?", Arg: v})
	}
	enum("propertyType", "property_type", domain.PropertyType(q.Get("propertyType")).Valid())
	enum("propertySubType", "property_sub_type", domain.PropertySubType(q.Get("propertySubType")).Valid())
	enum("listingFor", "listing_for", domain.ListingFor(q.Get("listingFor")).Valid())
	enum("furnishing", "furnishing", domain.Furnishing(q.Get("furnishing")).Valid())

	number := func(param, expr string) {
		v := q.Get(param)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			problems = append(problems, param+" must be a non-negative integer")
			return
		}
		conds = append(conds, Cond{Expr: expr, Arg: n})
	}
	number("bhk", "json_extract(body, '$.bhk') = ?")
	number("minPrice", "json_extract(body, '$.pricing.total_amount') >= ?")
	number("maxPrice", "json_extract(body, '$.pricing.total_amount') <= ?")

	if len(problems) > 0 {
		writeError(w, http.StatusBadRequest, problems)
		return
	}
	writePage[domain.Property](w, r, s, ResProperties, conds, paging)
}

func (s *Server) getProperty(w http.ResponseWriter, r *http.Request) {
	if p, ok := getOne[domain.Property](w, r, s, ResProperties, "Property"); ok {
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) createProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload[domain.PropertyPayload](w, r)
	if !ok {
		return
	}
	now := s.now()
	property := propertyFrom(p)
	property.ID, property.CreatedAt, property.UpdatedAt = newID(), now, now
	s.insert(w, r, ResProperties, property.ID, property)
}

func (s *Server) updateProperty(w http.ResponseWriter, r *http.Request) {
	current, ok := getOne[domain.Property](w, r, s, ResProperties, "Property")
	if !ok {
		return
	}
	p, ok := decodePayload[domain.PropertyPayload](w, r)
	if !ok {
		return
	}
	property := propertyFrom(p)
	property.ID, property.CreatedAt, property.UpdatedAt = current.ID, current.CreatedAt, s.now()
	s.replace(w, r, ResProperties, property.ID, property)
}

func (s *Server) deleteProperty(w http.ResponseWriter, r *http.Request) {
	s.deleteOne(w, r, ResProperties, "Property")
}

func propertyFrom(p domain.PropertyPayload) domain.Property {
	return domain.Property{
		Title:           p.Title,
		Description:     p.Description,
		ProjectID:       p.ProjectID,
		PropertyType:    p.PropertyType,
		PropertySubType: p.PropertySubType,
		ListingFor:      p.ListingFor,
		Furnishing:      p.Furnishing,
		BHK:             p.BHK,
		Pricing:         p.Pricing,
		LocationIDs:     p.LocationIDs,
	}
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	writeAll[domain.User](w, r, s, ResUsers)
}

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := All[domain.Lead](r.Context(), s.store, ResLeads)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": leads})
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request, resource string, id domain.ID, doc any) {
	if err := s.store.Insert(r.Context(), resource, id.String(), doc); err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) replace(w http.ResponseWriter, r *http.Request, resource string, id domain.ID, doc any) {
	if _, err := s.store.Replace(r.Context(), resource, id.String(), doc); err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
