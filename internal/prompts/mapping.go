package prompts

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/caduceus/pkg/query"
	"github.com/JaimeStill/caduceus/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("stage", "Stage").
	Project("instructions", "Instructions").
	Project("description", "Description").
	Project("active", "Active")

var defaultSort = query.SortField{Field: "Name"}

// Filters narrows a prompt listing. Nil fields are ignored. Stage and
// Active match exactly; Name matches a case-insensitive substring.
type Filters struct {
	Stage  *Stage  `json:"stage,omitempty"`
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// FiltersFromQuery reads stage, name, and active from URL query parameters.
// Unrecognized stage or active values leave that filter unset.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if stage, err := ParseStage(values.Get("stage")); err == nil {
		f.Stage = &stage
	}
	if n := strings.TrimSpace(values.Get("name")); n != "" {
		f.Name = &n
	}
	if v, err := strconv.ParseBool(values.Get("active")); err == nil {
		f.Active = &v
	}

	return f
}

// Apply adds the filter conditions to b and returns it.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Stage", f.Stage).
		WhereContains("Name", f.Name).
		WhereEquals("Active", f.Active)
}

// match is Apply for the in-process store, with search covering name
// and description the way WhereSearch does.
func (f Filters) match(p Prompt, search *string) bool {
	if f.Stage != nil && p.Stage != *f.Stage {
		return false
	}
	if f.Active != nil && p.Active != *f.Active {
		return false
	}
	if f.Name != nil && !containsFold(p.Name, *f.Name) {
		return false
	}
	if search == nil || *search == "" {
		return true
	}

	var desc string
	if p.Description != nil {
		desc = *p.Description
	}
	return containsFold(p.Name, *search) || containsFold(desc, *search)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(&p.ID, &p.Name, &p.Stage, &p.Instructions, &p.Description, &p.Active)
	return p, err
}
