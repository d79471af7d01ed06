package routes

import (
	"net/http"

	"github.com/JaimeStill/caduceus/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", group)
	}
}

// Describe adds an operation to spec for every route in groups. Routes
// without an OpenAPI operation get a generated summary. Group tags apply
// to operations that declare none.
func Describe(spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		describeGroup(spec, "", nil, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, child)
	}
}

func describeGroup(spec *openapi.Spec, parentPrefix string, parentTags []string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	tags := group.Tags
	if len(tags) == 0 {
		tags = parentTags
	}

	for _, route := range group.Routes {
		path := fullPrefix + route.Pattern
		if path == "" {
			path = "/"
		}

		op := route.OpenAPI
		if op == nil {
			op = &openapi.Operation{
				Summary:   route.Method + " " + path,
				Responses: map[int]*openapi.Response{http.StatusOK: {Description: "OK"}},
			}
		}
		if len(op.Tags) == 0 {
			op.Tags = tags
		}

		spec.SetOperation(route.Method, path, op)
	}

	for _, child := range group.Children {
		describeGroup(spec, fullPrefix, tags, child)
	}
}
