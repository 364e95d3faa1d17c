package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/wastefinder/internal/auth"
	"github.com/serroba/wastefinder/internal/ratelimit"
)

// Handlers groups every API handler.
type Handlers struct {
	Facilities  *FacilityHandler
	Suggestions *SuggestionHandler
	Blog        *BlogHandler
	Settings    *SettingsHandler
	Auth        *AuthHandler
}

func publicOp() map[string]any {
	return map[string]any{
		ratelimit.MetadataKey: ratelimit.EndpointConfig{Preset: ratelimit.PresetPublic},
	}
}

func adminOp() map[string]any {
	return map[string]any{
		ratelimit.MetadataKey: ratelimit.EndpointConfig{Preset: ratelimit.PresetAPI},
		auth.MetadataAdmin:    true,
	}
}

// RegisterRoutes registers all API routes with their rate limit presets.
// Anonymous reads and submissions use the public preset, admin writes the API preset,
// and credential checks the auth preset.
func RegisterRoutes(api huma.API, h Handlers) {
	registerFacilityRoutes(api, h.Facilities)
	registerSuggestionRoutes(api, h.Suggestions)
	registerBlogRoutes(api, h.Blog)
	registerSettingsRoutes(api, h.Settings)

	huma.Register(api, huma.Operation{
		OperationID: "verify-admin-token",
		Method:      http.MethodPost,
		Path:        "/api/auth/verify",
		Summary:     "Verify admin token",
		Tags:        []string{"Auth"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Preset: ratelimit.PresetAuth},
		},
	}, h.Auth.Verify)
}

func registerFacilityRoutes(api huma.API, h *FacilityHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-facilities",
		Method:      http.MethodGet,
		Path:        "/api/facilities",
		Summary:     "Search facilities",
		Description: "Lists disposal facilities, optionally filtered by text, state, city and waste type.",
		Tags:        []string{"Facilities"},
		Metadata:    publicOp(),
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "get-facility",
		Method:      http.MethodGet,
		Path:        "/api/facilities/{id}",
		Summary:     "Get facility",
		Tags:        []string{"Facilities"},
		Metadata:    publicOp(),
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID:   "create-facility",
		Method:        http.MethodPost,
		Path:          "/api/facilities",
		Summary:       "Create facility",
		Tags:          []string{"Facilities"},
		DefaultStatus: http.StatusCreated,
		Metadata:      adminOp(),
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "update-facility",
		Method:      http.MethodPatch,
		Path:        "/api/facilities/{id}",
		Summary:     "Update facility",
		Tags:        []string{"Facilities"},
		Metadata:    adminOp(),
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-facility",
		Method:        http.MethodDelete,
		Path:          "/api/facilities/{id}",
		Summary:       "Delete facility",
		Tags:          []string{"Facilities"},
		DefaultStatus: http.StatusNoContent,
		Metadata:      adminOp(),
	}, h.Delete)
}

func registerSuggestionRoutes(api huma.API, h *SuggestionHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-suggestion",
		Method:        http.MethodPost,
		Path:          "/api/suggestions",
		Summary:       "Suggest a facility",
		Tags:          []string{"Suggestions"},
		DefaultStatus: http.StatusCreated,
		Metadata:      publicOp(),
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "list-suggestions",
		Method:      http.MethodGet,
		Path:        "/api/suggestions",
		Summary:     "List pending suggestions",
		Tags:        []string{"Suggestions"},
		Metadata:    adminOp(),
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "approve-suggestion",
		Method:      http.MethodPost,
		Path:        "/api/suggestions/{id}/approve",
		Summary:     "Approve suggestion",
		Description: "Publishes the suggestion as a facility and removes it from the review queue.",
		Tags:        []string{"Suggestions"},
		Metadata:    adminOp(),
	}, h.Approve)

	huma.Register(api, huma.Operation{
		OperationID:   "reject-suggestion",
		Method:        http.MethodDelete,
		Path:          "/api/suggestions/{id}",
		Summary:       "Reject suggestion",
		Tags:          []string{"Suggestions"},
		DefaultStatus: http.StatusNoContent,
		Metadata:      adminOp(),
	}, h.Reject)
}

func registerBlogRoutes(api huma.API, h *BlogHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-blog-posts",
		Method:      http.MethodGet,
		Path:        "/api/blog/posts",
		Summary:     "List blog posts",
		Tags:        []string{"Blog"},
		Metadata:    publicOp(),
	}, h.ListPosts)

	huma.Register(api, huma.Operation{
		OperationID: "get-blog-post",
		Method:      http.MethodGet,
		Path:        "/api/blog/posts/{id}",
		Summary:     "Get blog post",
		Tags:        []string{"Blog"},
		Metadata:    publicOp(),
	}, h.GetPost)

	huma.Register(api, huma.Operation{
		OperationID: "list-blog-categories",
		Method:      http.MethodGet,
		Path:        "/api/blog/categories",
		Summary:     "List blog categories",
		Tags:        []string{"Blog"},
		Metadata:    publicOp(),
	}, h.ListCategories)

	huma.Register(api, huma.Operation{
		OperationID:   "create-blog-post",
		Method:        http.MethodPost,
		Path:          "/api/blog/posts",
		Summary:       "Create blog post",
		Tags:          []string{"Blog"},
		DefaultStatus: http.StatusCreated,
		Metadata:      adminOp(),
	}, h.CreatePost)

	huma.Register(api, huma.Operation{
		OperationID: "update-blog-post",
		Method:      http.MethodPatch,
		Path:        "/api/blog/posts/{id}",
		Summary:     "Update blog post",
		Tags:        []string{"Blog"},
		Metadata:    adminOp(),
	}, h.UpdatePost)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-blog-post",
		Method:        http.MethodDelete,
		Path:          "/api/blog/posts/{id}",
		Summary:       "Delete blog post",
		Tags:          []string{"Blog"},
		DefaultStatus: http.StatusNoContent,
		Metadata:      adminOp(),
	}, h.DeletePost)
}

func registerSettingsRoutes(api huma.API, h *SettingsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-settings",
		Method:      http.MethodGet,
		Path:        "/api/settings/{name}",
		Summary:     "Get settings document",
		Tags:        []string{"Settings"},
		Metadata:    publicOp(),
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "update-settings",
		Method:      http.MethodPut,
		Path:        "/api/settings/{name}",
		Summary:     "Update settings document",
		Description: "Merges the given fields into the settings document.",
		Tags:        []string{"Settings"},
		Metadata:    adminOp(),
	}, h.Update)
}
