package handlers

import "github.com/serroba/wastefinder/internal/directory"

// FacilityInput is the writable part of a facility.
type FacilityInput struct {
	Name        string   `doc:"Facility name"                  json:"name"                  maxLength:"200" minLength:"1"`
	Address     string   `doc:"Street address"                 json:"address"               minLength:"1"`
	City        string   `doc:"City"                           json:"city"                  minLength:"1"`
	State       string   `doc:"Two letter state code"          example:"TX"                 json:"state"     maxLength:"2" minLength:"2"`
	Zip         string   `doc:"Postal code"                    json:"zip,omitempty"         required:"false"`
	Phone       string   `doc:"Contact phone"                  json:"phone,omitempty"       required:"false"`
	Website     string   `doc:"Website URL"                    json:"website,omitempty"     required:"false"`
	WasteTypes  []string `doc:"Accepted waste types"           example:"[\"electronics\"]"  json:"wasteTypes"`
	Hours       string   `doc:"Opening hours"                  json:"hours,omitempty"       required:"false"`
	Latitude    float64  `doc:"Latitude"                       json:"latitude,omitempty"    required:"false"`
	Longitude   float64  `doc:"Longitude"                      json:"longitude,omitempty"   required:"false"`
	Description string   `doc:"Free text description"          json:"description,omitempty" required:"false"`
	Verified    bool     `doc:"Whether the listing is checked" json:"verified,omitempty"    required:"false"`
}

// ListFacilitiesRequest filters the facility directory.
type ListFacilitiesRequest struct {
	Query     string `doc:"Free text search"    query:"q"`
	State     string `doc:"State code"          query:"state"`
	City      string `doc:"City name"           query:"city"`
	WasteType string `doc:"Accepted waste type" query:"type"`
}

// ListFacilitiesResponse lists facilities.
type ListFacilitiesResponse struct {
	Body struct {
		Facilities []directory.Facility `json:"facilities"`
		Total      int                  `json:"total"`
	}
}

// IDRequest addresses a single entity.
type IDRequest struct {
	ID string `doc:"Entity id" path:"id"`
}

// FacilityResponse returns a single facility.
type FacilityResponse struct {
	Body directory.Facility
}

// CreateFacilityRequest creates a facility.
type CreateFacilityRequest struct {
	Body FacilityInput
}

// UpdateFacilityRequest changes the given fields of a facility.
type UpdateFacilityRequest struct {
	ID   string         `doc:"Facility id" path:"id"`
	Body map[string]any `doc:"Fields to change"`
}

// CreateSuggestionRequest submits a facility for review.
type CreateSuggestionRequest struct {
	Body struct {
		FacilityName   string   `json:"facilityName"             maxLength:"200"  minLength:"1"`
		Address        string   `json:"address"                  minLength:"1"`
		City           string   `json:"city"                     minLength:"1"`
		State          string   `json:"state"                    maxLength:"2"    minLength:"2"`
		WasteTypes     []string `json:"wasteTypes"`
		Website        string   `json:"website,omitempty"        required:"false"`
		Notes          string   `json:"notes,omitempty"          maxLength:"2000" required:"false"`
		SubmitterEmail string   `format:"email"                  json:"submitterEmail,omitempty" required:"false"`
	}
}

// SuggestionResponse returns a single suggestion.
type SuggestionResponse struct {
	Body directory.Suggestion
}

// ListSuggestionsResponse lists pending suggestions.
type ListSuggestionsResponse struct {
	Body struct {
		Suggestions []directory.Suggestion `json:"suggestions"`
	}
}

// BlogPostInput is the writable part of a blog post.
type BlogPostInput struct {
	Title      string `json:"title"                minLength:"1"`
	Slug       string `json:"slug"                 minLength:"1"    pattern:"^[a-z0-9-]+$"`
	Excerpt    string `json:"excerpt,omitempty"    required:"false"`
	Content    string `json:"content"`
	CategoryID string `json:"categoryId,omitempty" required:"false"`
	Author     string `json:"author,omitempty"     required:"false"`
	Published  bool   `json:"published,omitempty"  required:"false"`
}

// ListBlogPostsRequest filters blog posts.
type ListBlogPostsRequest struct {
	Category string `doc:"Category id"                          query:"category"`
	All      bool   `doc:"Include unpublished posts (admin UI)" query:"all"`
}

// ListBlogPostsResponse lists blog posts.
type ListBlogPostsResponse struct {
	Body struct {
		Posts []directory.BlogPost `json:"posts"`
	}
}

// BlogPostResponse returns a single post.
type BlogPostResponse struct {
	Body directory.BlogPost
}

// CreateBlogPostRequest creates a post.
type CreateBlogPostRequest struct {
	Body BlogPostInput
}

// UpdateBlogPostRequest changes the given fields of a post.
type UpdateBlogPostRequest struct {
	ID   string         `doc:"Post id" path:"id"`
	Body map[string]any `doc:"Fields to change"`
}

// ListBlogCategoriesResponse lists blog categories.
type ListBlogCategoriesResponse struct {
	Body struct {
		Categories []directory.BlogCategory `json:"categories"`
	}
}

// SettingsRequest addresses a settings document.
type SettingsRequest struct {
	Name string `doc:"Settings document" enum:"site,ads,seo" path:"name"`
}

// SettingsResponse returns a settings document.
type SettingsResponse struct {
	Body any
}

// UpdateSettingsRequest merges fields into a settings document.
type UpdateSettingsRequest struct {
	Name string         `doc:"Settings document" enum:"site,ads,seo" path:"name"`
	Body map[string]any `doc:"Fields to change"`
}

// VerifyTokenRequest checks an admin token.
type VerifyTokenRequest struct {
	Body struct {
		Token string `doc:"Admin token" json:"token" minLength:"1"`
	}
}

// VerifyTokenResponse reports a successful token check.
type VerifyTokenResponse struct {
	Body struct {
		Success bool `json:"success"`
	}
}
