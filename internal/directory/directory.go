// Package directory holds the WasteFinder content model: disposal facilities, visitor
// suggestions, blog content and site settings, plus the logical store keys they live under.
package directory

import "time"

// Logical store keys.
const (
	KeyLocations          = "locations"
	KeyPendingSuggestions = "pendingSuggestions"
	KeyBlogPosts          = "blogPosts"
	KeyBlogCategories     = "blogCategories"
	KeySiteSettings       = "siteSettings"
	KeyAdSettings         = "adSettings"
	KeySEOSettings        = "seoSettings"
)

// Facility is a waste-disposal site listed in the directory.
type Facility struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Zip         string    `json:"zip,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Website     string    `json:"website,omitempty"`
	WasteTypes  []string  `json:"wasteTypes"`
	Hours       string    `json:"hours,omitempty"`
	Latitude    float64   `json:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty"`
	Description string    `json:"description,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (f Facility) EntityID() string { return f.ID }

// SuggestionStatus tracks the review state of a suggestion.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Suggestion is a facility submitted by a visitor and awaiting review.
type Suggestion struct {
	ID             string           `json:"id"`
	FacilityName   string           `json:"facilityName"`
	Address        string           `json:"address"`
	City           string           `json:"city"`
	State          string           `json:"state"`
	WasteTypes     []string         `json:"wasteTypes"`
	Website        string           `json:"website,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	SubmitterEmail string           `json:"submitterEmail,omitempty"`
	Status         SuggestionStatus `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
}

func (s Suggestion) EntityID() string { return s.ID }

// Facility converts an approved suggestion into a directory listing.
func (s Suggestion) Facility(id string, now time.Time) Facility {
	return Facility{
		ID:          id,
		Name:        s.FacilityName,
		Address:     s.Address,
		City:        s.City,
		State:       s.State,
		Website:     s.Website,
		WasteTypes:  s.WasteTypes,
		Description: s.Notes,
		CreatedAt:   now,
	}
}

// BlogPost is a news or guide article.
type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Content     string    `json:"content"`
	CategoryID  string    `json:"categoryId,omitempty"`
	Author      string    `json:"author,omitempty"`
	Published   bool      `json:"published"`
	PublishedAt time.Time `json:"publishedAt,omitzero"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p BlogPost) EntityID() string { return p.ID }

// BlogCategory groups blog posts.
type BlogCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (c BlogCategory) EntityID() string { return c.ID }

// SiteSettings are global presentation settings.
type SiteSettings struct {
	SiteName     string `json:"siteName"`
	Tagline      string `json:"tagline"`
	ContactEmail string `json:"contactEmail"`
}

// AdPlacement is an advertising slot on the site.
type AdPlacement struct {
	ID       string `json:"id"`
	Slot     string `json:"slot"`
	ImageURL string `json:"imageUrl,omitempty"`
	LinkURL  string `json:"linkUrl,omitempty"`
	Active   bool   `json:"active"`
}

// AdSettings configures advertising placements.
type AdSettings struct {
	Enabled    bool          `json:"enabled"`
	Placements []AdPlacement `json:"placements"`
}

// SEOSettings configures default page metadata.
type SEOSettings struct {
	DefaultTitle       string   `json:"defaultTitle"`
	DefaultDescription string   `json:"defaultDescription"`
	Keywords           []string `json:"keywords"`
	AllowIndexing      bool     `json:"allowIndexing"`
}

// Defaults returns the values seeded into empty keys at startup.
func Defaults() map[string]any {
	return map[string]any{
		KeyLocations:          []Facility{},
		KeyPendingSuggestions: []Suggestion{},
		KeyBlogPosts:          []BlogPost{},
		KeyBlogCategories: []BlogCategory{
			{ID: "recycling", Name: "Recycling", Slug: "recycling"},
			{ID: "hazardous-waste", Name: "Hazardous Waste", Slug: "hazardous-waste"},
			{ID: "news", Name: "News", Slug: "news"},
		},
		KeySiteSettings: SiteSettings{
			SiteName: "WasteFinder",
			Tagline:  "Find the right place to dispose of anything",
		},
		KeyAdSettings: AdSettings{
			Placements: []AdPlacement{
				{ID: "header", Slot: "header"},
				{ID: "sidebar", Slot: "sidebar"},
				{ID: "footer", Slot: "footer"},
			},
		},
		KeySEOSettings: SEOSettings{
			DefaultTitle:       "WasteFinder - Waste Disposal Facility Directory",
			DefaultDescription: "Search landfills, transfer stations and recycling centers near you.",
			Keywords:           []string{"waste disposal", "landfill", "recycling center", "dump"},
			AllowIndexing:      true,
		},
	}
}
