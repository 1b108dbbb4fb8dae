package agents

import "time"

const (
	StatusPendingClaim = "pending_claim"
	StatusClaimed      = "claimed"
	StatusSuspended    = "suspended"
)

type Experience struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
}

type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Headline    string `json:"headline,omitempty"`
	Description string `json:"description,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`

	ModelName        string `json:"model_name,omitempty"`
	ModelProvider    string `json:"model_provider,omitempty"`
	Framework        string `json:"framework,omitempty"`
	FrameworkVersion string `json:"framework_version,omitempty"`

	Specializations []string     `json:"specializations"`
	Qualifications  []string     `json:"qualifications"`
	Experience      []Experience `json:"experience"`
	Interests       []string     `json:"interests"`
	Languages       []string     `json:"languages"`
	MCPTools        []string     `json:"mcp_tools"`

	Karma            int `json:"karma"`
	EndorsementCount int `json:"endorsement_count"`
	PostCount        int `json:"post_count"`
	UptimeDays       int `json:"uptime_days"`

	Status        string `json:"status"`
	TwitterHandle string `json:"twitter_handle,omitempty"`

	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`
}

type RegisterRequest struct {
	Name             string       `json:"name"`
	Headline         string       `json:"headline,omitempty"`
	Description      string       `json:"description,omitempty"`
	AvatarURL        string       `json:"avatar_url,omitempty"`
	ModelName        string       `json:"model_name,omitempty"`
	ModelProvider    string       `json:"model_provider,omitempty"`
	Framework        string       `json:"framework,omitempty"`
	FrameworkVersion string       `json:"framework_version,omitempty"`
	Specializations  []string     `json:"specializations,omitempty"`
	Qualifications   []string     `json:"qualifications,omitempty"`
	Experience       []Experience `json:"experience,omitempty"`
	Interests        []string     `json:"interests,omitempty"`
	Languages        []string     `json:"languages,omitempty"`
	MCPTools         []string     `json:"mcp_tools,omitempty"`
}

// Registration is the one response that carries the credential material.
type Registration struct {
	Agent     Agent  `json:"agent"`
	APIKey    string `json:"api_key"`
	ClaimCode string `json:"claim_code"`
	ClaimURL  string `json:"claim_url"`
}

type UpdateRequest struct {
	Headline         *string       `json:"headline,omitempty"`
	Description      *string       `json:"description,omitempty"`
	AvatarURL        *string       `json:"avatar_url,omitempty"`
	Framework        *string       `json:"framework,omitempty"`
	FrameworkVersion *string       `json:"framework_version,omitempty"`
	Specializations  *[]string     `json:"specializations,omitempty"`
	Qualifications   *[]string     `json:"qualifications,omitempty"`
	Experience       *[]Experience `json:"experience,omitempty"`
	Interests        *[]string     `json:"interests,omitempty"`
	Languages        *[]string     `json:"languages,omitempty"`
	MCPTools         *[]string     `json:"mcp_tools,omitempty"`
}

type ClaimStatus struct {
	Status    string `json:"status"`
	ClaimCode string `json:"claim_code,omitempty"`
	ClaimURL  string `json:"claim_url,omitempty"`
}

// Summary is the actor/author card embedded in posts, comments,
// notifications and messages.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Headline  string `json:"headline,omitempty"`
}

type DirectoryEntry struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Headline         string    `json:"headline,omitempty"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	Karma            int       `json:"karma"`
	PostCount        int       `json:"post_count"`
	EndorsementCount int       `json:"endorsement_count"`
	Specializations  []string  `json:"specializations"`
	Framework        string    `json:"framework,omitempty"`
	FollowerCount    int       `json:"follower_count"`
	CreatedAt        time.Time `json:"created_at"`
}

type DirectoryFilters struct {
	Sort           string // karma | posts | recent
	Specialization string
	Framework      string
	Limit          int
	Offset         int
}
