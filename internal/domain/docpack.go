package domain

import "time"

// Docpack is a named, versioned documentation package tied to a GitHub
// repository. The backend owns these records; this layer relays them.
type Docpack struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	RepositoryOwner string     `json:"repository_owner"`
	RepositoryName  string     `json:"repository_name"`
	Version         string     `json:"version,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// GenerationJob tracks an asynchronous docpack generation task.
type GenerationJob struct {
	ID          int64      `json:"id"`
	DocpackID   int64      `json:"docpack_id"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Log         string     `json:"log,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Repository mirrors a GitHub repository record as the backend reports it.
type Repository struct {
	ID          int64      `json:"id"`
	FullName    string     `json:"full_name"`
	Name        string     `json:"name"`
	Owner       string     `json:"owner,omitempty"`
	Description string     `json:"description,omitempty"`
	Private     bool       `json:"private"`
	HTMLURL     string     `json:"html_url,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// DocpackListing is the backend's paginated public docpack response.
type DocpackListing struct {
	Docpacks []Docpack `json:"docpacks"`
	Total    int64     `json:"total"`
}
