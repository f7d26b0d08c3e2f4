package domain

// SessionUser is the identity snapshot attached to a request once its
// session token has been validated against the backend. It lives for a
// single request; nothing is cached across requests.
type SessionUser struct {
	ID        int64  `json:"id"`
	GitHubID  int64  `json:"github_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`

	// Preference flags are optional; older backend records omit them.
	EmailNotifications  *bool `json:"email_notifications,omitempty"`
	OnboardingCompleted *bool `json:"onboarding_completed,omitempty"`
}

// GitHubUser models the subset of the GitHub /user profile we consume.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// GitHubTokenResponse models GitHub's token exchange response.
type GitHubTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}
