package models

// Page is a front-end route guarded by the access gate.
type Page struct {
	Path  string     `json:"path"`
	Label string     `json:"label"`
	Roles []UserRole `json:"roles"`
}

// AccessDecision answers whether a role may open a page.
type AccessDecision struct {
	Page      string   `json:"page"`
	Role      UserRole `json:"role"`
	Permitted bool     `json:"permitted"`
	Redirect  string   `json:"redirect,omitempty"`
}
