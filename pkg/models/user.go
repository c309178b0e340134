package models

import "time"

// Role is the coarse access role carried in the user record and inside
// access-token claims. The two applications share one backend, so both role
// sets live in the same enum space.
type Role string

const (
	// SkillChain roles
	RoleLearner  Role = "learner"
	RoleEmployer Role = "employer"
	RoleEducator Role = "educator"

	// ProcureChain roles
	RoleAdmin              Role = "admin"
	RoleGovernmentOfficial Role = "government_official"
	RoleAuditor            Role = "auditor"
	RoleVendor             Role = "vendor"
	RoleProcurementOfficer Role = "procurement_officer"
	RolePublic             Role = "public"
)

// KnownRoles lists every role the backend may hand back.
var KnownRoles = []Role{
	RoleLearner, RoleEmployer, RoleEducator,
	RoleAdmin, RoleGovernmentOfficial, RoleAuditor,
	RoleVendor, RoleProcurementOfficer, RolePublic,
}

func (r Role) Valid() bool {
	for _, k := range KnownRoles {
		if r == k {
			return true
		}
	}
	return false
}

// LandingRoute returns the route a signed-in user of this role is sent to
// when they hit a page they are not allowed on.
func (r Role) LandingRoute() string {
	switch r {
	case RoleLearner:
		return "/dashboard"
	case RoleEmployer:
		return "/employer/dashboard"
	case RoleEducator:
		return "/educator/dashboard"
	case RoleAdmin:
		return "/admin"
	case RoleGovernmentOfficial, RoleProcurementOfficer:
		return "/procurements"
	case RoleAuditor:
		return "/audit"
	case RoleVendor:
		return "/vendor/dashboard"
	default:
		return "/"
	}
}

// AccountStatus mirrors the user record's status field.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountInactive  AccountStatus = "inactive"
	AccountSuspended AccountStatus = "suspended"
)

// User is the safe view of a user record as returned by the auth endpoints.
// The client never sees password material.
type User struct {
	ID         string        `json:"_id"`
	Email      string        `json:"email"`
	FullName   string        `json:"full_name"`
	Role       Role          `json:"role"`
	UserType   Role          `json:"user_type,omitempty"`
	Department string        `json:"department,omitempty"`
	Status     AccountStatus `json:"status"`
	LastLogin  *time.Time    `json:"last_login,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// EffectiveRole prefers the SkillChain user_type when present, falling back
// to the ProcureChain role field.
func (u User) EffectiveRole() Role {
	if u.UserType != "" {
		return u.UserType
	}
	return u.Role
}

// Session is the client-local authenticated identity: the three values the
// browser apps kept in local storage, plus the decoded token expiry.
type Session struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// Authenticated reports whether the session holds a usable access token.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Expired reports whether the access token is past its decoded exp claim.
// A zero ExpiresAt means the expiry could not be decoded and the token is
// assumed live; the server remains the authority either way.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// UserProfile is the learner/employer profile record edited on the profile
// pages. Skills listed here are the verified ones used for job matching.
type UserProfile struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"user_id"`
	Headline        string          `json:"headline,omitempty"`
	Bio             string          `json:"bio,omitempty"`
	Location        string          `json:"location,omitempty"`
	ExperienceLevel string          `json:"experience_level,omitempty"`
	VerifiedSkills  []VerifiedSkill `json:"verified_skills,omitempty"`
	Links           []string        `json:"links,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// VerifiedSkill is a skill with a verified assessment score attached.
type VerifiedSkill struct {
	Name       string     `json:"name"`
	Score      float64    `json:"score"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}
