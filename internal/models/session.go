package models

// Session keys used by the launch flow. The session is cookie-backed and
// lives for the configured idle window (1 hour by default).
const (
	SessionUserID       = "canvas_user_id"
	SessionCourseID     = "course_id"
	SessionInstructor   = "instructor"
	SessionAdmin        = "admin"
	SessionAPIKey       = "api_key"
	SessionRefreshToken = "refresh_token"
	SessionExpiresAt    = "expires_at"
	SessionOAuthState   = "oauth_state"
)

// LTI 1.1 launch form fields the platform POSTs at us.
const (
	FormUserID   = "custom_canvas_user_id"
	FormCourseID = "custom_canvas_course_id"
	FormRoles    = "roles"
)

// Role names checked against the launch's roles list. Membership is a
// substring test; Canvas sends URN-style role values.
const (
	RoleAdministrator = "Administrator"
	RoleInstructor    = "Instructor"
)
