package domain

// ViewerRole is the audience an issue view is rendered for. Public covers
// unauthenticated access to the transparency listing.
type ViewerRole string

const (
	ViewerPublic  ViewerRole = "public"
	ViewerCitizen ViewerRole = "citizen"
	ViewerAdmin   ViewerRole = "admin"
)

// ViewerForRole maps an authenticated user role to its viewer audience.
func ViewerForRole(role UserRole) ViewerRole {
	if role == RoleAdmin {
		return ViewerAdmin
	}
	return ViewerCitizen
}
