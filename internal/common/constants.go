package common

// Credential store key names. Three named secrets are kept locally and wiped
// together on logout.
const (
	AccessTokenKey  = "access_token"
	IDTokenKey      = "id_token"
	RefreshTokenKey = "refresh_token"
)
