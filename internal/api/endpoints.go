package api

// Authentication service endpoints
const (
	// Service name
	AuthService = "auth.Auth"

	// Authentication endpoints
	AuthRegister           = "/auth.Auth/Register"
	AuthLogin              = "/auth.Auth/Login"
	AuthRefreshToken       = "/auth.Auth/RefreshToken"
	AuthForgotPassword     = "/auth.Auth/ForgotPassword"
	AuthResetPassword      = "/auth.Auth/ResetPassword"
	AuthVerifyEmail        = "/auth.Auth/VerifyEmail"
	AuthResendVerification = "/auth.Auth/ResendVerificationEmail"
	AuthLogout             = "/auth.Auth/Logout"
	AuthLogoutAll          = "/auth.Auth/LogoutAll"
	AuthGetProfile         = "/auth.Auth/GetProfile"
)

// PublicEndpoints defines endpoints that don't require authentication
var PublicEndpoints = map[string]bool{
	AuthRegister:       true,
	AuthLogin:          true,
	AuthRefreshToken:   true,
	AuthForgotPassword: true,
	AuthResetPassword:  true,
	AuthVerifyEmail:    true,
	AuthLogout:         true,
}
