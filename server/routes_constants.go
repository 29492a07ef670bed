package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthLogin    = "/api/auth/login"
	RouteAuthRegister = "/api/auth/register"

	// Session Routes
	RouteSessions           = "/api/session"
	RouteSession            = "/api/session/{id}"
	RouteSessionParticipate = "/api/session/{id}/participate/{userId}"

	// Teacher Routes
	RouteTeachers = "/api/teacher"
	RouteTeacher  = "/api/teacher/{id}"

	// User Routes
	RouteUser = "/api/user/{id}"

	// CORS preflight for everything under the API prefix
	RouteAPIPrefix = "/api/"
)
