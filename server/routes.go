package server

import "net/http"

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))

	// SESSIONS
	s.RegisterRouteHandler("GET "+RouteSessions, ChainMiddleware(s.ListSessionsHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteSessions, ChainMiddleware(s.CreateSessionHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteSession, ChainMiddleware(s.GetSessionHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PUT "+RouteSession, ChainMiddleware(s.UpdateSessionHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteSession, ChainMiddleware(s.DeleteSessionHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteSessionParticipate, ChainMiddleware(s.ParticipateHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteSessionParticipate, ChainMiddleware(s.NoLongerParticipateHandler(), s.APIMiddleware(s.RequireAuth())...))

	// TEACHERS
	s.RegisterRouteHandler("GET "+RouteTeachers, ChainMiddleware(s.ListTeachersHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteTeacher, ChainMiddleware(s.GetTeacherHandler(), s.APIMiddleware(s.RequireAuth())...))

	// USERS
	s.RegisterRouteHandler("GET "+RouteUser, ChainMiddleware(s.GetUserHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteUser, ChainMiddleware(s.DeleteUserHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Preflight requests are answered by the CORS middleware before reaching the handler
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPrefix, ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))
}
