package services

// ServiceContainer holds instances of all the application services.
// Handlers and middleware reach every service through it.
type ServiceContainer struct {
	Auth               AuthSvcFacade
	User               UserSvcFacade
	TokenService       TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthHandlerSvcFacade
}
