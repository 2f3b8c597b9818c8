package router

import (
	"contacthub/internal/application"
	"contacthub/internal/container"
	pginfra "contacthub/internal/infrastructure/postgres"
	handlers "contacthub/internal/interface/http"
	"contacthub/internal/router/modules"
)

func buildAuthModule() *modules.AuthModule {
	cfg := container.GetConfig()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	sessions := application.NewSessionManager(userRepo, container.GetJWT(), container.GetRedis(), container.GetLogger())
	audit := pginfra.NewAuditStore(container.GetPGPool())

	// a typed nil must not end up inside the Publisher interface
	var pub application.Publisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}

	svc := application.NewAuthService(
		userRepo,
		sessions,
		container.GetGCS(),
		cfg.GCSBucket,
		pub,
		container.GetLogger(),
		cfg,
		audit,
	)

	handler := handlers.NewAuthHandler(svc, container.GetLogger())
	return modules.NewAuthModule(handler, sessions, container.GetJWT())
}

func buildContactModule(sessions *application.SessionManager) *modules.ContactModule {
	cfg := container.GetConfig()

	contactRepo := pginfra.NewContactRepository(container.GetPGPool())
	svc := application.NewContactService(contactRepo, container.GetES(), cfg.ESContactsIndex, container.GetLogger())

	handler := handlers.NewContactHandler(svc, container.GetLogger())
	return modules.NewContactModule(handler, sessions, container.GetJWT())
}

// InitModules initializes all application modules and registers them with the router registry.
// Called once during startup.
func InitModules(r *Registry) {
	authModule := buildAuthModule()
	r.Add(authModule)
	r.Add(buildContactModule(authModule.Sessions))
}
