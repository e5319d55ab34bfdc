// Package auth provides user accounts, login sessions and the request
// guards built on them.
//
// Sessions default to a signed cookie holding the user id:
//
//	SESSION_SECRET=<random string>   # signs session cookies and derives the CSRF key
//	SESSION_LIFETIME=720h            # cookie max age
//	SESSION_BACKEND=cookie|server    # server keeps sessions in SQLite via scs
//	SECURE_COOKIES=true              # HTTPS-only cookies
//
// # Usage
//
//	sessions, _ := auth.NewSessionStore(cfg.Auth, sqlDB)
//	service := auth.NewService(db, cfg.Auth)
//	mw := auth.NewMiddleware(service, sessions, logger)
//	router.Use(sessions.LoadAndSave())
//	router.POST("/api/books", mw.RequireUser(func(c *gin.Context, user *entities.User) { ... }))
package auth
