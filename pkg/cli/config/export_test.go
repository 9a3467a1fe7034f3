package config

// NewPollerForTest creates a Poller config for testing purposes
func NewPollerForTest(interval, window string) *Poller {
	return &Poller{
		interval:          interval,
		window:            window,
		onboardingStatus:  "Onboarding",
		offboardingStatus: "Offboarding",
	}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(jwksURL, hmacSecret string, noAuth bool) *Auth {
	return &Auth{
		jwksURL:    jwksURL,
		hmacSecret: hmacSecret,
		noAuth:     noAuth,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, dsn string, autoMigrate bool) *Repository {
	return &Repository{
		backend:     backend,
		dsn:         dsn,
		autoMigrate: autoMigrate,
	}
}

// NewCacheForTest creates a Cache config for testing purposes
func NewCacheForTest(backend string, lruSize int) *Cache {
	return &Cache{
		backend: backend,
		lruSize: lruSize,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

var ParseDuration = parseDuration
