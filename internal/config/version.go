package config

// Version is the healthauditd binary version.
// Set at build time via: -ldflags "-X github.com/wellally/healthaudit/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
