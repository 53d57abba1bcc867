package app

// Version is reported by the health endpoint and attached to telemetry.
// Overridden at build time with -ldflags "-X portfolio-service/internal/app.Version=...".
var Version = "1.0.0"

const ServiceName = "portfolio-service"
