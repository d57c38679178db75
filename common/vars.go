package common

var (
	// PackageName identifies this service in logs and metrics.
	PackageName = "sitecloner"

	// Version is set during the build process.
	Version = "dev"
)
