package config

import "os"

const defaultAPIURL = "http://localhost:8080"

// APIURL returns the base URL for the asset inventory API. Override with the
// ITAM_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("ITAM_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// Token returns the bearer token used for audit attribution, if any. Set via
// ITAM_API_TOKEN; imports run as "System" without it.
func Token() string {
	return os.Getenv("ITAM_API_TOKEN")
}
