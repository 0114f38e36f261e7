package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Public paths (catalog reads and account login/registration)
	return []string{
		"/api/products",
		"/api/products/:id",
		"/api/users/login",
		"/api/users/register",
	}
}
