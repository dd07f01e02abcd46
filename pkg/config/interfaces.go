package config

// Validator allows configurations to validate themselves after loading.
type Validator interface {
	Validate() error
}
