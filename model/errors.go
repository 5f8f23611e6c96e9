package model

import "fmt"

// DomainError reports a spot, planet, or limb-darkening parameter outside its
// physical range. It is returned before any geometry is evaluated.
type DomainError struct {
	Param string
	Value float64
	Msg   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error: %s = %g: %s", e.Param, e.Value, e.Msg)
}

// ConfigurationError reports inputs that are individually valid but cannot be
// combined, such as mismatched broadcast shapes or multiple stellar
// inclinations together with a transiting planet.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}
