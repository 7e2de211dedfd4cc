package domain

import (
	"fmt"
	"strings"
)

// CustomerInfo is the checkout form as submitted by the shopper.
// Only email, first name and last name are required; the address block is
// collected by the provider's hosted page when needed.
type CustomerInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	ZipCode   string `json:"zipCode,omitempty"`
	Country   string `json:"country,omitempty"`
}

// Validate reports the first required field that is blank after trimming.
func (c CustomerInfo) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"email", c.Email},
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("required field %s is empty", f.name)
		}
	}
	return nil
}

// FullName joins first and last name for provider metadata.
func (c CustomerInfo) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
