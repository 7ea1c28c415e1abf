package handler

import "fmt"

// MissingDependencyError is returned by NewWebhookHandler when a required collaborator is not configured.
type MissingDependencyError struct {
	Name string
}

func (m *MissingDependencyError) Error() string {
	return fmt.Sprintf("no %s configured", m.Name)
}
