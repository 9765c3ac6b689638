package domain

// Project represents a Toggl project in the domain layer.
type Project struct {
	ID          int64
	WorkspaceID int64
	Name        string
}

// NoProject labels entries without a project.
const NoProject = "No Project"

// UnknownProject labels entries whose project could not be resolved.
const UnknownProject = "Unknown Project"
