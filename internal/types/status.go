package types

// Status is a type for the lifecycle status of a resource in the database.
// It determines whether a resource should be included in queries.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)
