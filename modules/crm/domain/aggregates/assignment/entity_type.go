package assignment

import "strings"

// EntityType names one of the CRM tables subject to ownership assignment.
type EntityType string

const (
	EntityTypePeople    EntityType = "people"
	EntityTypeCompanies EntityType = "companies"
	EntityTypeJobs      EntityType = "jobs"
)

func EntityTypes() []EntityType {
	return []EntityType{EntityTypePeople, EntityTypeCompanies, EntityTypeJobs}
}

func ParseEntityType(v string) (EntityType, error) {
	switch EntityType(strings.ToLower(strings.TrimSpace(v))) {
	case EntityTypePeople:
		return EntityTypePeople, nil
	case EntityTypeCompanies:
		return EntityTypeCompanies, nil
	case EntityTypeJobs:
		return EntityTypeJobs, nil
	default:
		return "", ErrInvalidInput.WithDetails("unknown entity type: " + v)
	}
}

func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypePeople, EntityTypeCompanies, EntityTypeJobs:
		return true
	default:
		return false
	}
}

func (t EntityType) String() string { return string(t) }
