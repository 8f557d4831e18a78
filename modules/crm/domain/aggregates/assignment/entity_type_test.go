package assignment_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpipe/crm/modules/crm/domain/aggregates/assignment"
)

func TestParseEntityType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want assignment.EntityType
	}{
		{"people", assignment.EntityTypePeople},
		{"companies", assignment.EntityTypeCompanies},
		{"jobs", assignment.EntityTypeJobs},
		{" People ", assignment.EntityTypePeople},
		{"JOBS", assignment.EntityTypeJobs},
	}
	for _, tc := range cases {
		got, err := assignment.ParseEntityType(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseEntityType_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "leads", "person", "company"} {
		_, err := assignment.ParseEntityType(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, assignment.ErrInvalidInput))
	}
}

func TestLogEntry_OwnerCopies(t *testing.T) {
	t.Parallel()

	owner := "user-1"
	entry := assignment.NewLogEntry(
		uuid.Nil, assignment.EntityTypePeople, "lead-1", nil, &owner, "admin-1",
	)

	got := entry.NewOwnerID()
	require.NotNil(t, got)
	*got = "mutated"

	again := entry.NewOwnerID()
	require.NotNil(t, again)
	assert.Equal(t, "user-1", *again)

	assert.Nil(t, entry.OldOwnerID())
	assert.False(t, entry.IsUnassignment())
}
