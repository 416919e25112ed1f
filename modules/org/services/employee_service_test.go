package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/evaldesk/evaldesk/modules/org/domain/entities/employee"
)

func TestEmployeeService_StageBuckets(t *testing.T) {
	svc := NewEmployeeService(newMockEmployeeRepository(), testPublisher())

	senior := uuid.New()
	junior := uuid.New()
	roster := []employee.Employee{
		{ID: uuid.New(), LastName: "Adler", StageID: &senior},
		{ID: uuid.New(), LastName: "Baker"},
		{ID: uuid.New(), LastName: "Chen", StageID: &junior},
		{ID: uuid.New(), LastName: "Diaz", StageID: &senior},
	}

	groups := svc.StageBuckets(testContext(), roster)
	require.Len(t, groups, 3)

	// Buckets appear in first-seen order, members in roster order.
	require.Equal(t, senior, groups[0].Key)
	require.Equal(t, "Adler", groups[0].Items[0].LastName)
	require.Equal(t, "Diaz", groups[0].Items[1].LastName)
	require.Equal(t, uuid.Nil, groups[1].Key)
	require.Equal(t, "Baker", groups[1].Items[0].LastName)
	require.Equal(t, junior, groups[2].Key)

	// Grouping never mutates the input.
	require.Equal(t, "Adler", roster[0].LastName)
	require.Len(t, roster, 4)
}

func TestEmployeeService_Create_ValidatesEmail(t *testing.T) {
	repo := newMockEmployeeRepository()
	svc := NewEmployeeService(repo, testPublisher())

	_, err := svc.Create(testContext(), &employee.CreateDTO{
		FirstName: "Dana",
		LastName:  "Reyes",
		Email:     "not-an-email",
	})
	require.Error(t, err)
	require.Empty(t, repo.byID)
}
