package orgtree

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	adminID      = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	supervisorID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	employeeID   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func testUsers() []User {
	return []User{
		{ID: adminID, DisplayName: "Ada", Role: RoleAdmin},
		{ID: supervisorID, DisplayName: "Sam", Role: RoleSupervisor, SupervisorID: &adminID},
		{ID: employeeID, DisplayName: "Eve", Role: RoleEmployee, SupervisorID: &supervisorID},
	}
}

func TestBuildForest(t *testing.T) {
	t.Run("builds chain in input order", func(t *testing.T) {
		forest, err := BuildForest(testUsers())
		require.NoError(t, err)

		require.Len(t, forest.Roots, 1)
		root := forest.Roots[0]
		require.Equal(t, adminID, root.User.ID)
		require.Len(t, root.Children, 1)
		require.Equal(t, supervisorID, root.Children[0].User.ID)
		require.Len(t, root.Children[0].Children, 1)
		require.Equal(t, employeeID, root.Children[0].Children[0].User.ID)
	})

	t.Run("unknown supervisor becomes root", func(t *testing.T) {
		missing := uuid.MustParse("99999999-9999-9999-9999-999999999999")
		forest, err := BuildForest([]User{
			{ID: adminID, Role: RoleAdmin},
			{ID: employeeID, Role: RoleEmployee, SupervisorID: &missing},
		})
		require.NoError(t, err)

		require.Len(t, forest.Roots, 2)
		require.Equal(t, adminID, forest.Roots[0].User.ID)
		require.Equal(t, employeeID, forest.Roots[1].User.ID)
	})

	t.Run("multiple roots keep input order", func(t *testing.T) {
		forest, err := BuildForest([]User{
			{ID: supervisorID, Role: RoleSupervisor},
			{ID: adminID, Role: RoleAdmin},
		})
		require.NoError(t, err)

		require.Len(t, forest.Roots, 2)
		require.Equal(t, supervisorID, forest.Roots[0].User.ID)
		require.Equal(t, adminID, forest.Roots[1].User.ID)
	})

	t.Run("supervisor cycle fails", func(t *testing.T) {
		_, err := BuildForest([]User{
			{ID: adminID, Role: RoleSupervisor, SupervisorID: &supervisorID},
			{ID: supervisorID, Role: RoleSupervisor, SupervisorID: &adminID},
		})
		require.ErrorIs(t, err, ErrCycleDetected)
	})

	t.Run("self supervision fails", func(t *testing.T) {
		_, err := BuildForest([]User{
			{ID: adminID, Role: RoleSupervisor, SupervisorID: &adminID},
		})
		require.ErrorIs(t, err, ErrCycleDetected)
	})

	t.Run("duplicate user id fails", func(t *testing.T) {
		_, err := BuildForest([]User{
			{ID: adminID, Role: RoleAdmin},
			{ID: adminID, Role: RoleEmployee},
		})
		require.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("empty input yields empty forest", func(t *testing.T) {
		forest, err := BuildForest(nil)
		require.NoError(t, err)
		require.Empty(t, forest.Roots)
		require.Equal(t, 0, forest.Size())
	})
}

func TestForestFindAndWalk(t *testing.T) {
	forest, err := BuildForest(testUsers())
	require.NoError(t, err)

	require.NotNil(t, forest.Find(employeeID))
	require.Nil(t, forest.Find(uuid.New()))

	var visited []uuid.UUID
	forest.Walk(func(n *Node) bool {
		visited = append(visited, n.User.ID)
		return true
	})
	require.Equal(t, []uuid.UUID{adminID, supervisorID, employeeID}, visited)

	// Walk stops when the visitor returns false.
	var stopped []uuid.UUID
	forest.Walk(func(n *Node) bool {
		stopped = append(stopped, n.User.ID)
		return n.User.ID != supervisorID
	})
	require.Equal(t, []uuid.UUID{adminID, supervisorID}, stopped)

	require.Equal(t, 3, forest.Size())
}

func TestForestClone(t *testing.T) {
	forest, err := BuildForest(testUsers())
	require.NoError(t, err)

	clone := forest.Clone()
	clone.Roots[0].User.DisplayName = "renamed"
	clone.Roots[0].Children[0].User.Department = "Platform"

	require.Equal(t, "Ada", forest.Roots[0].User.DisplayName)
	require.Empty(t, forest.Roots[0].Children[0].User.Department)
}

func TestRoleAssignable(t *testing.T) {
	require.True(t, RoleEmployee.Assignable())
	require.True(t, RoleSupervisor.Assignable())
	require.False(t, RoleAdmin.Assignable())
	require.False(t, Role("manager").Assignable())

	require.True(t, RoleAdmin.IsValid())
	require.False(t, Role("").IsValid())
}
