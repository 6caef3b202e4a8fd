package reimb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/vob-portal/pkg/format"
)

func TestGroup(t *testing.T) {
	t.Run("second row for the same location wins", func(t *testing.T) {
		people := Group([]Row{
			{MemberID: "M1", Location: Detox, AvgAllowed: "100", NumRows: 2},
			{MemberID: "M1", Location: Detox, AvgAllowed: "150", NumRows: 3},
		})
		require.Len(t, people, 1)
		assert.Equal(t, map[Location]Stats{
			Detox: {Avg: "150", NumRows: 3},
		}, people[0].Locations)
	})

	t.Run("first occurrence order is preserved", func(t *testing.T) {
		people := Group([]Row{
			{MemberID: "M2", LastName: "Zed", Location: Detox, AvgAllowed: "1", NumRows: 1},
			{MemberID: "M1", LastName: "Abe", Location: Detox, AvgAllowed: "2", NumRows: 1},
			{MemberID: "M2", LastName: "Zed", Location: Residential, AvgAllowed: "3", NumRows: 1},
			{MemberID: "M3", Location: IntensiveOutpatient, AvgAllowed: "4", NumRows: 1},
			{MemberID: "M1", LastName: "Abe", Location: PartialHospitalization, AvgAllowed: "5", NumRows: 1},
		})
		require.Len(t, people, 3)
		assert.Equal(t, "M2", people[0].MemberID)
		assert.Equal(t, "M1", people[1].MemberID)
		assert.Equal(t, "M3", people[2].MemberID)

		assert.Len(t, people[0].Locations, 2)
		assert.Len(t, people[1].Locations, 2)
		assert.Len(t, people[2].Locations, 1)
	})

	t.Run("identity includes payer and name", func(t *testing.T) {
		people := Group([]Row{
			{MemberID: "M1", PayerName: "Aetna", Location: Detox},
			{MemberID: "M1", PayerName: "Cigna", Location: Detox},
			{MemberID: "M1", PayerName: "Aetna", FirstName: "Jo", Location: Detox},
		})
		assert.Len(t, people, 3)
	})

	t.Run("identity fields do not collide when concatenated", func(t *testing.T) {
		people := Group([]Row{
			{MemberID: "M1", LastName: "a", FirstName: "b", Location: Detox},
			{MemberID: "M1", LastName: "ab", FirstName: "", Location: Detox},
			{MemberID: "M1||a", LastName: "", FirstName: "b", Location: Detox},
		})
		assert.Len(t, people, 3)
	})

	t.Run("missing fields group as empty strings", func(t *testing.T) {
		people := Group([]Row{
			{Location: Detox, AvgAllowed: "10", NumRows: 1},
			{Location: Residential, AvgAllowed: "", NumRows: 0},
		})
		require.Len(t, people, 1)
		assert.Equal(t, Identity{}, people[0].Identity)
		assert.Equal(t, Stats{Avg: format.Amount(""), NumRows: 0}, people[0].Locations[Residential])
	})

	t.Run("no rows", func(t *testing.T) {
		assert.Empty(t, Group(nil))
	})
}

func TestGroupLastWriteWinsPerIdentityAndLocation(t *testing.T) {
	rows := []Row{
		{MemberID: "A", Location: Detox, AvgAllowed: "1", NumRows: 1},
		{MemberID: "B", Location: Detox, AvgAllowed: "2", NumRows: 2},
		{MemberID: "A", Location: Residential, AvgAllowed: "3", NumRows: 3},
		{MemberID: "A", Location: Detox, AvgAllowed: "4", NumRows: 4},
		{MemberID: "B", Location: Detox, AvgAllowed: "5", NumRows: 5},
		{MemberID: "A", Location: Residential, AvgAllowed: "6", NumRows: 6},
	}

	want := make(map[Identity]map[Location]Stats)
	for _, row := range rows {
		if want[row.Identity()] == nil {
			want[row.Identity()] = make(map[Location]Stats)
		}
		want[row.Identity()][row.Location] = Stats{Avg: row.AvgAllowed, NumRows: row.NumRows}
	}

	people := Group(rows)
	require.Len(t, people, 2)
	for _, person := range people {
		assert.Equal(t, want[person.Identity], person.Locations)
	}
}

func TestLocationFromString(t *testing.T) {
	loc, err := LocationFromString(" dtx ")
	require.NoError(t, err)
	assert.Equal(t, Detox, loc)

	_, err = LocationFromString("ER")
	require.EqualError(t, err, `invalid location "ER"`)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		id   Identity
		want string
	}{
		{id: Identity{LastName: "Doe", FirstName: "Jane"}, want: "Doe, Jane"},
		{id: Identity{FirstName: "Jane"}, want: "Jane"},
		{id: Identity{LastName: "Doe"}, want: "Doe,"},
		{id: Identity{}, want: NoName},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.DisplayName())
		})
	}
}
