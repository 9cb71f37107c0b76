package emote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowSource struct {
	rows []Row
	err  error
}

func (s rowSource) Name() string { return "rows" }

func (s rowSource) Rows(ctx context.Context) ([]Row, error) {
	return s.rows, s.err
}

type fakeChecker struct {
	present  bool
	unlocked map[uint32]bool
	err      error
	panics   bool
}

func (f fakeChecker) PlayerPresent() bool { return f.present }

func (f fakeChecker) IsEmoteUnlocked(id uint32) (bool, error) {
	if f.panics {
		panic("host went away")
	}
	if f.err != nil {
		return false, f.err
	}
	return f.unlocked[id], nil
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(context.Background(), rowSource{rows: []Row{
		{Index: 0, ID: 11, Name: "Dance", Command: "/dance"},
		{Index: 1, ID: 45, Name: "Harvest Dance", Command: "/hdance", UnlockLink: 45},
		{Index: 2, ID: 46, Name: "Step Dance", Command: "/stepdance", UnlockLink: 46},
		{Index: 3, ID: 16, Name: "Wave", Command: "/wave"},
		{Index: 4, ID: 51, Name: "Sleep"},
	}})
	require.NoError(t, err)
	return c
}

func TestLoadSkipsBadRows(t *testing.T) {
	c, err := Load(context.Background(), rowSource{rows: []Row{
		{Index: 0, ID: 1, Name: "Bow", Command: "/bow"},
		{Index: 1, ID: 0, Name: "Zero"},
		{Index: 2, ID: -4, Name: "Negative"},
		{Index: 3, ID: 7, Name: "   "},
		{Index: 4, Err: errors.New("bad row")},
		{Index: 5, ID: 1, Name: "Bow Again"},
		{Index: 6, ID: 2, Name: " Cheer ", Command: " /cheer "},
	}})
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	bow, ok := c.ByID(1)
	require.True(t, ok)
	assert.Equal(t, "Bow", bow.Name)

	cheer, ok := c.ByID(2)
	require.True(t, ok)
	assert.Equal(t, "Cheer", cheer.Name)
	assert.Equal(t, "/cheer", cheer.Command)

	_, ok = c.ByID(7)
	assert.False(t, ok)
}

func TestLoadSourceFailure(t *testing.T) {
	c, err := Load(context.Background(), rowSource{err: errors.New("sheet missing")})
	require.Error(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.FindByName("dance"))

	c, err = Load(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestAllIsOrderedByID(t *testing.T) {
	c := testCatalog(t)
	var ids []uint32
	for _, d := range c.All() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []uint32{11, 16, 45, 46, 51}, ids)
}

func TestFindByName(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name  string
		query string
		want  []uint32
	}{
		{name: "exact match first", query: "dance", want: []uint32{11, 45, 46}},
		{name: "mixed case", query: "DaNcE", want: []uint32{11, 45, 46}},
		{name: "substring only", query: "step", want: []uint32{46}},
		{name: "exact beats lower id partial", query: "harvest dance", want: []uint32{45}},
		{name: "surrounding space trimmed", query: "  wave ", want: []uint32{16}},
		{name: "no match", query: "salute", want: nil},
		{name: "empty query", query: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []uint32
			for _, d := range c.FindByName(tt.query) {
				got = append(got, d.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchMatchesCommands(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name  string
		query string
		want  []uint32
	}{
		{name: "command", query: "/wave", want: []uint32{16}},
		{name: "command mixed case", query: "/WAVE", want: []uint32{16}},
		{name: "exact command first", query: "/dance", want: []uint32{11}},
		{name: "command substring", query: "hdance", want: []uint32{45}},
		{name: "name still matches", query: "step", want: []uint32{46}},
		{name: "no command", query: "sleep", want: []uint32{51}},
		{name: "bare slash", query: "/", want: []uint32{11, 16, 45, 46}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []uint32
			for _, d := range c.Search(tt.query) {
				got = append(got, d.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Empty(t, c.FindByName("/wave"))
}

func TestFindByNameSuppressesDuplicateNames(t *testing.T) {
	c, err := Load(context.Background(), rowSource{rows: []Row{
		{ID: 3, Name: "Wave", Command: "/wave"},
		{ID: 9, Name: "wave", Command: "/wave2"},
		{ID: 4, Name: "Big Wave", Command: "/bigwave"},
	}})
	require.NoError(t, err)

	got := c.FindByName("wave")
	require.Len(t, got, 2)
	assert.Equal(t, uint32(3), got[0].ID)
	assert.Equal(t, uint32(4), got[1].ID)
}

func TestFindByNameCapsResults(t *testing.T) {
	c, err := Load(context.Background(), EmbeddedSheet())
	require.NoError(t, err)
	require.Greater(t, c.Len(), MaxResults)

	assert.Len(t, c.FindByName("e"), MaxResults)
}

func TestIsUnlocked(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name    string
		id      uint32
		checker UnlockChecker
		want    bool
	}{
		{name: "unknown id", id: 999, checker: fakeChecker{present: true}, want: false},
		{name: "ungated without player", id: 11, checker: fakeChecker{present: false}, want: true},
		{name: "ungated with nil checker", id: 11, checker: nil, want: true},
		{name: "gated and unlocked", id: 45, checker: fakeChecker{present: true, unlocked: map[uint32]bool{45: true}}, want: true},
		{name: "gated and locked", id: 46, checker: fakeChecker{present: true, unlocked: map[uint32]bool{45: true}}, want: false},
		{name: "gated without player", id: 45, checker: fakeChecker{present: false, unlocked: map[uint32]bool{45: true}}, want: false},
		{name: "gated query error", id: 45, checker: fakeChecker{present: true, err: errors.New("boom")}, want: false},
		{name: "gated query panic", id: 45, checker: fakeChecker{present: true, panics: true}, want: false},
		{name: "gated nil checker", id: 45, checker: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsUnlocked(tt.id, tt.checker))
		})
	}
}

func TestFilter(t *testing.T) {
	c := testCatalog(t)
	checker := fakeChecker{present: true, unlocked: map[uint32]bool{46: true}}

	assert.Len(t, c.Filter("", false, checker), 5)

	var ids []uint32
	for _, d := range c.Filter("", true, checker) {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []uint32{11, 16, 46, 51}, ids)

	ids = nil
	for _, d := range c.Filter("dance", true, checker) {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []uint32{11, 46}, ids)

	ids = nil
	for _, d := range c.Filter("/wave", true, checker) {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []uint32{16}, ids)
}

func TestByCommand(t *testing.T) {
	c := testCatalog(t)

	d, ok := c.ByCommand("/WAVE")
	require.True(t, ok)
	assert.Equal(t, uint32(16), d.ID)

	_, ok = c.ByCommand("")
	assert.False(t, ok)
	_, ok = c.ByCommand("/salute")
	assert.False(t, ok)
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.All())
	assert.Nil(t, c.FindByName("wave"))
	_, ok := c.ByID(1)
	assert.False(t, ok)
	assert.False(t, c.IsUnlocked(1, fakeChecker{present: true}))
}
