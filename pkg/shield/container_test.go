package shield

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ContainerSuite struct {
	suite.Suite
}

func TestContainerSuite(t *testing.T) {
	suite.Run(t, new(ContainerSuite))
}

func (s *ContainerSuite) TestSetThenGet() {
	c := NewContainer("coins", 100)

	v, ok := c.Get()
	s.True(ok)
	s.Equal(100, v)

	c.Set(250)
	v, ok = c.Get()
	s.True(ok)
	s.Equal(250, v)
	s.True(c.Verify())
}

func (s *ContainerSuite) TestExternalMutationDetected() {
	c := NewContainer("coins", 100)

	c.tamper(999999)

	s.False(c.Verify())
	v, ok := c.Get()
	s.False(ok)
	s.Equal(999999, v, "tampered value is still readable for inspection")
}

func (s *ContainerSuite) TestSetClearsTamperedState() {
	c := NewContainer("coins", 100)
	c.tamper(999999)
	s.False(c.Verify())

	c.Set(130)
	s.True(c.Verify())
	v, ok := c.Get()
	s.True(ok)
	s.Equal(130, v)
}

func (s *ContainerSuite) TestValidLatchesUntilOverwrite() {
	c := NewContainer("coins", 100)
	s.True(c.Valid())

	c.tamper(999999)
	_, ok := c.Get()
	s.False(ok)
	s.False(c.Valid())

	// Putting the original bytes back fools Verify but not the latch
	c.tamper(100)
	s.True(c.Verify())
	s.False(c.Valid())

	c.Set(100)
	s.True(c.Valid())

	c.tamper(5)
	c.Get()
	s.False(c.Valid())
	c.Reset()
	s.True(c.Valid())
}

func (s *ContainerSuite) TestResetRestoresOriginal() {
	c := NewContainer("health", 100.0)
	c.Set(42.0)
	c.tamper(1e9)

	c.Reset()

	s.True(c.Verify())
	v, ok := c.Get()
	s.True(ok)
	s.Equal(100.0, v)
}

func (s *ContainerSuite) TestSetClonesValue() {
	loadout := map[string]int{"sword": 1}
	c := NewContainer("loadout", loadout)

	// Mutating the caller's map must not reach the container
	loadout["sword"] = 9999

	v, ok := c.Get()
	s.True(ok)
	s.Equal(1, v["sword"])
	s.True(c.Verify())
}

func (s *ContainerSuite) TestChecksumTracksValue() {
	c := NewContainer("xp", 0)
	initial := c.Checksum()

	c.Set(500)
	s.NotEqual(initial, c.Checksum())

	c.Set(0)
	s.Equal(initial, c.Checksum())
}

func (s *ContainerSuite) TestStringValues() {
	c := NewContainer("rank", "bronze")
	c.Set("gold")

	v, ok := c.Get()
	s.True(ok)
	s.Equal("gold", v)

	c.tamper("diamond")
	s.False(c.Verify())
}
