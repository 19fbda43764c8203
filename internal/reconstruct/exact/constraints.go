package exact

import (
	"fmt"

	"github.com/negainoido/icfpc2025/pkg/automaton"
	"github.com/negainoido/icfpc2025/pkg/fdsolve"
)

// portIndex links a (room, door) pair to its flat port index, enforcing
// port = room*6 + door. It is the CSP-level counterpart of
// automaton.ToPort/FromPort, needed because the solver only natively
// understands single-variable table lookups (fdsolve.ElementVar); posting
// this constraint lets the rest of the model work with a single combined
// port variable per port instead of threading room/door pairs through
// every element constraint.
type portIndex struct {
	room, door, port *fdsolve.FDVariable
}

func newPortIndex(room, door, port *fdsolve.FDVariable) *portIndex {
	return &portIndex{room: room, door: door, port: port}
}

func (c *portIndex) Variables() []*fdsolve.FDVariable { return []*fdsolve.FDVariable{c.room, c.door, c.port} }
func (c *portIndex) Type() string                     { return "PortIndex" }
func (c *portIndex) String() string {
	return fmt.Sprintf("PortIndex(%s*6+%s=%s)", c.room.Name(), c.door.Name(), c.port.Name())
}

func (c *portIndex) Propagate(s *fdsolve.Solver, state *fdsolve.SolverState) (*fdsolve.SolverState, bool) {
	roomDom := s.GetDomain(state, c.room.ID())
	doorDom := s.GetDomain(state, c.door.ID())
	portDom := s.GetDomain(state, c.port.ID())
	cur := state

	allowedPorts := make([]int, 0, roomDom.Count()*doorDom.Count())
	roomDom.IterateValues(func(r int) {
		doorDom.IterateValues(func(d int) {
			allowedPorts = append(allowedPorts, automaton.ToPort(r, d))
		})
	})
	newPortDom := portDom.Intersect(fdsolve.DomainFromValues(portSize(portDom), allowedPorts))
	if newPortDom.Count() == 0 {
		return nil, false
	}
	if !newPortDom.Equal(portDom) {
		cur, _ = s.SetDomain(cur, c.port.ID(), newPortDom)
	}
	portDom = newPortDom

	allowedRooms := make([]int, 0, portDom.Count())
	allowedDoors := make([]int, 0, portDom.Count())
	portDom.IterateValues(func(p int) {
		r, d := automaton.FromPort(p)
		allowedRooms = append(allowedRooms, r)
		allowedDoors = append(allowedDoors, d)
	})

	newRoomDom := roomDom.Intersect(fdsolve.DomainFromValues(portSize(roomDom), allowedRooms))
	if newRoomDom.Count() == 0 {
		return nil, false
	}
	if !newRoomDom.Equal(roomDom) {
		cur, _ = s.SetDomain(cur, c.room.ID(), newRoomDom)
	}

	newDoorDom := doorDom.Intersect(fdsolve.DomainFromValues(portSize(doorDom), allowedDoors))
	if newDoorDom.Count() == 0 {
		return nil, false
	}
	if !newDoorDom.Equal(doorDom) {
		cur, _ = s.SetDomain(cur, c.door.ID(), newDoorDom)
	}

	return cur, true
}

func portSize(d fdsolve.Domain) int {
	if bs, ok := d.(*fdsolve.BitSetDomain); ok {
		return bs.Size()
	}
	return d.Max() + 1
}
