package automaton

import "fmt"

// PortRef names a port by room and door, the shape used in the output
// file's connections array (§6.2).
type PortRef struct {
	Room int `json:"room"`
	Door int `json:"door"`
}

// Connection is one undirected edge, emitted once per pair (self-loops
// included) so that every port appears exactly once across the array.
type Connection struct {
	From PortRef `json:"from"`
	To   PortRef `json:"to"`
}

// Model is a concrete candidate automaton: room labels, the starting room,
// and the port pairing expressed as connections rather than a raw μ vector.
type Model struct {
	Rooms        []int        `json:"rooms"`
	StartingRoom int          `json:"startingRoom"`
	Connections  []Connection `json:"connections"`
}

// NewModel builds the output Model from room labels, a validated
// involution, and the starting room. Each pair {p, μ[p]} is emitted
// exactly once, choosing the representative with p <= μ[p].
func NewModel(labels []int, inv Involution, startingRoom int) (Model, error) {
	if err := inv.Validate(); err != nil {
		return Model{}, err
	}
	if len(labels)*DoorsPerRoom != len(inv) {
		return Model{}, fmt.Errorf("automaton: %d labels does not match involution over %d ports", len(labels), len(inv))
	}
	var conns []Connection
	for p, partner := range inv {
		if p > partner {
			continue
		}
		fromRoom, fromDoor := FromPort(p)
		toRoom, toDoor := FromPort(partner)
		conns = append(conns, Connection{
			From: PortRef{Room: fromRoom, Door: fromDoor},
			To:   PortRef{Room: toRoom, Door: toDoor},
		})
	}
	return Model{Rooms: append([]int(nil), labels...), StartingRoom: startingRoom, Connections: conns}, nil
}

// Involution reconstructs the μ vector implied by m.Connections, validating
// that every port appears exactly once (as required by §6.2) and that all
// room/door indices are in range.
func (m Model) Involution() (Involution, error) {
	n := len(m.Rooms)
	inv := make(Involution, n*DoorsPerRoom)
	seen := make([]bool, len(inv))
	for i := range inv {
		inv[i] = -1
	}
	for _, c := range m.Connections {
		if err := validPortRef(c.From, n); err != nil {
			return nil, err
		}
		if err := validPortRef(c.To, n); err != nil {
			return nil, err
		}
		a := ToPort(c.From.Room, c.From.Door)
		b := ToPort(c.To.Room, c.To.Door)
		if seen[a] || (a != b && seen[b]) {
			return nil, fmt.Errorf("automaton: port %d appears in more than one connection", a)
		}
		inv[a] = b
		inv[b] = a
		seen[a] = true
		seen[b] = true
	}
	for p, partner := range inv {
		if partner == -1 {
			return nil, fmt.Errorf("automaton: port %d is missing from connections", p)
		}
	}
	return inv, nil
}

func validPortRef(r PortRef, rooms int) error {
	if r.Room < 0 || r.Room >= rooms {
		return fmt.Errorf("automaton: room index %d out of range [0,%d)", r.Room, rooms)
	}
	if r.Door < 0 || r.Door >= DoorsPerRoom {
		return fmt.Errorf("automaton: door index %d out of range [0,%d)", r.Door, DoorsPerRoom)
	}
	return nil
}

// Validate checks the universal invariants from §8: label range, room
// count, and door range, independent of the involution round-trip above.
func (m Model) Validate() error {
	for q, lbl := range m.Rooms {
		if lbl < 0 || lbl > 3 {
			return fmt.Errorf("automaton: room %d has out-of-range label %d", q, lbl)
		}
	}
	if m.StartingRoom < 0 || m.StartingRoom >= len(m.Rooms) {
		return fmt.Errorf("automaton: startingRoom %d out of range [0,%d)", m.StartingRoom, len(m.Rooms))
	}
	_, err := m.Involution()
	return err
}
