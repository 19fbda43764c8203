package automaton

import "testing"

func TestToFromPortRoundTrip(t *testing.T) {
	for room := 0; room < 5; room++ {
		for door := 0; door < DoorsPerRoom; door++ {
			p := ToPort(room, door)
			gotRoom, gotDoor := FromPort(p)
			if gotRoom != room || gotDoor != door {
				t.Fatalf("ToPort/FromPort mismatch: (%d,%d) -> %d -> (%d,%d)", room, door, p, gotRoom, gotDoor)
			}
		}
	}
}

func TestInvolutionPairAndValidate(t *testing.T) {
	inv := NewInvolution(2)
	inv.Pair(ToPort(0, 0), ToPort(1, 0))
	if err := inv.Validate(); err != nil {
		t.Fatalf("expected valid involution, got %v", err)
	}
	if inv.Step(0, 0) != 1 {
		t.Fatalf("expected stepping through paired door to reach room 1")
	}
	if inv.Step(0, 1) != 0 {
		t.Fatalf("expected unpaired door to self-loop")
	}
}

func TestSwapEndpointsPreservesInvolution(t *testing.T) {
	inv := NewInvolution(4)
	a, b := ToPort(0, 0), ToPort(1, 0)
	c, d := ToPort(2, 0), ToPort(3, 0)
	inv.Pair(a, b)
	inv.Pair(c, d)
	if err := inv.SwapEndpoints(a, b, c, d, 0); err != nil {
		t.Fatalf("SwapEndpoints: %v", err)
	}
	if err := inv.Validate(); err != nil {
		t.Fatalf("expected valid involution after swap, got %v", err)
	}
	if inv[a] != c || inv[c] != a {
		t.Fatalf("expected a<->c after swap kind 0, got inv[a]=%d inv[c]=%d", inv[a], inv[c])
	}
}

func TestSwapEndpointsRejectsSelfLoop(t *testing.T) {
	inv := NewInvolution(4)
	a := ToPort(0, 0) // left as its default self-loop: inv[a] == a
	c, d := ToPort(2, 0), ToPort(3, 0)
	inv.Pair(c, d)
	if err := inv.SwapEndpoints(a, a, c, d, 0); err == nil {
		t.Fatal("expected an error swapping a self-loop, got nil")
	}
}

func TestParsePlanNativeEncoding(t *testing.T) {
	plan, err := ParsePlan("0325")
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if plan.MoveCount() != 4 {
		t.Fatalf("expected 4 moves, got %d", plan.MoveCount())
	}
	want := []int{0, 3, 2, 5}
	for i, s := range plan.Steps {
		if s.Door != want[i] {
			t.Fatalf("step %d: expected door %d, got %d", i, want[i], s.Door)
		}
	}
}

func TestParsePlanNormalisesOneToSix(t *testing.T) {
	native, err := ParsePlan("0325")
	if err != nil {
		t.Fatalf("ParsePlan native: %v", err)
	}
	shifted, err := ParsePlan("1436")
	if err != nil {
		t.Fatalf("ParsePlan shifted: %v", err)
	}
	if len(native.Steps) != len(shifted.Steps) {
		t.Fatalf("step count mismatch")
	}
	for i := range native.Steps {
		if native.Steps[i].Door != shifted.Steps[i].Door {
			t.Fatalf("step %d: native door %d != normalised door %d", i, native.Steps[i].Door, shifted.Steps[i].Door)
		}
	}
}

func TestParsePlanRejectsMixedEncoding(t *testing.T) {
	if _, err := ParsePlan("06"); err == nil {
		t.Fatalf("expected error for mixed 0-5/1-6 encoding")
	}
}

func TestParsePlanChalkToken(t *testing.T) {
	plan, err := ParsePlan("[3]0")
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.Steps))
	}
	if plan.Steps[0].Kind != Chalk || plan.Steps[0].Label != 3 {
		t.Fatalf("expected first step to be Chalk(3), got %+v", plan.Steps[0])
	}
	if plan.MoveCount() != 1 {
		t.Fatalf("expected 1 move, got %d", plan.MoveCount())
	}
}

func TestSimulateTwoRoomAlternator(t *testing.T) {
	inv := NewInvolution(2)
	inv.Pair(ToPort(0, 0), ToPort(1, 0))
	labels := []int{0, 1}
	plan, err := ParsePlan("0000")
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	obs, err := Simulate(labels, inv, 0, plan)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	want := Observation{0, 1, 0, 1, 0}
	if len(obs) != len(want) {
		t.Fatalf("expected %v, got %v", want, obs)
	}
	for i := range want {
		if obs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, obs)
		}
	}
}

func TestSimulateChalkWriteAffectsLaterReads(t *testing.T) {
	inv := NewInvolution(2)
	inv.Pair(ToPort(0, 0), ToPort(1, 0))
	labels := []int{0, 1}
	plan, err := ParsePlan("[3]0")
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	obs, err := Simulate(labels, inv, 0, plan)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	want := Observation{0, 3, 1}
	for i := range want {
		if obs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, obs)
		}
	}
	if labels[0] != 3 {
		t.Fatalf("expected global chalk write to persist, labels[0]=%d", labels[0])
	}
}

func TestModelRoundTripThroughInvolution(t *testing.T) {
	inv := NewInvolution(3)
	inv.Pair(ToPort(0, 0), ToPort(1, 0))
	inv.Pair(ToPort(1, 1), ToPort(2, 2))
	labels := []int{0, 1, 2}

	m, err := NewModel(labels, inv, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	got, err := m.Involution()
	if err != nil {
		t.Fatalf("Involution: %v", err)
	}
	for p := range inv {
		if got[p] != inv[p] {
			t.Fatalf("port %d: expected partner %d, got %d", p, inv[p], got[p])
		}
	}
}

func TestValidateLengthLaw(t *testing.T) {
	plan, _ := ParsePlan("0325")
	if err := ValidateLength(Observation{0, 1, 2, 3, 0}, plan); err != nil {
		t.Fatalf("expected valid length, got %v", err)
	}
	if err := ValidateLength(Observation{0, 1}, plan); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}
