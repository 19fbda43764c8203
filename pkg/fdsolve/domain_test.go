package fdsolve

import "testing"

func TestFullDomainContainsEveryValue(t *testing.T) {
	d := FullDomain(5)
	if d.Count() != 5 {
		t.Fatalf("expected count 5, got %d", d.Count())
	}
	for v := 0; v < 5; v++ {
		if !d.Has(v) {
			t.Errorf("expected domain to contain %d", v)
		}
	}
	if d.Has(5) {
		t.Errorf("domain should not contain out-of-range value 5")
	}
}

func TestRemoveIsImmutable(t *testing.T) {
	d := FullDomain(3)
	d2 := d.Remove(1)
	if !d.Has(1) {
		t.Fatalf("original domain was mutated by Remove")
	}
	if d2.Has(1) {
		t.Fatalf("expected 1 removed from derived domain")
	}
	if d2.Count() != 2 {
		t.Fatalf("expected count 2, got %d", d2.Count())
	}
}

func TestIntersect(t *testing.T) {
	cases := []struct {
		name     string
		a, b     []int
		size     int
		expected []int
	}{
		{"overlap", []int{0, 1, 2}, []int{1, 2, 3}, 4, []int{1, 2}},
		{"disjoint", []int{0, 1}, []int{2, 3}, 4, nil},
		{"identical", []int{0, 1, 2}, []int{0, 1, 2}, 3, []int{0, 1, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := domainFromValues(tc.size, tc.a)
			b := domainFromValues(tc.size, tc.b)
			got := a.Intersect(b)
			var vals []int
			got.IterateValues(func(v int) { vals = append(vals, v) })
			if len(vals) != len(tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, vals)
			}
			for i, v := range vals {
				if v != tc.expected[i] {
					t.Fatalf("expected %v, got %v", tc.expected, vals)
				}
			}
		})
	}
}

func TestSingletonDomain(t *testing.T) {
	d := SingletonDomain(10, 7)
	if !d.IsSingleton() {
		t.Fatalf("expected singleton")
	}
	if d.SingletonValue() != 7 {
		t.Fatalf("expected 7, got %d", d.SingletonValue())
	}
	if d.Min() != 7 || d.Max() != 7 {
		t.Fatalf("expected min=max=7, got min=%d max=%d", d.Min(), d.Max())
	}
}

func TestEmptyDomain(t *testing.T) {
	d := EmptyDomain(4)
	if d.Count() != 0 {
		t.Fatalf("expected empty domain, got count %d", d.Count())
	}
	if d.Min() != -1 || d.Max() != -1 {
		t.Fatalf("expected Min/Max -1 on empty domain, got %d/%d", d.Min(), d.Max())
	}
}

func TestWordsForCrossesWordBoundary(t *testing.T) {
	d := FullDomain(130)
	if d.Count() != 130 {
		t.Fatalf("expected 130 values, got %d", d.Count())
	}
	if !d.Has(129) {
		t.Fatalf("expected domain to contain value 129 across a word boundary")
	}
}
