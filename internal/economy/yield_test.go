package economy

import "testing"

func TestYieldAddAndSubSaturates(t *testing.T) {
	y := Yield{Food: 3, Production: 1}
	y.Add(Yield{Food: 2, Gold: 4})
	if y[Food] != 5 || y[Production] != 1 || y[Gold] != 4 {
		t.Errorf("after add: got %v", y)
	}

	y.Sub(Yield{Food: 10, Gold: 1})
	if y[Food] != 0 {
		t.Errorf("sub should saturate at zero, got food=%d", y[Food])
	}
	if y[Gold] != 3 {
		t.Errorf("sub gold: got %d, want 3", y[Gold])
	}
}

func TestYieldMinAndDiv(t *testing.T) {
	y := Yield{Food: 7, Production: 4}
	m := y.Min(Yield{Food: 3, Production: 9})
	if m[Food] != 3 || m[Production] != 4 {
		t.Errorf("min: got %v", m)
	}

	d := y.Div(3)
	if d[Food] != 2 || d[Production] != 1 {
		t.Errorf("div: got %v", d)
	}
	if z := y.Div(0); len(z) != 0 {
		t.Errorf("div by zero should be empty, got %v", z)
	}
}

func TestYieldAtLeast(t *testing.T) {
	y := Yield{Food: 5, Production: 2}
	if !y.AtLeast(Yield{Food: 5}) {
		t.Error("5 food should cover 5 food")
	}
	if y.AtLeast(Yield{Food: 5, Science: 1}) {
		t.Error("missing science should fail")
	}
}

func TestStoreIncrReportsOverflow(t *testing.T) {
	s := NewStore(Yield{Food: 10})
	over := s.Incr(Yield{Food: 7})
	if len(over) != 0 && over[Food] != 0 {
		t.Errorf("no overflow expected, got %v", over)
	}
	over = s.Incr(Yield{Food: 7})
	if over[Food] != 4 {
		t.Errorf("overflow: got %v, want food=4", over)
	}
	if s.Value[Food] != 10 {
		t.Errorf("value clamped: got %d, want 10", s.Value[Food])
	}
}

func TestStoreUncappedResourceFlowsFreely(t *testing.T) {
	s := NewStore(Yield{Food: 5})
	over := s.Incr(Yield{Gold: 100})
	if over[Gold] != 0 {
		t.Errorf("gold has no cap, overflow should be zero: %v", over)
	}
	if s.Value[Gold] != 100 {
		t.Errorf("gold stored: got %d", s.Value[Gold])
	}
}

func TestStoreFulfillsAfterDecr(t *testing.T) {
	s := NewStore(Yield{Food: 10, Production: 10})
	s.Incr(Yield{Food: 6, Production: 3})
	if !s.Fulfills(Yield{Food: 5}) {
		t.Error("store should cover 5 food")
	}
	s.Decr(Yield{Food: 5})
	if s.Value[Food] != 1 {
		t.Errorf("after decr: got food=%d, want 1", s.Value[Food])
	}
	if s.Fulfills(Yield{Food: 5}) {
		t.Error("store should no longer cover 5 food")
	}
}
