package htwheel

import (
	"math/rand"
	"testing"
)

// 3 levels of 10 slots: delays up to 999 ticks
func newTstWheel(t *testing.T) *HTWheel[string] {
	w, err := New[string](3, 4, 10)
	if err != nil {
		t.Fatalf("New failed: %s\n", err)
	}
	return w
}

func TestNewValidation(t *testing.T) {
	if _, err := New[int](0, 4, 10); err != ErrInvalidLevels {
		t.Errorf("0 levels: expected ErrInvalidLevels, got %v\n", err)
	}
	if _, err := New[int](3, 4, 1); err != ErrInvalidSlotCount {
		t.Errorf("1 slot per level: expected ErrInvalidSlotCount, got %v\n",
			err)
	}
	if _, err := New[int](3, -1, 10); err != ErrInvalidCapacityHint {
		t.Errorf("negative hint: expected ErrInvalidCapacityHint, got %v\n",
			err)
	}
	if _, err := New[int](64, 0, 2); err != ErrCapacityOverflow {
		t.Errorf("2^64 capacity: expected ErrCapacityOverflow, got %v\n",
			err)
	}
	w, err := New[int](3, 0, 10)
	if err != nil {
		t.Fatalf("New failed: %s\n", err)
	}
	if w.Levels() != 3 || w.MaxDelayTicks() != 1000 {
		t.Errorf("bad wheel: %d levels, max delay %d\n",
			w.Levels(), w.MaxDelayTicks())
	}
	// span/capacity chain: rings[k].span == rings[k-1].capacity
	for k := 1; k < len(w.rings); k++ {
		if w.rings[k].span != w.rings[k-1].capacity {
			t.Errorf("level %d span %d != level %d capacity %d\n",
				k, w.rings[k].span, k-1, w.rings[k-1].capacity)
		}
	}
}

func TestScheduleAddressing(t *testing.T) {
	w := newTstWheel(t)
	tests := []struct {
		delay uint64
		level int
		slot  int
	}{
		{0, 0, 1}, // 0 is normalized to 1
		{1, 0, 1},
		{9, 0, 9},
		{10, 1, 1},
		{11, 1, 1},
		{99, 1, 9},
		{100, 2, 1},
		{101, 2, 1},
		{999, 2, 9},
	}
	for _, tc := range tests {
		level, slot, err := w.Schedule(tc.delay, "x")
		if err != nil {
			t.Errorf("Schedule(%d) failed: %s\n", tc.delay, err)
			continue
		}
		if level != tc.level || slot != tc.slot {
			t.Errorf("Schedule(%d) => level %d slot %d,"+
				" expected level %d slot %d\n",
				tc.delay, level, slot, tc.level, tc.slot)
		}
	}
	if _, _, err := w.Schedule(1000, "x"); err != ErrDelayTooLarge {
		t.Errorf("Schedule(1000): expected ErrDelayTooLarge, got %v\n", err)
	}
}

func TestBoundaryRejection(t *testing.T) {
	w := newTstWheel(t)
	max := w.MaxDelayTicks()
	if _, _, err := w.Schedule(max, "over"); err != ErrDelayTooLarge {
		t.Fatalf("Schedule(%d): expected ErrDelayTooLarge, got %v\n",
			max, err)
	}
	level, _, err := w.Schedule(max-1, "edge")
	if err != nil {
		t.Fatalf("Schedule(%d) failed: %s\n", max-1, err)
	}
	if level != w.Levels()-1 {
		t.Errorf("Schedule(%d) => level %d, expected topmost %d\n",
			max-1, level, w.Levels()-1)
	}
	if due := w.TickN(int(max) - 2); len(due) != 0 {
		t.Fatalf("timer fired early: %v\n", due)
	}
	if due := w.Tick(); len(due) != 1 || due[0] != "edge" {
		t.Errorf("tick %d: expected [edge], got %v\n", max-1, due)
	}
}

func TestRejectNoSideEffect(t *testing.T) {
	w := newTstWheel(t)
	if _, _, err := w.Schedule(5000, "lost"); err != ErrDelayTooLarge {
		t.Fatalf("expected ErrDelayTooLarge, got %v\n", err)
	}
	if due := w.TickN(2000); len(due) != 0 {
		t.Errorf("rejected schedule left entries behind: %v\n", due)
	}
}

func TestExactDelayFiring(t *testing.T) {
	// single level, 10 slots: delay 9 fires on the 9th tick, not the 8th
	w1, err := New[string](1, 0, 10)
	if err != nil {
		t.Fatalf("New failed: %s\n", err)
	}
	if _, _, err = w1.Schedule(9, "a"); err != nil {
		t.Fatalf("Schedule failed: %s\n", err)
	}
	if due := w1.TickN(8); len(due) != 0 {
		t.Fatalf("fired before the 9th tick: %v\n", due)
	}
	if due := w1.Tick(); len(due) != 1 || due[0] != "a" {
		t.Fatalf("9th tick: expected [a], got %v\n", due)
	}

	// every schedulable delay on a 3 level wheel, cascades included
	for d := uint64(1); d < 1000; d++ {
		w := newTstWheel(t)
		if _, _, err := w.Schedule(d, "x"); err != nil {
			t.Fatalf("Schedule(%d) failed: %s\n", d, err)
		}
		if due := w.TickN(int(d) - 1); len(due) != 0 {
			t.Fatalf("delay %d fired early: %v\n", d, due)
		}
		if due := w.Tick(); len(due) != 1 || due[0] != "x" {
			t.Fatalf("delay %d: expected [x] on tick %d, got %v\n",
				d, d, due)
		}
	}
}

func TestZeroDelayNormalization(t *testing.T) {
	w := newTstWheel(t)
	if _, _, err := w.Schedule(0, "zero"); err != nil {
		t.Fatalf("Schedule(0) failed: %s\n", err)
	}
	due := w.Tick()
	if len(due) != 1 || due[0] != "zero" {
		t.Errorf("0 delay did not fire on the next tick: %v\n", due)
	}
}

func TestSameSlotBatching(t *testing.T) {
	w := newTstWheel(t)
	w.Schedule(5, "a")
	w.Schedule(5, "b")
	if due := w.TickN(4); len(due) != 0 {
		t.Fatalf("fired early: %v\n", due)
	}
	due := w.Tick()
	if len(due) != 2 || due[0] != "a" || due[1] != "b" {
		t.Errorf("expected [a b] in schedule order, got %v\n", due)
	}

	// same thing through a cascade
	w2 := newTstWheel(t)
	w2.Schedule(150, "a")
	w2.Schedule(150, "b")
	if due := w2.TickN(149); len(due) != 0 {
		t.Fatalf("fired early: %v\n", due)
	}
	due = w2.Tick()
	if len(due) != 2 || due[0] != "a" || due[1] != "b" {
		t.Errorf("cascade: expected [a b] in schedule order, got %v\n", due)
	}
}

func TestCascadeExact(t *testing.T) {
	// a coarse placement must fire at exactly its delay when ticked one
	// step at a time
	w := newTstWheel(t)
	level, slot, err := w.Schedule(100, "x")
	if err != nil {
		t.Fatalf("Schedule(100) failed: %s\n", err)
	}
	if level != 2 || slot != 1 {
		t.Fatalf("Schedule(100) => level %d slot %d, expected 2/1\n",
			level, slot)
	}
	for tick := 1; tick < 100; tick++ {
		if due := w.Tick(); len(due) != 0 {
			t.Fatalf("fired on tick %d instead of 100: %v\n", tick, due)
		}
	}
	if due := w.Tick(); len(due) != 1 || due[0] != "x" {
		t.Errorf("tick 100: expected [x], got %v\n", due)
	}
}

func TestTickNEquivalence(t *testing.T) {
	delays := []uint64{0, 1, 5, 5, 9, 10, 42, 99, 100, 100, 250, 999}
	wa := newTstWheel(t)
	wb := newTstWheel(t)
	for i, d := range delays {
		p := string(rune('a' + i))
		wa.Schedule(d, p)
		wb.Schedule(d, p)
	}
	batch := wa.TickN(1000)
	var single []string
	for i := 0; i < 1000; i++ {
		single = append(single, wb.Tick()...)
	}
	if len(batch) != len(delays) || len(single) != len(delays) {
		t.Fatalf("lost timers: batch %d single %d, expected %d\n",
			len(batch), len(single), len(delays))
	}
	for i := range batch {
		if batch[i] != single[i] {
			t.Errorf("order diverged at %d: batch %q single %q\n",
				i, batch[i], single[i])
		}
	}
}

func TestTickCascadeOrdering(t *testing.T) {
	// within one step, ring 0's natural due entries precede entries a
	// same-step cascade brings down to 0 residual
	w, err := New[string](2, 0, 10)
	if err != nil {
		t.Fatalf("New failed: %s\n", err)
	}
	w.Schedule(10, "cascaded") // level 1, drained when ring 0 wraps
	if due := w.TickN(5); len(due) != 0 {
		t.Fatalf("fired early: %v\n", due)
	}
	// due on tick 10 via ring 0 (placed at tick 5, delay 5 => slot 0)
	if _, slot, err := w.Schedule(5, "natural"); err != nil || slot != 0 {
		t.Fatalf("Schedule(5) => slot %d err %v, expected slot 0\n",
			slot, err)
	}
	if due := w.TickN(4); len(due) != 0 {
		t.Fatalf("fired early: %v\n", due)
	}
	due := w.Tick()
	if len(due) != 2 || due[0] != "natural" || due[1] != "cascaded" {
		t.Errorf("tick 10: expected [natural cascaded], got %v\n", due)
	}
}

func TestRandomizedExpiry(t *testing.T) {
	// random delays, all must fire exactly once at their expected tick
	const timers = 500
	w, err := New[int](3, 2, 10)
	if err != nil {
		t.Fatalf("New failed: %s\n", err)
	}
	expected := make([]uint64, timers) // payload => expected fire tick
	for i := 0; i < timers; i++ {
		d := uint64(rand.Int63n(1000))
		exp := d
		if exp == 0 {
			exp = 1
		}
		expected[i] = exp
		if _, _, err := w.Schedule(d, i); err != nil {
			t.Fatalf("Schedule(%d) failed: %s (seed %d)\n", d, err, seed)
		}
	}
	fired := 0
	for tick := uint64(1); tick < 1000; tick++ {
		for _, p := range w.Tick() {
			if expected[p] != tick {
				t.Errorf("timer %d fired on tick %d, expected %d"+
					" (seed %d)\n",
					p, tick, expected[p], seed)
			}
			fired++
		}
	}
	if fired != timers {
		t.Errorf("%d of %d timers fired (seed %d)\n", fired, timers, seed)
	}
}
