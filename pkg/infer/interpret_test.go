package infer

import "testing"

func TestSoftmaxEqualScores(t *testing.T) {
	out := make([]int16, 2)
	Softmax([]int32{100, 100}, out)
	if out[0] != out[1] {
		t.Fatalf("equal inputs gave %v", out)
	}
	if out[0] != 16384 { // exactly 0.5 in q15
		t.Fatalf("probability = %d, want 16384", out[0])
	}
}

func TestSoftmaxSumsToUnit(t *testing.T) {
	vectors := [][]int32{
		{0, 0},
		{1 << 14, -(1 << 14)},
		{5 << 14, 3 << 14, 1 << 14},
		{100 << 14, 0, 0, 0},
		{-(2 << 14), -(2 << 14), 4 << 14},
	}
	for _, raw := range vectors {
		out := make([]int16, len(raw))
		Softmax(raw, out)
		var sum int32
		for _, v := range out {
			if v < 0 {
				t.Fatalf("negative probability %d for %v", v, raw)
			}
			sum += int32(v)
		}
		// Unit value within rounding slack of the power-of-two scheme.
		if sum < Q15Unit-len32(raw) || sum > Q15Unit {
			t.Fatalf("sum(%v) = %d, want ~%d", raw, sum, Q15Unit)
		}
	}
}

func len32(s []int32) int32 { return int32(len(s)) }

func TestSoftmaxDominantClassSaturates(t *testing.T) {
	out := make([]int16, 2)
	Softmax([]int32{100 << 14, -(100 << 14)}, out)
	if out[0] != 32767 {
		t.Fatalf("dominant probability = %d, want 32767", out[0])
	}
	if out[1] != 0 {
		t.Fatalf("losing probability = %d, want 0", out[1])
	}
}

func TestInterpretTieBreaksLowestIndex(t *testing.T) {
	o := Outcome{Raw: []int32{100, 100}}
	Interpret(&o)
	if o.Class != 0 {
		t.Fatalf("class = %d, want 0 (lowest-index tie break)", o.Class)
	}

	o = Outcome{Raw: []int32{3 << 14, 5 << 14, 5 << 14, 1 << 14}}
	Interpret(&o)
	if o.Class != 1 {
		t.Fatalf("class = %d, want 1", o.Class)
	}
}

func TestConfidenceMonotonicInWinner(t *testing.T) {
	last := -1
	for v := int32(0); v <= 8<<14; v += 1 << 12 {
		o := Outcome{Raw: []int32{v, 0}}
		Interpret(&o)
		if o.Class == 0 && o.Confidence < last {
			t.Fatalf("confidence dropped to %d%% at raw %d", o.Confidence, v)
		}
		if o.Class == 0 {
			last = o.Confidence
		}
	}
}

func TestPercentFloors(t *testing.T) {
	tests := []struct {
		v    int16
		want int
	}{
		{0, 0},
		{16384, 50},
		{32767, 99}, // never reports 100 from a q15 value
		{327, 0},    // 0.99..% floors to 0
		{328, 1},
	}
	for _, tc := range tests {
		if got := Percent(tc.v); got != tc.want {
			t.Errorf("Percent(%d) = %d, want %d", tc.v, got, tc.want)
		}
	}
}

func TestPerMilleRounds(t *testing.T) {
	// 16384 -> exactly 500.0 per-mille -> 50.0%
	d, tens := PerMille(16384)
	if d != 50 || tens != 0 {
		t.Fatalf("PerMille(16384) = %d.%d, want 50.0", d, tens)
	}
	// 32767 -> (32767000+16384)>>15 = 1000 -> 100.0%, one unit above
	// the floored Percent path. Both behaviors are pinned.
	d, tens = PerMille(32767)
	if d != 100 || tens != 0 {
		t.Fatalf("PerMille(32767) = %d.%d, want 100.0", d, tens)
	}
	if Percent(32767) != 99 {
		t.Fatal("Percent(32767) changed; the two rounding paths must stay distinct")
	}
}
