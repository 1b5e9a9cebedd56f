// Package infer turns raw accelerator output vectors into a
// classification with a confidence score, all in fixed point.
package infer

// Outcome is the interpreted result of one accelerator run. Created
// empty, filled once per run, consumed immediately; never retained.
type Outcome struct {
	Raw        []int32 // raw q17.14 score per class
	Softmax    []int16 // q15 probability per class
	Class      int     // arg-max index, lowest index wins ties
	Confidence int     // winning probability as integer percent 0-100
	TimeUS     uint32  // inference time in microseconds
}

// Interpret fills the probability vector, predicted class and percent
// confidence from the raw scores already present in o.
//
// The arg-max keeps the first maximum: only a strictly greater value
// replaces the leader, so ties break toward the lowest index.
func Interpret(o *Outcome) {
	n := len(o.Raw)
	if cap(o.Softmax) < n {
		o.Softmax = make([]int16, n)
	}
	o.Softmax = o.Softmax[:n]
	Softmax(o.Raw, o.Softmax)

	if n == 0 {
		o.Class, o.Confidence = 0, 0
		return
	}
	maxVal := o.Softmax[0]
	maxIdx := 0
	for i := 1; i < n; i++ {
		if o.Softmax[i] > maxVal {
			maxVal = o.Softmax[i]
			maxIdx = i
		}
	}
	o.Class = maxIdx
	o.Confidence = Percent(maxVal)
}

// Percent converts a q15 probability to an integer percentage by
// flooring: (v * 100) >> 15.
func Percent(v int16) int {
	return int(int32(v) * 100 >> 15)
}

// PerMille converts a q15 probability to tenths of a percent with
// round-to-nearest: (1000*v + 0x4000) >> 15. This display-only path
// may disagree with Percent by one unit; both formulas are part of
// the external contract and are kept separate on purpose.
func PerMille(v int16) (digits, tenths int) {
	d := (1000*int32(v) + 0x4000) >> 15
	return int(d / 10), int(d % 10)
}
