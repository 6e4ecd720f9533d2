package s2_signals

import "math"

// RollingWindow 고정 길이 슬라이딩 윈도우 평균/표본표준편차
// Welford 방식으로 값 추가·제거 시 O(1) 갱신
type RollingWindow struct {
	size int
	buf  []float64
	head int
	n    int
	mean float64
	m2   float64
}

// NewRollingWindow creates a window holding at most size values.
func NewRollingWindow(size int) *RollingWindow {
	if size < 1 {
		size = 1
	}
	return &RollingWindow{size: size, buf: make([]float64, size)}
}

// Push adds x, evicting the oldest value once the window is full.
func (w *RollingWindow) Push(x float64) {
	if w.n < w.size {
		w.buf[(w.head+w.n)%w.size] = x
		w.n++
		delta := x - w.mean
		w.mean += delta / float64(w.n)
		w.m2 += delta * (x - w.mean)
		return
	}

	old := w.buf[w.head]
	w.buf[w.head] = x
	w.head = (w.head + 1) % w.size

	oldMean := w.mean
	w.mean += (x - old) / float64(w.size)
	w.m2 += (x - old) * (x - w.mean + old - oldMean)
	if w.m2 < 0 {
		w.m2 = 0
	}
}

// Full reports whether the window holds size values.
func (w *RollingWindow) Full() bool { return w.n == w.size }

// Len returns the number of values currently held.
func (w *RollingWindow) Len() int { return w.n }

// Mean returns the mean of the held values (0 when empty).
func (w *RollingWindow) Mean() float64 { return w.mean }

// StdDev returns the sample (n-1) standard deviation; 0 with fewer than two values.
func (w *RollingWindow) StdDev() float64 {
	if w.n < 2 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.n-1))
}

// TrailingMean returns the mean of the last window values of xs.
// 윈도우 밖 값은 누적기에 넣지 않음 (제거 시 반올림 잔차 방지)
func TrailingMean(xs []float64, window int) float64 {
	return trailing(xs, window).Mean()
}

// TrailingStdDev returns the sample standard deviation of the last window values of xs.
func TrailingStdDev(xs []float64, window int) float64 {
	return trailing(xs, window).StdDev()
}

func trailing(xs []float64, window int) *RollingWindow {
	w := NewRollingWindow(window)
	if len(xs) > w.size {
		xs = xs[len(xs)-w.size:]
	}
	for _, x := range xs {
		w.Push(x)
	}
	return w
}
