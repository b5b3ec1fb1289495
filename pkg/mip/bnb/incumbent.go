package bnb

import (
	"math"
	"sync"
)

type incumbent struct {
	mu     sync.Mutex
	values []float64
	obj    float64
	found  bool
}

func newIncumbent() *incumbent {
	return &incumbent{obj: math.Inf(1)}
}

// improvable reports whether a subtree with lower bound bound can still beat the incumbent.
func (inc *incumbent) improvable(bound float64) bool {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	return !inc.found || bound < inc.obj-eps
}

func (inc *incumbent) offer(values []float64, obj float64) bool {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	if inc.found && obj >= inc.obj-eps {
		return false
	}
	inc.values = append(inc.values[:0:0], values...)
	inc.obj = obj
	inc.found = true
	return true
}

func (inc *incumbent) get() ([]float64, float64, bool) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	return inc.values, inc.obj, inc.found
}
