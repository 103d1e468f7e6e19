package store

import (
	"errors"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrAlreadyClaimed,
		ErrNotUnlocked,
		ErrConcurrentModification,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("Sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}
