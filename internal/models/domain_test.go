package models

import "testing"

func TestDeriveGameStatus(t *testing.T) {
	tests := []struct {
		name     string
		owned    bool
		progress int
		want     GameStatus
	}{
		{"not owned", false, 0, GameStatusLocked},
		{"not owned ignores progress", false, 50, GameStatusLocked},
		{"owned no progress", true, 0, GameStatusUnlocked},
		{"owned negative progress", true, -5, GameStatusUnlocked},
		{"in progress low", true, 1, GameStatusPlaying},
		{"in progress high", true, 99, GameStatusPlaying},
		{"completed", true, 100, GameStatusCompleted},
		{"completed over", true, 120, GameStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveGameStatus(tt.owned, tt.progress); got != tt.want {
				t.Errorf("DeriveGameStatus(%v, %d) = %s, want %s", tt.owned, tt.progress, got, tt.want)
			}
		})
	}
}
