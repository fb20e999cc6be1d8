package convergence

import (
	"errors"
	"testing"

	"github.com/contactkeval/option-lattice/internal/lattice"
)

func TestStudyRowsAndErrorDecay(t *testing.T) {
	sum, err := Study(100, 100, 1, 0.05, 0.2, lattice.Call, 4, 64)
	if err != nil {
		t.Fatalf("Study failed: %v", err)
	}

	// 4, 8, 16, 32, 64
	if len(sum.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(sum.Rows))
	}
	if sum.Rows[0].Steps != 4 || sum.Rows[4].Steps != 64 {
		t.Fatalf("unexpected step sequence: first=%d last=%d", sum.Rows[0].Steps, sum.Rows[4].Steps)
	}

	for i := 1; i < len(sum.Rows); i++ {
		if sum.Rows[i].AbsError >= sum.Rows[i-1].AbsError {
			t.Fatalf("error at %d steps did not shrink: %f >= %f",
				sum.Rows[i].Steps, sum.Rows[i].AbsError, sum.Rows[i-1].AbsError)
		}
	}

	if sum.MaxAbsError != sum.Rows[0].AbsError {
		t.Fatalf("max error should come from the coarsest lattice: got %f", sum.MaxAbsError)
	}
	if sum.MeanAbsError <= 0 || sum.MeanAbsError > sum.MaxAbsError {
		t.Fatalf("mean error %f out of range (max %f)", sum.MeanAbsError, sum.MaxAbsError)
	}
	if sum.Limit <= 0 {
		t.Fatalf("expected positive Black-Scholes limit, got %f", sum.Limit)
	}
}

func TestStudyRejectsBadRangeAndInputs(t *testing.T) {
	if _, err := Study(100, 100, 1, 0.05, 0.2, lattice.Call, 0, 64); !errors.Is(err, lattice.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for minSteps=0, got %v", err)
	}
	if _, err := Study(100, 100, 1, 0.05, 0.2, lattice.Call, 64, 4); !errors.Is(err, lattice.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for inverted range, got %v", err)
	}
	if _, err := Study(100, 100, -1, 0.05, 0.2, lattice.Call, 4, 64); !errors.Is(err, lattice.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for negative maturity, got %v", err)
	}
	if _, err := Study(100, 100, 1, 0.05, 0.2, "swap", 4, 64); !errors.Is(err, lattice.ErrUnsupportedOptionType) {
		t.Fatalf("expected ErrUnsupportedOptionType, got %v", err)
	}
}
