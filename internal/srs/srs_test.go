package srs

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func mustSchedule(t *testing.T, q Quality, st State) Result {
	t.Helper()
	res, err := Schedule(q, st, testNow)
	if err != nil {
		t.Fatalf("Schedule(%v, %+v): %v", q, st, err)
	}
	return res
}

func TestScheduleTransitions(t *testing.T) {
	cases := []struct {
		name         string
		quality      Quality
		in           State
		wantInterval int
		wantEase     float64
		wantLapses   int
	}{
		{"again resets interval", Again, State{EaseFactor: 2.5, IntervalDays: 30}, 1, 2.3, 1},
		{"again floors ease", Again, State{EaseFactor: 1.35, IntervalDays: 2}, 1, 1.3, 1},
		{"again accumulates lapses", Again, State{EaseFactor: 2.0, IntervalDays: 1, Lapses: 4}, 1, 1.8, 5},
		{"hard grows slowly", Hard, State{EaseFactor: 2.5, IntervalDays: 5}, 6, 2.35, 0},
		{"hard never shrinks below one day", Hard, State{EaseFactor: 1.3, IntervalDays: 1}, 1, 1.3, 0},
		{"good graduates day one to three", Good, State{EaseFactor: 2.5, IntervalDays: 1}, 3, 2.5, 0},
		{"good graduates short interval to seven", Good, State{EaseFactor: 2.5, IntervalDays: 3}, 7, 2.5, 0},
		{"good multiplies matured interval", Good, State{EaseFactor: 2.5, IntervalDays: 10}, 25, 2.5, 0},
		{"easy graduates day one to four", Easy, State{EaseFactor: 2.5, IntervalDays: 1}, 4, 2.65, 0},
		{"easy floors early interval at ten", Easy, State{EaseFactor: 1.3, IntervalDays: 2}, 10, 1.45, 0},
		{"easy multiplies interval", Easy, State{EaseFactor: 2.5, IntervalDays: 5}, 16, 2.65, 0},
		{"easy caps ease factor", Easy, State{EaseFactor: 2.95, IntervalDays: 20}, 77, 3.0, 0},
		{"interval capped at one year", Good, State{EaseFactor: 3.0, IntervalDays: 300}, 365, 3.0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := mustSchedule(t, tc.quality, tc.in)
			if res.IntervalDays != tc.wantInterval {
				t.Errorf("interval: want=%d got=%d", tc.wantInterval, res.IntervalDays)
			}
			if diff := res.EaseFactor - tc.wantEase; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("ease: want=%v got=%v", tc.wantEase, res.EaseFactor)
			}
			if res.Lapses != tc.wantLapses {
				t.Errorf("lapses: want=%d got=%d", tc.wantLapses, res.Lapses)
			}
			wantDue := testNow.AddDate(0, 0, res.IntervalDays)
			if !res.NextReviewAt.Equal(wantDue) {
				t.Errorf("next review: want=%v got=%v", wantDue, res.NextReviewAt)
			}
		})
	}
}

func TestScheduleBounds(t *testing.T) {
	// Walk every quality over a spread of states; the clamps must hold
	// everywhere.
	states := []State{
		{EaseFactor: 1.3, IntervalDays: 1},
		{EaseFactor: 1.3, IntervalDays: 365},
		{EaseFactor: 3.0, IntervalDays: 1},
		{EaseFactor: 3.0, IntervalDays: 364},
		{EaseFactor: 2.5, IntervalDays: 5, Lapses: 3},
	}
	for _, st := range states {
		for q := Again; q <= Easy; q++ {
			res := mustSchedule(t, q, st)
			if res.EaseFactor < MinEaseFactor || res.EaseFactor > MaxEaseFactor {
				t.Errorf("%v %+v: ease out of bounds: %v", q, st, res.EaseFactor)
			}
			if res.IntervalDays < MinInterval || res.IntervalDays > MaxInterval {
				t.Errorf("%v %+v: interval out of bounds: %d", q, st, res.IntervalDays)
			}
		}
	}
}

func TestScheduleAgainMonotonicity(t *testing.T) {
	for _, st := range []State{
		{EaseFactor: 2.5, IntervalDays: 100},
		{EaseFactor: 1.3, IntervalDays: 1},
		{EaseFactor: 1.4, IntervalDays: 7, Lapses: 2},
	} {
		res := mustSchedule(t, Again, st)
		if res.IntervalDays != 1 {
			t.Errorf("%+v: again must reset interval to 1, got %d", st, res.IntervalDays)
		}
		if res.EaseFactor > st.EaseFactor {
			t.Errorf("%+v: again must not raise ease: %v -> %v", st, st.EaseFactor, res.EaseFactor)
		}
		if res.Lapses != st.Lapses+1 {
			t.Errorf("%+v: again must record a lapse", st)
		}
	}
}

func TestScheduleEasyMonotonicity(t *testing.T) {
	for _, st := range []State{
		{EaseFactor: 2.5, IntervalDays: 1},
		{EaseFactor: 2.0, IntervalDays: 4},
		{EaseFactor: 1.3, IntervalDays: 40},
	} {
		res := mustSchedule(t, Easy, st)
		if res.IntervalDays < st.IntervalDays {
			t.Errorf("%+v: easy must not shrink interval: %d -> %d", st, st.IntervalDays, res.IntervalDays)
		}
		if res.EaseFactor <= st.EaseFactor && st.EaseFactor < MaxEaseFactor {
			t.Errorf("%+v: easy must raise ease below the cap: %v -> %v", st, st.EaseFactor, res.EaseFactor)
		}
	}
}

func TestScheduleZeroStateUsesDefaults(t *testing.T) {
	res := mustSchedule(t, Good, State{})
	if res.EaseFactor != DefaultEaseFactor {
		t.Fatalf("ease: want=%v got=%v", DefaultEaseFactor, res.EaseFactor)
	}
	if res.IntervalDays != 3 {
		t.Fatalf("interval: want=3 got=%d", res.IntervalDays)
	}
}

func TestScheduleRejectsUnknownQuality(t *testing.T) {
	if _, err := Schedule(Quality(9), NewState(), testNow); err == nil {
		t.Fatal("expected error for unknown quality")
	}
}

func TestParseQuality(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Quality
	}{
		{"AGAIN", Again},
		{"HARD", Hard},
		{"GOOD", Good},
		{"EASY", Easy},
	} {
		got, err := ParseQuality(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseQuality(%q): got=%v err=%v", tc.in, got, err)
		}
		if got.String() != tc.in {
			t.Errorf("String round trip: %q -> %q", tc.in, got.String())
		}
	}
	if _, err := ParseQuality("PERFECT"); err == nil {
		t.Error("expected error for unknown quality name")
	}
}
