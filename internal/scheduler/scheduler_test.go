package scheduler

import (
	"context"
	"testing"

	"codelens/internal/models"
	"codelens/internal/sources"
)

type fakeUpdater struct {
	calls [][]string
}

func (f *fakeUpdater) UpdateFromURLs(ctx context.Context, urls []string) models.UpdateSummary {
	f.calls = append(f.calls, urls)
	return models.UpdateSummary{TotalURLs: len(urls), Successful: len(urls)}
}

func testSources() sources.Sources {
	return sources.Sources{
		"a": {"http://a/1", "http://a/2"},
		"b": {"http://b/1"},
	}
}

func TestNewRejectsBadCronSpec(t *testing.T) {
	_, err := New(&fakeUpdater{}, testSources(), "not a cron spec")
	if err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestRunUpdateRecordsResult(t *testing.T) {
	updater := &fakeUpdater{}
	s, err := New(updater, testSources(), "0 2 * * *")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.runUpdate()

	if len(updater.calls) != 1 {
		t.Fatalf("updater called %d times, want 1", len(updater.calls))
	}
	if len(updater.calls[0]) != 3 {
		t.Errorf("updated %d urls, want 3", len(updater.calls[0]))
	}

	last := s.LastSummary()
	if last == nil || last.TotalURLs != 3 {
		t.Errorf("last summary = %+v", last)
	}
	if s.Status().LastUpdate == nil {
		t.Error("status missing last update time")
	}
}

func TestPauseSkipsScheduledRun(t *testing.T) {
	updater := &fakeUpdater{}
	s, err := New(updater, testSources(), "0 2 * * *")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.Pause()
	s.runScheduled()
	if len(updater.calls) != 0 {
		t.Errorf("updater called while paused")
	}
	if s.Status().Status != "paused" {
		t.Errorf("status = %q, want paused", s.Status().Status)
	}

	s.Resume()
	s.runScheduled()
	if len(updater.calls) != 1 {
		t.Errorf("updater not called after resume")
	}
	if s.Status().Status != "running" {
		t.Errorf("status = %q, want running", s.Status().Status)
	}
}

func TestStatusReportsReadableFrequency(t *testing.T) {
	s, err := New(&fakeUpdater{}, testSources(), "0 2 * * *")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Status().UpdateFrequency; got != "daily at 2:00 AM" {
		t.Errorf("update_frequency = %q, want %q", got, "daily at 2:00 AM")
	}
}

func TestDescribeCron(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"0 2 * * *", "daily at 2:00 AM"},
		{"30 14 * * *", "daily at 2:30 PM"},
		{"0 0 * * *", "daily at 12:00 AM"},
		{"15 12 * * *", "daily at 12:15 PM"},
		{"0 2 * * 1", "0 2 * * 1"},
		{"*/5 * * * *", "*/5 * * * *"},
	}
	for _, tt := range tests {
		if got := describeCron(tt.spec); got != tt.want {
			t.Errorf("describeCron(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestStatusLifecycle(t *testing.T) {
	s, err := New(&fakeUpdater{}, testSources(), "0 2 * * *")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.Status().SchedulerRunning {
		t.Error("scheduler reported running before Start")
	}

	s.Start()
	st := s.Status()
	if !st.SchedulerRunning {
		t.Error("scheduler not running after Start")
	}
	if st.NextUpdate == nil {
		t.Error("no next update time after Start")
	}

	s.Stop()
	if s.Status().SchedulerRunning {
		t.Error("scheduler still running after Stop")
	}
}
