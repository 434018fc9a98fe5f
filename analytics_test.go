package main

import "testing"

func TestAnalyticsFlushOnStop(t *testing.T) {
	db := openTestDB(t)
	a := NewAnalytics(db)

	a.Track(EvtSessionStart, 0, "s1", nil)
	a.Track(EvtRunEnd, 0, "s1", map[string]int{"score": 300})
	a.Track(EvtRunEnd, 0, "s2", nil)
	a.Stop()

	counts, err := a.EventCounts(1)
	if err != nil {
		t.Fatalf("EventCounts: %v", err)
	}
	if counts[EvtSessionStart] != 1 || counts[EvtRunEnd] != 2 {
		t.Errorf("unexpected counts %v", counts)
	}

	// tracking after Stop is dropped, not a panic
	a.Track(EvtRestart, 0, "s1", nil)
}

func TestAnalyticsDAU(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreatePlayer("ace", "hash")
	a := NewAnalytics(db)
	a.Track(EvtLogin, id, "", nil)
	a.Track(EvtLogin, id, "", nil)
	a.Track(EvtSessionStart, 0, "s1", nil)
	a.Stop()

	dau, err := a.DAUCount()
	if err != nil {
		t.Fatalf("DAUCount: %v", err)
	}
	if dau != 1 {
		t.Errorf("expected 1 daily user, got %d", dau)
	}
}

func TestAnalyticsRunStats(t *testing.T) {
	db := openTestDB(t)
	db.RecordRun(RunResult{SessionID: "a", Pilot: "x", Score: 100, Duration: 10})
	db.RecordRun(RunResult{SessionID: "b", Pilot: "y", Score: 300, Duration: 30})
	a := NewAnalytics(db)
	defer a.Stop()

	rs, err := a.RunStats(1)
	if err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	if rs.Count != 2 || rs.BestScore != 300 || rs.AvgScore != 200 || rs.AvgDuration != 20 {
		t.Errorf("unexpected run stats %+v", rs)
	}
}

func TestAnalyticsWithoutDB(t *testing.T) {
	a := NewAnalytics(nil)
	a.Track(EvtRunEnd, 0, "s", nil)
	a.Stop()
	if n, err := a.DAUCount(); n != 0 || err != nil {
		t.Errorf("expected 0, nil without a database, got %d %v", n, err)
	}
	if rs, err := a.RunStats(1); rs.Count != 0 || err != nil {
		t.Errorf("expected empty stats, got %+v %v", rs, err)
	}
}
