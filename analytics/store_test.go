package analytics

import (
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInitSalt(t *testing.T) {
	s := testStore(t)
	if err := InitSalt(s); err != nil {
		t.Fatalf("InitSalt: %v", err)
	}
	// The salt is cached process-wide after the first call, so only the
	// store that initialized it is guaranteed to hold the setting.
	stored, err := s.GetSetting("hash_salt")
	if err != nil {
		t.Fatal(err)
	}
	if salt.value == "" {
		t.Fatal("salt not populated")
	}
	if stored != "" && stored != salt.value {
		t.Errorf("stored salt %q does not match in-memory salt %q", stored, salt.value)
	}
	h := HashIP("203.0.113.7")
	if len(h) != 16 || h == HashIP("203.0.113.8") {
		t.Errorf("unexpected hash shape: %q", h)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := testStore(t)
	v, err := s.GetSetting("missing")
	if err != nil || v != "" {
		t.Fatalf("GetSetting(missing) = %q, %v", v, err)
	}
	if err := s.SetSetting("k", "one"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting("k", "two"); err != nil {
		t.Fatal(err)
	}
	v, err = s.GetSetting("k")
	if err != nil {
		t.Fatal(err)
	}
	if v != "two" {
		t.Errorf("GetSetting(k) = %q, want %q", v, "two")
	}
}

func visitAt(visitor, path string, ts time.Time) Visit {
	return Visit{
		VisitorID:  visitor,
		SessionID:  sessionID(visitor, ts),
		IPHash:     "deadbeefdeadbeef",
		Browser:    "Firefox",
		OS:         "Linux",
		Device:     "Desktop",
		Path:       path,
		Referrer:   "Direct",
		ScreenSize: "1920x1080",
		Timestamp:  ts,
	}
}

func TestStatsForPeriod(t *testing.T) {
	s := testStore(t)
	now := time.Now()

	// Two visitors today, one of them twice; one stale visit far outside
	// the window.
	for _, v := range []Visit{
		visitAt("visitor-a", "/blog/first/", now),
		visitAt("visitor-a", "/blog/second/", now),
		visitAt("visitor-b", "/blog/first/", now),
		visitAt("visitor-c", "/blog/old/", now.AddDate(0, 0, -40)),
	} {
		if err := s.SaveVisit(v); err != nil {
			t.Fatal(err)
		}
	}

	st, err := s.StatsForPeriod("week")
	if err != nil {
		t.Fatalf("StatsForPeriod: %v", err)
	}
	if st.TotalViews != 3 {
		t.Errorf("TotalViews = %d, want 3", st.TotalViews)
	}
	if st.UniqueVisitors != 2 {
		t.Errorf("UniqueVisitors = %d, want 2", st.UniqueVisitors)
	}
	if len(st.TopPages) == 0 || st.TopPages[0].Path != "/blog/first/" || st.TopPages[0].Views != 2 {
		t.Errorf("TopPages = %+v, want /blog/first/ on top with 2 views", st.TopPages)
	}
	if len(st.Browsers) != 1 || st.Browsers[0].Name != "Firefox" || st.Browsers[0].Count != 3 {
		t.Errorf("Browsers = %+v", st.Browsers)
	}
	if len(st.DailyViews) != 7 {
		t.Errorf("DailyViews has %d buckets, want 7", len(st.DailyViews))
	}
	var sum int
	for _, d := range st.DailyViews {
		sum += d.Views
	}
	if sum != 3 {
		t.Errorf("DailyViews sum = %d, want 3", sum)
	}
}

func TestUpdateVisitDuration(t *testing.T) {
	s := testStore(t)
	now := time.Now()
	if err := s.SaveVisit(visitAt("visitor-a", "/blog/first/", now.Add(-2*time.Minute))); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveVisit(visitAt("visitor-a", "/blog/first/", now)); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateVisitDuration("visitor-a", "/blog/first/", 90); err != nil {
		t.Fatal(err)
	}

	st, err := s.StatsForPeriod("week")
	if err != nil {
		t.Fatal(err)
	}
	// Only the newest visit got the duration; the average skips rows
	// without one.
	if st.AvgDuration != 90 {
		t.Errorf("AvgDuration = %d, want 90", st.AvgDuration)
	}
}

func TestBotStatsForPeriod(t *testing.T) {
	s := testStore(t)
	now := time.Now()
	for _, b := range []BotVisit{
		{BotName: "Googlebot", IPHash: "aa", UserAgent: "Googlebot/2.1", Path: "/", Timestamp: now},
		{BotName: "Googlebot", IPHash: "aa", UserAgent: "Googlebot/2.1", Path: "/blog/", Timestamp: now},
		{BotName: "Bingbot", IPHash: "bb", UserAgent: "bingbot/2.0", Path: "/", Timestamp: now},
	} {
		if err := s.SaveBotVisit(b); err != nil {
			t.Fatal(err)
		}
	}

	st, err := s.BotStatsForPeriod("week")
	if err != nil {
		t.Fatalf("BotStatsForPeriod: %v", err)
	}
	if st.TotalVisits != 3 {
		t.Errorf("TotalVisits = %d, want 3", st.TotalVisits)
	}
	if len(st.TopBots) != 2 || st.TopBots[0].Name != "Googlebot" || st.TopBots[0].Count != 2 {
		t.Errorf("TopBots = %+v", st.TopBots)
	}
	if len(st.TopPages) == 0 || st.TopPages[0].Path != "/" {
		t.Errorf("TopPages = %+v", st.TopPages)
	}
}

func TestRealtimeVisitors(t *testing.T) {
	s := testStore(t)
	now := time.Now()
	for _, v := range []Visit{
		visitAt("visitor-a", "/", now.Add(-1*time.Minute)),
		visitAt("visitor-a", "/blog/", now.Add(-30*time.Second)),
		visitAt("visitor-b", "/", now.Add(-10*time.Minute)),
	} {
		if err := s.SaveVisit(v); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.RealtimeVisitors()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("RealtimeVisitors = %d, want 1", n)
	}
}

func TestCleanupOldVisits(t *testing.T) {
	s := testStore(t)
	now := time.Now()
	if err := s.SaveVisit(visitAt("visitor-a", "/", now)); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveVisit(visitAt("visitor-b", "/", now.AddDate(0, 0, -45))); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveBotVisit(BotVisit{BotName: "Googlebot", IPHash: "aa", UserAgent: "g", Path: "/", Timestamp: now.AddDate(0, 0, -45)}); err != nil {
		t.Fatal(err)
	}

	deleted, err := s.CleanupOldVisits(30)
	if err != nil {
		t.Fatalf("CleanupOldVisits: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	st, err := s.StatsForPeriod("year")
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalViews != 1 {
		t.Errorf("TotalViews after cleanup = %d, want 1", st.TotalViews)
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		period string
		days   int
		bucket string
	}{
		{"today", 1, bucketHourly},
		{"week", 7, bucketDaily},
		{"month", 30, bucketDaily},
		{"year", 365, bucketMonthly},
		{"", 7, bucketDaily},
		{"bogus", 7, bucketDaily},
	}
	for _, tt := range tests {
		sp := parsePeriod(tt.period)
		if sp.days != tt.days || sp.bucket != tt.bucket {
			t.Errorf("parsePeriod(%q) = %+v, want {%d %s}", tt.period, sp, tt.days, tt.bucket)
		}
	}
}

func TestTimeRange(t *testing.T) {
	now := time.Date(2024, 6, 1, 13, 37, 0, 0, time.UTC)

	from, to := parsePeriod("today").timeRange(now)
	if want := time.Date(2024, 5, 31, 14, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("hourly from = %v, want %v", from, want)
	}
	if want := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Errorf("hourly to = %v, want %v", to, want)
	}

	from, to = parsePeriod("week").timeRange(now)
	if want := time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("weekly from = %v, want %v", from, want)
	}
	if want := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Errorf("weekly to = %v, want %v", to, want)
	}
}

func TestFillSeries(t *testing.T) {
	t.Run("hourly fills 24 buckets", func(t *testing.T) {
		from := time.Date(2024, 6, 1, 5, 0, 0, 0, time.UTC)
		got := fillSeries(bucketHourly, from, from.Add(24*time.Hour), map[string]int{"08:00": 5})
		if len(got) != 24 {
			t.Fatalf("len = %d, want 24", len(got))
		}
		if got[0].Date != "05:00" || got[23].Date != "04:00" {
			t.Errorf("bucket order wrong: first %q last %q", got[0].Date, got[23].Date)
		}
		if got[3].Date != "08:00" || got[3].Views != 5 {
			t.Errorf("bucket 08:00 = %+v", got[3])
		}
	})

	t.Run("daily zero-fills gaps", func(t *testing.T) {
		from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		got := fillSeries(bucketDaily, from, from.AddDate(0, 0, 7), map[string]int{"2024-06-03": 2})
		if len(got) != 7 {
			t.Fatalf("len = %d, want 7", len(got))
		}
		for i, d := range got {
			want := 0
			if d.Date == "2024-06-03" {
				want = 2
			}
			if d.Views != want {
				t.Errorf("bucket %d (%s) = %d, want %d", i, d.Date, d.Views, want)
			}
		}
	})

	t.Run("monthly aligns to month starts", func(t *testing.T) {
		from := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		got := fillSeries(bucketMonthly, from, to, map[string]int{"2024-02": 9})
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		if got[0].Date != "2024-01" || got[1].Views != 9 || got[2].Date != "2024-03" {
			t.Errorf("series = %+v", got)
		}
	})
}

func TestSessionIDRollsOverDaily(t *testing.T) {
	day1 := time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 0, 1, 0, 0, time.UTC)
	if sessionID("v", day1) != sessionID("v", day1.Add(-5*time.Hour)) {
		t.Error("same visitor and day should share a session")
	}
	if sessionID("v", day1) == sessionID("v", day2) {
		t.Error("session should change at midnight")
	}
	if sessionID("v", day1) == sessionID("w", day1) {
		t.Error("different visitors should not share a session")
	}
}
