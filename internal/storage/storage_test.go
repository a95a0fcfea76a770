package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "cppnart/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, d := range []string{"", "none", " NONE "} {
		st, err := Open(Config{Driver: d}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", d, st, err)
		}
	}
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestStoresRoundTrip(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "frames."+driver)
			st, err := Open(Config{Driver: driver, Path: path, KeepRecent: 3, BusyTimeout: time.Second}, logx.Nop())
			if err != nil {
				t.Fatalf("Open error: %v", err)
			}
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				r := FrameRecord{Index: i, Kind: "resnet", Seed: 1 << 63, Scale: 4, Latent: float64(i) / 10, Width: 8, Height: 6, TookMS: int64(i)}
				if err := st.AppendFrame(ctx, r); err != nil {
					t.Fatalf("AppendFrame error: %v", err)
				}
			}
			got, err := st.RecentFrames(ctx, 2)
			if err != nil {
				t.Fatalf("RecentFrames error: %v", err)
			}
			if len(got) != 2 || got[0].Index != 3 || got[1].Index != 4 {
				t.Fatalf("RecentFrames = %+v", got)
			}
			if got[1].Seed != 1<<63 || got[1].Kind != "resnet" || got[1].At.IsZero() {
				t.Fatalf("record fields lost: %+v", got[1])
			}
			if err := st.Close(); err != nil {
				t.Fatalf("Close error: %v", err)
			}

			// Reopen: history survives.
			st2, err := Open(Config{Driver: driver, Path: path, KeepRecent: 3}, logx.Nop())
			if err != nil {
				t.Fatalf("reopen error: %v", err)
			}
			defer st2.Close()
			all, err := st2.RecentFrames(ctx, 0)
			if err != nil {
				t.Fatalf("RecentFrames error: %v", err)
			}
			if len(all) == 0 || all[len(all)-1].Index != 4 {
				t.Fatalf("after reopen = %+v", all)
			}
		})
	}
}
