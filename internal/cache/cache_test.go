package cache

import (
	"testing"
	"time"

	"github.com/panbanda/orphan/internal/testutil"
)

func TestNew(t *testing.T) {
	fs := testutil.MemFS()

	c, err := New(fs, "/project/.orphan/cache", 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !c.Enabled() {
		t.Error("cache should be enabled")
	}
	if !testutil.DirExists(fs, "/project/.orphan/cache") {
		t.Error("New() should create cache directory")
	}

	c, err = New(fs, "", 0, false)
	if err != nil {
		t.Fatalf("New() error for disabled cache: %v", err)
	}
	if c.Enabled() {
		t.Error("cache should be disabled")
	}
}

func TestSetAndGetWithHash(t *testing.T) {
	c, err := New(testutil.MemFS(), "/cache", 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := c.SetWithHash("src/a.ts", "h1", []byte("payload")); err != nil {
		t.Fatalf("SetWithHash() error: %v", err)
	}

	got, ok := c.GetWithHash("src/a.ts", "h1")
	if !ok {
		t.Fatal("GetWithHash() should hit for matching hash")
	}
	if string(got) != "payload" {
		t.Errorf("GetWithHash() = %q, want payload", got)
	}

	if _, ok := c.GetWithHash("src/a.ts", "h2"); ok {
		t.Error("GetWithHash() should miss when content hash changed")
	}
	if _, ok := c.GetWithHash("src/b.ts", "h1"); ok {
		t.Error("GetWithHash() should miss for unknown key")
	}
}

func TestStrings(t *testing.T) {
	c, err := New(testutil.MemFS(), "/cache", 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := c.SetStrings("src/a.ts", "h", []string{"./b", "@/c"}); err != nil {
		t.Fatalf("SetStrings() error: %v", err)
	}
	got, ok := c.GetStrings("src/a.ts", "h")
	if !ok {
		t.Fatal("GetStrings() miss")
	}
	if len(got) != 2 || got[0] != "./b" || got[1] != "@/c" {
		t.Errorf("GetStrings() = %v", got)
	}

	// An empty list is a valid cached result, distinct from a miss.
	if err := c.SetStrings("src/empty.ts", "h", nil); err != nil {
		t.Fatalf("SetStrings(nil) error: %v", err)
	}
	got, ok = c.GetStrings("src/empty.ts", "h")
	if !ok {
		t.Fatal("GetStrings() should hit for empty list")
	}
	if len(got) != 0 {
		t.Errorf("GetStrings() = %v, want empty", got)
	}
}

func TestTTLExpiration(t *testing.T) {
	fs := testutil.MemFS()
	c, err := New(fs, "/cache", 1, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.SetWithHash("k", "h", []byte("v")); err != nil {
		t.Fatalf("SetWithHash() error: %v", err)
	}

	now = now.Add(30 * time.Minute)
	if _, ok := c.GetWithHash("k", "h"); !ok {
		t.Error("entry should still be valid within TTL")
	}

	now = now.Add(2 * time.Hour)
	if _, ok := c.GetWithHash("k", "h"); ok {
		t.Error("entry should expire after TTL")
	}
	if testutil.FileExists(fs, c.keyPath("k")) {
		t.Error("expired entry should be removed")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c, err := New(testutil.MemFS(), "/cache", 0, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	now := time.Now()
	c.now = func() time.Time { return now }
	if err := c.SetWithHash("k", "h", []byte("v")); err != nil {
		t.Fatal(err)
	}
	now = now.Add(24 * 365 * time.Hour)
	if _, ok := c.GetWithHash("k", "h"); !ok {
		t.Error("entry with zero TTL should not expire")
	}
}

func TestInvalidateAndClear(t *testing.T) {
	fs := testutil.MemFS()
	c, err := New(fs, "/cache", 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	for _, k := range []string{"a", "b"} {
		if err := c.SetWithHash(k, "h", []byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Invalidate("a"); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if _, ok := c.GetWithHash("a", "h"); ok {
		t.Error("invalidated entry should miss")
	}
	if err := c.Invalidate("never-set"); err != nil {
		t.Errorf("Invalidate() of missing key error: %v", err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if testutil.DirExists(fs, "/cache") {
		t.Error("Clear() should remove the cache directory")
	}
}

func TestDisabledCache(t *testing.T) {
	c := Disabled()

	if err := c.SetWithHash("k", "h", []byte("v")); err != nil {
		t.Errorf("SetWithHash() on disabled cache error: %v", err)
	}
	if _, ok := c.GetWithHash("k", "h"); ok {
		t.Error("disabled cache should never hit")
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear() on disabled cache error: %v", err)
	}
	stats, err := c.GetStats()
	if err != nil || stats.Entries != 0 {
		t.Errorf("GetStats() on disabled cache = %+v, %v", stats, err)
	}

	var nilCache *Cache
	if nilCache.Enabled() {
		t.Error("nil cache should report disabled")
	}
}

func TestHashBytes(t *testing.T) {
	h1 := HashBytes([]byte("import x from './x'"))
	h2 := HashBytes([]byte("import x from './x'"))
	h3 := HashBytes([]byte("import y from './y'"))

	if h1 != h2 {
		t.Error("HashBytes() should be deterministic")
	}
	if h1 == h3 {
		t.Error("HashBytes() should differ for different content")
	}
	if len(h1) != 64 {
		t.Errorf("HashBytes() length = %d, want 64 hex chars", len(h1))
	}
}
