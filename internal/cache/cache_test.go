package cache

import (
	"testing"
	"time"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := New(true)
	etag := c.Set("rankings", []byte(`[{"name":"Alice"}]`), time.Minute)

	data, gotETag, ok := c.Get("rankings")
	if !ok {
		t.Fatal("Get() missed a fresh entry")
	}
	if string(data) != `[{"name":"Alice"}]` {
		t.Errorf("data = %q", data)
	}
	if gotETag != etag {
		t.Errorf("etag = %q, want %q", gotETag, etag)
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	c := New(true)
	c.Set("rankings", []byte("old"), -time.Second)
	if _, _, ok := c.Get("rankings"); ok {
		t.Error("Get() returned an expired entry")
	}
}

func TestDisabledCacheIsNoOp(t *testing.T) {
	c := New(false)
	if etag := c.Set("k", []byte("v"), time.Minute); etag == "" {
		t.Error("Set() on disabled cache returned empty etag")
	}
	if _, _, ok := c.Get("k"); ok {
		t.Error("disabled cache returned a hit")
	}
}

func TestClear(t *testing.T) {
	c := New(true)
	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)
	c.Clear()
	if _, _, ok := c.Get("a"); ok {
		t.Error("entry survived Clear()")
	}
	if stats := c.Stats(); stats["total_keys"].(int) != 0 {
		t.Errorf("total_keys = %v after Clear()", stats["total_keys"])
	}
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("body"))
	tests := []struct {
		ifNoneMatch string
		want        bool
	}{
		{"", false},
		{"*", true},
		{etag, true},
		{`W/"deadbeef"`, false},
	}
	for _, tt := range tests {
		if got := CheckETagMatch(tt.ifNoneMatch, etag); got != tt.want {
			t.Errorf("CheckETagMatch(%q) = %v, want %v", tt.ifNoneMatch, got, tt.want)
		}
	}
}
