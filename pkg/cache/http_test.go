package cache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestResponseToEntry(t *testing.T) {
	lastModified := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header: http.Header{
			"Expires":       {time.Now().Add(time.Hour).Format(http.TimeFormat)},
			"Last-Modified": {lastModified.Format(http.TimeFormat)},
			"Etag":          {`"v1"`},
			"Content-Type":  {"application/json"},
		},
		Body: io.NopCloser(bytes.NewReader([]byte(`[{"name":"Radiohead"}]`))),
	}

	entry, err := ResponseToEntry(resp)
	if err != nil {
		t.Fatalf("ResponseToEntry() error = %v", err)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `[{"name":"Radiohead"}]` {
		t.Errorf("Body not restored, got %q", body)
	}
	if string(entry.Data) != `[{"name":"Radiohead"}]` {
		t.Errorf("Data = %q", entry.Data)
	}
	if entry.ETag != `"v1"` {
		t.Errorf("ETag = %q, want %q", entry.ETag, `"v1"`)
	}
	if !entry.LastModified.Equal(lastModified) {
		t.Errorf("LastModified = %v, want %v", entry.LastModified, lastModified)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", entry.StatusCode)
	}
	if entry.TTL() < 59*time.Minute {
		t.Errorf("TTL() = %v, want about an hour", entry.TTL())
	}
}

func TestResponseToEntry_Nil(t *testing.T) {
	if _, err := ResponseToEntry(nil); err == nil {
		t.Error("Expected error for nil response")
	}
}

func TestParseExpires(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		headers http.Header
		want    time.Time
	}{
		{
			name:    "expires header",
			headers: http.Header{"Expires": {future.Format(http.TimeFormat)}},
			want:    future,
		},
		{
			name:    "no headers",
			headers: http.Header{},
			want:    now.Add(DefaultTTL),
		},
		{
			name:    "invalid expires",
			headers: http.Header{"Expires": {"yesterday-ish"}},
			want:    now.Add(DefaultTTL),
		},
		{
			name:    "expires in the past",
			headers: http.Header{"Expires": {now.Add(-time.Hour).Format(http.TimeFormat)}},
			want:    now,
		},
		{
			name:    "max-age",
			headers: http.Header{"Cache-Control": {"public, max-age=120"}},
			want:    now.Add(2 * time.Minute),
		},
		{
			name: "max-age wins over expires",
			headers: http.Header{
				"Cache-Control": {"max-age=60"},
				"Expires":       {future.Format(http.TimeFormat)},
			},
			want: now.Add(time.Minute),
		},
		{
			name:    "no-store",
			headers: http.Header{"Cache-Control": {"no-store"}},
			want:    now,
		},
		{
			name:    "malformed max-age falls back",
			headers: http.Header{"Cache-Control": {"max-age=soon"}},
			want:    now.Add(DefaultTTL),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseExpires(tt.headers)
			diff := got.Sub(tt.want)
			if diff < -2*time.Second || diff > 2*time.Second {
				t.Errorf("parseExpires() = %v, want about %v (diff %v)", got, tt.want, diff)
			}
		})
	}
}

func TestEntryToResponse(t *testing.T) {
	entry := &Entry{
		Data:       []byte(`{"uuid":"AR1"}`),
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": {"application/json"}},
	}
	req, _ := http.NewRequest(http.MethodGet, "https://api.blitzr.com/artist/", nil)

	resp := EntryToResponse(entry, req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Error("Expected X-Cache: HIT")
	}
	if entry.Headers.Get("X-Cache") != "" {
		t.Error("Entry headers must not be modified")
	}
	if resp.Request != req {
		t.Error("Request not attached")
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"uuid":"AR1"}` {
		t.Errorf("Body = %q", body)
	}
}

func TestConditionalHeaders(t *testing.T) {
	lastModified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		entry           *Entry
		wantConditional bool
		wantIfNoneMatch string
		wantIfModified  string
	}{
		{
			name:            "nil entry",
			entry:           nil,
			wantConditional: false,
		},
		{
			name:            "no validators",
			entry:           &Entry{},
			wantConditional: false,
		},
		{
			name:            "etag",
			entry:           &Entry{ETag: `"abc"`, LastModified: lastModified},
			wantConditional: true,
			wantIfNoneMatch: `"abc"`,
		},
		{
			name:            "last-modified only",
			entry:           &Entry{LastModified: lastModified},
			wantConditional: true,
			wantIfModified:  lastModified.Format(http.TimeFormat),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldMakeConditionalRequest(tt.entry); got != tt.wantConditional {
				t.Errorf("ShouldMakeConditionalRequest() = %v, want %v", got, tt.wantConditional)
			}

			req, _ := http.NewRequest(http.MethodGet, "https://api.blitzr.com/label/", nil)
			AddConditionalHeaders(req, tt.entry)

			if got := req.Header.Get("If-None-Match"); got != tt.wantIfNoneMatch {
				t.Errorf("If-None-Match = %q, want %q", got, tt.wantIfNoneMatch)
			}
			if got := req.Header.Get("If-Modified-Since"); got != tt.wantIfModified {
				t.Errorf("If-Modified-Since = %q, want %q", got, tt.wantIfModified)
			}
		})
	}

	// Must not panic.
	AddConditionalHeaders(nil, &Entry{ETag: "x"})
}
