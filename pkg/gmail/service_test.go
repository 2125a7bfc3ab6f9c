package gmail

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	authdomain "workhub-backend/internal/auth/domain"
	workdomain "workhub-backend/internal/workitem/domain"

	"google.golang.org/api/option"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewService(5, option.WithEndpoint(srv.URL+"/")), &calls
}

func TestFetchCandidates_NormalizesMessages(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/messages"):
			if q := r.URL.Query().Get("q"); q != unreadQuery {
				t.Errorf("unexpected query %q", q)
			}
			if max := r.URL.Query().Get("maxResults"); max != "5" {
				t.Errorf("expected maxResults=5, got %q", max)
			}
			_, _ = w.Write([]byte(`{"messages":[{"id":"m1","threadId":"t1"},{"id":"m2","threadId":"t2"}]}`))
		case strings.HasSuffix(r.URL.Path, "/messages/m1"):
			_, _ = w.Write([]byte(`{"id":"m1","threadId":"t1","labelIds":["INBOX","UNREAD"],"snippet":"Q3 numbers &amp; plan","internalDate":"1700000000000","payload":{"headers":[{"name":"Subject","value":"Budget review"},{"name":"From","value":"Ana <ana@corp.com>"}]}}`))
		case strings.HasSuffix(r.URL.Path, "/messages/m2"):
			_, _ = w.Write([]byte(`{"id":"m2","threadId":"t2","snippet":"hi","payload":{"headers":[]}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	got, err := svc.FetchCandidates(context.Background(), authdomain.Credentials{AccessToken: "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	first := got[0]
	if first.ProviderID != "m1" || first.Title != "Budget review" || first.Sender != "Ana <ana@corp.com>" {
		t.Errorf("unexpected first candidate: %+v", first)
	}
	if first.Type != workdomain.ItemTypeEmail {
		t.Errorf("expected email type, got %s", first.Type)
	}
	if first.Preview != "Q3 numbers & plan" {
		t.Errorf("expected unescaped snippet, got %q", first.Preview)
	}
	if first.Timestamp.UnixMilli() != 1700000000000 {
		t.Errorf("unexpected timestamp %v", first.Timestamp)
	}
	if first.Metadata["googleId"] != "m1" {
		t.Errorf("expected googleId metadata, got %v", first.Metadata)
	}

	second := got[1]
	if second.Title != "No Subject" || second.Source != "Gmail" {
		t.Errorf("expected defaults for missing headers, got %+v", second)
	}
}

func TestFetchCandidates_NoCredentialsSkipsRemote(t *testing.T) {
	svc, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("remote should not be called")
	})

	got, err := svc.FetchCandidates(context.Background(), authdomain.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || *calls != 0 {
		t.Errorf("expected empty result without calls, got %d candidates, %d calls", len(got), *calls)
	}
}

func TestFetchCandidates_ListFailureIsProviderUnavailable(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"backend error"}}`))
	})

	_, err := svc.FetchCandidates(context.Background(), authdomain.Credentials{AccessToken: "tok"})
	if !workdomain.IsProviderUnavailable(err) {
		t.Fatalf("expected ProviderUnavailableError, got %v", err)
	}
}

func TestFetchCandidates_SkipsMessagesThatFailToLoad(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/messages"):
			_, _ = w.Write([]byte(`{"messages":[{"id":"gone"},{"id":"m1"}]}`))
		case strings.HasSuffix(r.URL.Path, "/messages/m1"):
			_, _ = w.Write([]byte(`{"id":"m1","payload":{"headers":[{"name":"Subject","value":"Still here"}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
		}
	})

	got, err := svc.FetchCandidates(context.Background(), authdomain.Credentials{AccessToken: "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ProviderID != "m1" {
		t.Fatalf("expected only m1, got %+v", got)
	}
}

func TestFetchCandidates_MessageLoadFailureIsProviderUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "rate limited", status: http.StatusTooManyRequests},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if strings.HasSuffix(r.URL.Path, "/messages") {
					_, _ = w.Write([]byte(`{"messages":[{"id":"m1"},{"id":"m2"}]}`))
					return
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"code":` + strconv.Itoa(tt.status) + `,"message":"try later"}}`))
			})

			got, err := svc.FetchCandidates(context.Background(), authdomain.Credentials{AccessToken: "tok"})
			if got != nil {
				t.Errorf("expected no candidates, got %+v", got)
			}
			var unavailable *workdomain.ProviderUnavailableError
			if !errors.As(err, &unavailable) {
				t.Fatalf("expected ProviderUnavailableError, got %v", err)
			}
			if unavailable.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, unavailable.StatusCode)
			}
		})
	}
}
