package address

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGoogleLookupSuggest(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		var preds []string
		for i := 0; i < 7; i++ {
			preds = append(preds, fmt.Sprintf(`{"description":"%d Main St, Springfield","place_id":"p%d"}`, i, i))
		}
		fmt.Fprintf(w, `{"status":"OK","predictions":[%s]}`, strings.Join(preds, ","))
	}))
	defer srv.Close()

	lookup := NewGoogleLookup("maps-key", WithBaseURL(srv.URL))
	got, err := lookup.Suggest(context.Background(), "  123 Main ")
	require.NoError(t, err)

	require.Equal(t, "123 Main", query.Get("input"))
	require.Equal(t, "maps-key", query.Get("key"))
	require.Equal(t, "address", query.Get("types"))

	require.Len(t, got, maxSuggestions)
	require.Equal(t, "p0", got[0].PlaceID)
	require.Equal(t, "0 Main St, Springfield", got[0].Description)
}

func TestGoogleLookupShortQuerySkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	got, err := NewGoogleLookup("k", WithBaseURL(srv.URL)).Suggest(context.Background(), "12")
	require.NoError(t, err)
	require.Empty(t, got)
	require.False(t, called)
}

func TestGoogleLookupStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"zero results", http.StatusOK, `{"status":"ZERO_RESULTS","predictions":[]}`, false},
		{"denied", http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"bad key"}`, true},
		{"http error", http.StatusInternalServerError, ``, true},
		{"garbage", http.StatusOK, `<html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewGoogleLookup("k", WithBaseURL(srv.URL)).Suggest(context.Background(), "123 Main")
			if tt.wantErr {
				require.True(t, errors.Is(err, ErrLookupFailed))
				return
			}
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}

func TestNewSelectsLookup(t *testing.T) {
	require.IsType(t, &GoogleLookup{}, New("google", "key", nil))
	require.IsType(t, &GoogleLookup{}, New("Google", "key", nil))
	require.IsType(t, ManualLookup{}, New("google", "", nil))
	require.IsType(t, ManualLookup{}, New("manual", "key", nil))
	require.IsType(t, ManualLookup{}, New("", "", nil))
	require.False(t, New("google", "key", nil).Manual())
	require.True(t, New("google", "", nil).Manual())
}

func TestManualLookupSuggestsNothing(t *testing.T) {
	got, err := ManualLookup{}.Suggest(context.Background(), "123 Main St")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}
