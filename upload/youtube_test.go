package upload

import (
	"context"
	"net/http"
	"testing"

	"golang.org/x/oauth2"
)

func TestOauthClientRequiresCredentials(t *testing.T) {
	t.Setenv("YOUTUBE_CLIENT_ID", "")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "")

	if _, err := oauthClient(context.Background()); err == nil {
		t.Fatal("missing credentials accepted")
	}
}

func TestOauthClientWrapsTransport(t *testing.T) {
	t.Setenv("YOUTUBE_CLIENT_ID", "id")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "secret")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "refresh")

	client, err := oauthClient(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// The service option takes an *http.Client, so the token source must be
	// wrapped in one, not handed over as a bare transport.
	var _ *http.Client = client
	tr, ok := client.Transport.(*oauth2.Transport)
	if !ok {
		t.Fatalf("transport is %T, want *oauth2.Transport", client.Transport)
	}
	if tr.Source == nil {
		t.Fatal("transport has no token source")
	}
}
