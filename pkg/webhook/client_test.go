package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

func TestNewClient_RequiresBaseURL(t *testing.T) {
	is := is.New(t)

	_, err := NewClient("")
	is.True(err != nil) // empty base URL must be rejected

	c, err := NewClient("http://api.internal")
	is.NoErr(err)
	is.True(c != nil)
}

func TestClient_PostResult(t *testing.T) {
	is := is.New(t)

	var gotPath, gotContentType string
	var gotBody Result
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	is.NoErr(err)

	result := Result{
		ApplicantID:  7,
		InvitationID: 42,
		Status:       "COMPLETED",
		Transcript: []TranscriptEntry{
			{Question: "What is a slice?", Response: "A view over an array.", Skill: "Go"},
		},
	}
	is.NoErr(client.PostResult(context.Background(), result))

	is.Equal(gotPath, InvitationPath)
	is.Equal(gotContentType, "application/json")
	is.Equal(gotBody.ApplicantID, 7)
	is.Equal(gotBody.InvitationID, 42)
	is.Equal(gotBody.Status, "COMPLETED")
	is.Equal(len(gotBody.Transcript), 1)
	is.Equal(gotBody.Transcript[0].Skill, "Go")
}

func TestClient_PostResult_NonSuccessStatus(t *testing.T) {
	is := is.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	is.NoErr(err)

	err = client.PostResult(context.Background(), Result{Status: "COMPLETED"})
	is.True(err != nil) // 5xx responses surface as errors
}

func TestClient_PostResult_ServerDown(t *testing.T) {
	is := is.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := NewClient(srv.URL)
	is.NoErr(err)

	err = client.PostResult(context.Background(), Result{Status: "COMPLETED"})
	is.True(err != nil) // connection failures surface as errors
}
