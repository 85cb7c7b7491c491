package api_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/jrsteele09/community-client/api"
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestCommunityFeed_DataEnvelope(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("/api/posts/community-feed/c-1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer "+testAccessToken, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":[{"_id":"p-1","title":"Hello","author":{"_id":"u-1"}},{"_id":"p-2"}]}`)
	})

	posts, err := f.client.CommunityFeed(context.Background(), staticToken(), "c-1")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "Hello", posts[0].Title)
	require.JSONEq(t, `{"_id":"u-1"}`, string(posts[0].Author))
}

func TestExploreFeed_NoAuth(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("/api/posts/explore-feed", func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":[]}`)
	})

	posts, err := f.client.ExploreFeed(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, posts)
	require.Empty(t, posts)
}

func TestActivities_BareArray(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("/api/activities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"_id":"a-1","title":"Study circle","activityType":"study"}]`)
	})

	activities, err := f.client.Activities(context.Background(), staticToken())
	require.NoError(t, err)
	require.Equal(t, []api.Activity{{ID: "a-1", Title: "Study circle", ActivityType: "study"}}, activities)
}

func TestEvents_RejectsItemsWithoutID(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"_id":"e-1"},{"title":"anonymous"}]`)
	})

	_, err := f.client.Events(context.Background(), staticToken())
	require.ErrorIs(t, err, clienterrors.ErrInvalidResponse)
}

func TestEvents_RejectsObjectWithoutData(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"events":[]}`)
	})

	_, err := f.client.Events(context.Background(), staticToken())
	require.ErrorIs(t, err, clienterrors.ErrInvalidResponse)
}

func TestEventDetailAndJoin(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("/api/events/e-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"_id":"e-1","title":"Feast"}}`)
	})
	joined := false
	f.mux.HandleFunc("/api/events/e-1/join", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		joined = true
	})

	event, err := f.client.Event(context.Background(), staticToken(), "e-1")
	require.NoError(t, err)
	require.Equal(t, "Feast", event.Title)

	require.NoError(t, f.client.JoinEvent(context.Background(), staticToken(), "e-1"))
	require.True(t, joined)
}

func TestAddEventHosts(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("/api/events/e-1/hosts", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		b, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"hosts":["u-2","u-3"]}`, string(b))
		_, _ = io.WriteString(w, `{"_id":"e-1","title":"Feast","hosts":["u-1","u-2","u-3"]}`)
	})

	event, err := f.client.AddEventHosts(context.Background(), staticToken(), "e-1", []string{"u-2", "u-3"})
	require.NoError(t, err)
	require.Equal(t, "e-1", event.ID)
	require.JSONEq(t, `["u-1","u-2","u-3"]`, string(event.Hosts))
}

func TestPostInteractions(t *testing.T) {
	f := setupTestFixture(t)
	var liked, commented string
	f.mux.HandleFunc("/api/posts/p-1/like", func(w http.ResponseWriter, r *http.Request) {
		liked = r.Method
		_, _ = io.WriteString(w, `{"data":{"likes":1}}`)
	})
	f.mux.HandleFunc("/api/posts/p-1/comment", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		commented = string(b)
	})
	f.mux.HandleFunc("/api/posts/create", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"title":"T","content":"C","media":[],"author":"u-1","community":"c-1"}`, string(b))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"_id":"p-9","title":"T"}}`)
	})

	ctx := context.Background()
	require.NoError(t, f.client.LikePost(ctx, staticToken(), "p-1"))
	require.Equal(t, http.MethodPost, liked)

	require.NoError(t, f.client.CommentOnPost(ctx, staticToken(), "p-1", "nice"))
	require.JSONEq(t, `{"comment":"nice"}`, commented)

	post, err := f.client.CreatePost(ctx, staticToken(), api.CreatePostRequest{Title: "T", Content: "C", Author: "u-1", Community: "c-1"})
	require.NoError(t, err)
	require.Equal(t, "p-9", post.ID)
}

func TestNotFound(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.client.Activity(context.Background(), staticToken(), "missing")

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.False(t, api.IsUnauthorized(err))
}
