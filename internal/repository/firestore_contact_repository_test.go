package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctorportal-be/config"
	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/models"
	"doctorportal-be/internal/retry"
)

const contactsPath = "/projects/demo/databases/(default)/documents/contacts"

var testSession = models.Session{DoctorID: "demo-doctor-001", Email: "doctor@clinic.com"}

func newFirestoreRepo(t *testing.T, handler http.HandlerFunc) *FirestoreContactRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.FirestoreConfig{BaseURL: srv.URL + "/", ProjectID: "demo", PageSize: 2}
	return NewFirestoreContactRepository(srv.Client(), cfg, "contacts").
		WithRetry(retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestFirestoreList_FollowsPages(t *testing.T) {
	repo := newFirestoreRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, contactsPath, r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("pageSize"))

		switch r.URL.Query().Get("pageToken") {
		case "":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"documents": []map[string]interface{}{
					{
						"name":       "projects/demo/databases/(default)/documents/contacts/c1",
						"createTime": "2025-01-15T08:00:00.123456Z",
						"updateTime": "2025-01-15T09:00:00Z",
						"fields": map[string]interface{}{
							"name":   map[string]interface{}{"stringValue": "Jane Doe"},
							"number": map[string]interface{}{"integerValue": "5551234"},
						},
					},
					{"name": "projects/demo/databases/(default)/documents/contacts/c2"},
				},
				"nextPageToken": "page-2",
			})
		case "page-2":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"documents": []map[string]interface{}{
					{"name": "projects/demo/databases/(default)/documents/contacts/c3"},
				},
			})
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
		}
	})

	docs, err := repo.List(context.Background(), testSession)

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "c1", docs[0].ID())
	assert.Equal(t, models.StringValue("Jane Doe"), docs[0].Fields["name"])
	assert.Equal(t, models.IntegerValue("5551234"), docs[0].Fields["number"])
	assert.Equal(t, time.Date(2025, time.January, 15, 8, 0, 0, 123456000, time.UTC), docs[0].CreateTime)
	assert.Equal(t, "c3", docs[2].ID())
}

func TestFirestoreList_MissingCollectionIsEmpty(t *testing.T) {
	repo := newFirestoreRepo(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": map[string]interface{}{"code": 404, "message": "not found"}})
	})

	docs, err := repo.List(context.Background(), testSession)

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFirestoreGet_NotFound(t *testing.T) {
	repo := newFirestoreRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, contactsPath+"/missing", r.URL.Path)
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": map[string]interface{}{"code": 404}})
	})

	doc, err := repo.Get(context.Background(), testSession, "missing")

	assert.Nil(t, doc)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFirestoreGet_RetriesServerErrors(t *testing.T) {
	var calls int32
	repo := newFirestoreRepo(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name": "projects/demo/databases/(default)/documents/contacts/abc",
			"fields": map[string]interface{}{
				"status": map[string]interface{}{"stringValue": "Completed"},
			},
		})
	})

	doc, err := repo.Get(context.Background(), testSession, "abc")

	require.NoError(t, err)
	assert.Equal(t, "abc", doc.ID())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFirestoreGet_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	repo := newFirestoreRepo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"error": map[string]interface{}{"code": 403, "message": "denied"}})
	})

	_, err := repo.Get(context.Background(), testSession, "abc")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFirestoreValue_ToValue(t *testing.T) {
	var doc firestoreDocument
	err := json.Unmarshal([]byte(`{
		"name": "projects/demo/databases/(default)/documents/contacts/x",
		"fields": {
			"s":     {"stringValue": "hi"},
			"i":     {"integerValue": "42"},
			"d":     {"doubleValue": 3.0},
			"f":     {"doubleValue": 2.5},
			"b":     {"booleanValue": true},
			"ts":    {"timestampValue": "2025-01-10T09:00:00Z"},
			"arr":   {"arrayValue": {"values": [{"stringValue": "a"}, {"integerValue": "7"}, {"nullValue": null}]}},
			"empty": {"arrayValue": {}},
			"null":  {"nullValue": null}
		}
	}`), &doc)
	require.NoError(t, err)

	raw := doc.toRaw()

	assert.Equal(t, models.StringValue("hi"), raw.Fields["s"])
	assert.Equal(t, models.IntegerValue("42"), raw.Fields["i"])
	assert.Equal(t, models.IntegerValue("3"), raw.Fields["d"])
	assert.Equal(t, models.StringValue("2.5"), raw.Fields["f"])
	assert.Equal(t, models.StringValue("true"), raw.Fields["b"])
	assert.Equal(t, models.TimestampValue(time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)), raw.Fields["ts"])
	assert.Equal(t, models.StringArrayValue("a", "7"), raw.Fields["arr"])
	assert.Equal(t, models.KindStringArray, raw.Fields["empty"].Kind)
	assert.Equal(t, models.KindNull, raw.Fields["null"].Kind)
	assert.True(t, raw.CreateTime.IsZero())
}
