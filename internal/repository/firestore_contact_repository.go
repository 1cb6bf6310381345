package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"doctorportal-be/config"
	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/models"
	"doctorportal-be/internal/observability"
	"doctorportal-be/internal/retry"
)

const datastoreScope = "https://www.googleapis.com/auth/datastore"

// NewFirestoreHTTPClient builds the HTTP client for the Firestore REST API.
// A service account file wins over an API key; with neither the requests go
// out unauthenticated, which works for open security rules and the emulator.
func NewFirestoreHTTPClient(ctx context.Context, cfg config.FirestoreConfig) (*http.Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read firestore credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, datastoreScope)
		if err != nil {
			return nil, fmt.Errorf("parse firestore credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		opts = append(opts, option.WithoutAuthentication())
	}

	client, _, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore http client: %w", err)
	}
	return client, nil
}

// FirestoreContactRepository lists contact documents through the Firestore
// REST API. Partitioning by doctor is left to the caller.
type FirestoreContactRepository struct {
	client     *http.Client
	baseURL    string
	projectID  string
	collection string
	pageSize   int
	retry      retry.Config
}

// NewFirestoreContactRepository creates a new repository
func NewFirestoreContactRepository(client *http.Client, cfg config.FirestoreConfig, collection string) *FirestoreContactRepository {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 300
	}
	if collection == "" {
		collection = "contacts"
	}
	return &FirestoreContactRepository{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		projectID:  cfg.ProjectID,
		collection: collection,
		pageSize:   pageSize,
		retry:      retry.DefaultConfig(),
	}
}

// WithRetry replaces the retry policy used for every request.
func (r *FirestoreContactRepository) WithRetry(cfg retry.Config) *FirestoreContactRepository {
	r.retry = cfg
	return r
}

func (r *FirestoreContactRepository) collectionURL() string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/%s",
		r.baseURL, url.PathEscape(r.projectID), url.PathEscape(r.collection))
}

// List follows nextPageToken until the collection is exhausted.
func (r *FirestoreContactRepository) List(ctx context.Context, _ models.Session) ([]models.RawDocument, error) {
	var docs []models.RawDocument
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("pageSize", strconv.Itoa(r.pageSize))
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page firestoreListResponse
		if err := r.get(ctx, r.collectionURL()+"?"+q.Encode(), &page); err != nil {
			if apperrors.IsNotFound(err) {
				// An absent collection reads as empty.
				return docs, nil
			}
			return nil, apperrors.NewExternalError("failed to list contacts", err)
		}

		for _, d := range page.Documents {
			docs = append(docs, d.toRaw())
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	observability.LoggerFromContext(ctx).Debug().
		Int("count", len(docs)).
		Str("collection", r.collection).
		Msg("Fetched contacts from Firestore")
	return docs, nil
}

// Get fetches a single document by id. Ids containing a slash are rejected
// as not found.
func (r *FirestoreContactRepository) Get(ctx context.Context, _ models.Session, id string) (*models.RawDocument, error) {
	if id == "" || strings.Contains(id, "/") {
		return nil, apperrors.NewNotFoundError("contact not found")
	}

	var doc firestoreDocument
	if err := r.get(ctx, r.collectionURL()+"/"+url.PathEscape(id), &doc); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		return nil, apperrors.NewExternalError("failed to fetch contact", err)
	}
	raw := doc.toRaw()
	return &raw, nil
}

// get performs one GET with retries. 404 becomes a NotFound error; 429 and
// 5xx are retried; any other status fails immediately.
func (r *FirestoreContactRepository) get(ctx context.Context, target string, out interface{}) error {
	return retry.Do(ctx, r.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		if err := googleapi.CheckResponse(resp); err != nil {
			var gerr *googleapi.Error
			if errors.As(err, &gerr) {
				switch {
				case gerr.Code == http.StatusNotFound:
					return retry.Permanent(apperrors.NewNotFoundError("contact not found"))
				case gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError:
					return err
				}
			}
			return retry.Permanent(err)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Permanent(fmt.Errorf("decode firestore response: %w", err))
		}
		return nil
	})
}

type firestoreListResponse struct {
	Documents     []firestoreDocument `json:"documents"`
	NextPageToken string              `json:"nextPageToken"`
}

type firestoreDocument struct {
	Name       string                    `json:"name"`
	Fields     map[string]firestoreValue `json:"fields"`
	CreateTime string                    `json:"createTime"`
	UpdateTime string                    `json:"updateTime"`
}

// firestoreValue mirrors the REST Value message. Exactly one member is set;
// a value with none of the known members is treated as null.
type firestoreValue struct {
	StringValue    *string         `json:"stringValue"`
	IntegerValue   json.RawMessage `json:"integerValue"`
	DoubleValue    *float64        `json:"doubleValue"`
	BooleanValue   *bool           `json:"booleanValue"`
	TimestampValue *string         `json:"timestampValue"`
	ArrayValue     *struct {
		Values []firestoreValue `json:"values"`
	} `json:"arrayValue"`
}

func (d firestoreDocument) toRaw() models.RawDocument {
	raw := models.RawDocument{
		Name:   d.Name,
		Fields: make(map[string]models.Value, len(d.Fields)),
	}
	for k, v := range d.Fields {
		raw.Fields[k] = v.toValue()
	}
	if t, err := time.Parse(time.RFC3339Nano, d.CreateTime); err == nil {
		raw.CreateTime = t
	}
	if t, err := time.Parse(time.RFC3339Nano, d.UpdateTime); err == nil {
		raw.UpdateTime = t
	}
	return raw
}

func (v firestoreValue) toValue() models.Value {
	switch {
	case v.StringValue != nil:
		return models.StringValue(*v.StringValue)
	case len(v.IntegerValue) > 0 && !bytes.Equal(v.IntegerValue, []byte("null")):
		return models.IntegerValue(strings.Trim(string(v.IntegerValue), `"`))
	case v.DoubleValue != nil:
		f := *v.DoubleValue
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return models.IntegerValue(strconv.FormatInt(int64(f), 10))
		}
		return models.StringValue(strconv.FormatFloat(f, 'f', -1, 64))
	case v.BooleanValue != nil:
		return models.StringValue(strconv.FormatBool(*v.BooleanValue))
	case v.TimestampValue != nil:
		if t, err := time.Parse(time.RFC3339Nano, *v.TimestampValue); err == nil {
			return models.TimestampValue(t)
		}
		return models.StringValue(*v.TimestampValue)
	case v.ArrayValue != nil:
		items := make([]string, 0, len(v.ArrayValue.Values))
		for _, item := range v.ArrayValue.Values {
			if s, ok := item.toValue().Text(); ok {
				items = append(items, s)
			}
		}
		return models.StringArrayValue(items...)
	}
	return models.NullValue()
}
