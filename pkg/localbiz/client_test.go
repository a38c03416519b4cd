package localbiz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Civil Hospital hospitals karachi", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "local-business-data.p.rapidapi.com", r.Header.Get("X-RapidAPI-Host"))

		_, _ = w.Write([]byte(`{"data": [{
			"business_id": "biz-1",
			"name": "Civil Hospital Karachi",
			"address": "Baba-e-Urdu Rd, Karachi",
			"phone_number": "+92 21 99215740",
			"website": "https://civilhospital.example"
		}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	biz, err := client.Search(context.Background(), "Civil Hospital hospitals karachi")

	require.NoError(t, err)
	require.NotNil(t, biz)
	assert.Equal(t, "biz-1", biz.BusinessID)
	assert.Equal(t, "Civil Hospital Karachi", biz.Name)
	assert.Equal(t, "+92 21 99215740", biz.PhoneNumber)
}

func TestSearch_NoMatchIsNilNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	biz, err := client.Search(context.Background(), "no such place")

	require.NoError(t, err)
	assert.Nil(t, biz)
}

func TestSearch_QuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "anything")

	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrQuotaExceeded))
}

func TestDetails_ObjectPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/business-details", r.URL.Path)
		assert.Equal(t, "biz-1", r.URL.Query().Get("business_id"))
		assert.Equal(t, "true", r.URL.Query().Get("extract_emails_and_contacts"))

		_, _ = w.Write([]byte(`{"data": {
			"business_id": "biz-1",
			"name": "Civil Hospital Karachi",
			"email": "info@civilhospital.example",
			"business_hours": {"Monday": "Open 24 hours"}
		}}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	biz, err := client.Details(context.Background(), "biz-1")

	require.NoError(t, err)
	require.NotNil(t, biz)
	assert.Equal(t, "info@civilhospital.example", biz.Email)
	assert.Equal(t, "Monday: Open 24 hours", biz.Hours.Flatten())
}

func TestDetails_ArrayPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"business_id": "biz-2", "name": "Second"}]}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	biz, err := client.Details(context.Background(), "biz-2")

	require.NoError(t, err)
	require.NotNil(t, biz)
	assert.Equal(t, "Second", biz.Name)
}

func TestDetails_NullPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": null}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	biz, err := client.Details(context.Background(), "biz-3")

	require.NoError(t, err)
	assert.Nil(t, biz)
}

func TestDetails_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": 42}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.Details(context.Background(), "biz-4")
	assert.Error(t, err)
}

func TestDetails_QuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.Details(context.Background(), "biz-5")

	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrQuotaExceeded))
}
