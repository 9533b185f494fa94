// YANFOE Core
// Copyright (c) 2026 The YANFOE Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of YANFOE Core.
//
// YANFOE Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// YANFOE Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with YANFOE Core.  If not, see <http://www.gnu.org/licenses/>.

package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(retries int) *Client {
	return NewClientWithOptions(Options{
		Timeout: 5 * time.Second,
		Retries: retries,
		Backoff: time.Millisecond,
	})
}

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	gotUA := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA <- r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	body, err := testClient(0).Fetch(context.Background(), srv.URL+"/film/fichefilm_gen_cfilm=62.html")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
	assert.Equal(t, DefaultUserAgent, <-gotUA)
}

func TestFetchClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(3).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrFetchFailed)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchBodyLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/big" {
			_, _ = w.Write([]byte("0123456789A"))
			return
		}
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	c := NewClientWithOptions(Options{Timeout: 5 * time.Second, Retries: 2, MaxBodyBytes: 10})

	body, err := c.Fetch(context.Background(), srv.URL+"/exact")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(body))

	_, err = c.Fetch(context.Background(), srv.URL+"/big")
	require.ErrorIs(t, err, ErrFetchFailed)
	require.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Equal(t, int32(2), calls.Load(), "oversized bodies are not retried")
}

func TestFetchServerErrorRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("third time"))
	}))
	defer srv.Close()

	body, err := testClient(2).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "third time", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchRetriesBounded(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(1).Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClientWithOptions(Options{Timeout: 50 * time.Millisecond, Retries: 0})
	_, err := c.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetchContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(3).Fetch(ctx, srv.URL)
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchInvalidURL(t *testing.T) {
	t.Parallel()

	_, err := testClient(3).Fetch(context.Background(), "://bad")
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.False(t, retryable(&permanentError{err: errors.New("x")}))
}

func TestHostLimitersPerHost(t *testing.T) {
	t.Parallel()

	h := newHostLimiters(2)
	a := h.get("www.allocine.fr")
	assert.Same(t, a, h.get("www.allocine.fr"))
	assert.NotSame(t, a, h.get("api.themoviedb.org"))
	assert.Equal(t, 2, a.Burst())
}

func TestStatusErrorIs(t *testing.T) {
	t.Parallel()

	err := &StatusError{URL: "http://x", StatusCode: 502}
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.True(t, err.Temporary())
	assert.False(t, (&StatusError{StatusCode: 403}).Temporary())
	assert.Contains(t, err.Error(), "502")
}

func TestDownloadFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("jpegdata"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "poster.jpg")
	tmp := filepath.Join(dir, "poster.jpg.part")

	c := testClient(0)
	require.NoError(t, c.DownloadFile(context.Background(), DownloadFileArgs{
		URL:        srv.URL + "/poster.jpg",
		OutputPath: out,
		TempPath:   tmp,
	}))

	data, err := os.ReadFile(out) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
	_, err = os.Stat(tmp)
	assert.True(t, os.IsNotExist(err))

	err = c.DownloadFile(context.Background(), DownloadFileArgs{
		URL:        srv.URL + "/missing.jpg",
		OutputPath: filepath.Join(dir, "missing.jpg"),
	})
	var se *StatusError
	require.ErrorAs(t, err, &se)
}
