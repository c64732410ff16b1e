package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"sjsage522/productscraper/config"
	scrapeerrors "sjsage522/productscraper/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const captchaPage = `<html><body>
	<form action="/errors/validateCaptcha">
		<div class="a-row a-text-center"><img src="https://images-na.ssl-images-amazon.com/captcha/abc/Captcha_x.jpg"></div>
		<input id="captchacharacters" name="field-keywords" type="text">
		<button type="submit">Continue shopping</button>
	</form>
</body></html>`

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><span id="productTitle">Echo Dot</span></body></html>`))
	}))
	defer server.Close()

	f := NewHTTPFetcher("test-agent", 5*time.Second)
	defer f.Close()

	html, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "Echo Dot")
}

func TestHTTPFetcherStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher("test-agent", 5*time.Second).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, "fetch "+server.URL+" unexpected status code: 404", err.Error())
}

func TestHTTPFetcherCaptcha(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(captchaPage))
	}))
	defer server.Close()

	_, err := NewHTTPFetcher("test-agent", 5*time.Second).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeCaptcha))
	assert.ErrorIs(t, err, ErrUnsolved)
}

func TestHTTPFetcherTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := NewHTTPFetcher("test-agent", 50*time.Millisecond).Fetch(context.Background(), server.URL)
	require.Error(t, err)
}

func TestDetect(t *testing.T) {
	challenge, ok := Detect(captchaPage)
	assert.True(t, ok)
	assert.Equal(t, "https://images-na.ssl-images-amazon.com/captcha/abc/Captcha_x.jpg", challenge.ImageURL)

	_, ok = Detect(`<html><body><span id="productTitle">Echo</span></body></html>`)
	assert.False(t, ok)

	_, ok = Detect("")
	assert.False(t, ok)
}

func TestAttempt(t *testing.T) {
	ctx := context.Background()
	img := "https://example.com/captcha.jpg"

	_, err := Attempt(ctx, PlaceholderSolver{}, img)
	assert.ErrorIs(t, err, ErrUnsolved)

	_, err = Attempt(ctx, nil, img)
	assert.ErrorIs(t, err, ErrUnsolved)

	_, err = Attempt(ctx, PlaceholderSolver{}, "")
	assert.ErrorIs(t, err, ErrUnsolved)

	for _, answer := range []string{"", "  ", "ERROR", "placeholder"} {
		_, err = Attempt(ctx, SolverFunc(func(context.Context, string) (string, error) { return answer, nil }), img)
		assert.ErrorIs(t, err, ErrUnsolved, answer)
	}

	_, err = Attempt(ctx, SolverFunc(func(context.Context, string) (string, error) {
		return "", errors.New("service down")
	}), img)
	assert.ErrorIs(t, err, ErrUnsolved)
	assert.Contains(t, err.Error(), "service down")

	answer, err := Attempt(ctx, SolverFunc(func(_ context.Context, u string) (string, error) {
		assert.Equal(t, img, u)
		return " XKCDQ ", nil
	}), img)
	require.NoError(t, err)
	assert.Equal(t, "XKCDQ", answer)
}

func TestNew(t *testing.T) {
	cfg := config.LoadConfig()

	cfg.FetchMode = config.FetchModeHTTP
	f, err := New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTPFetcher{}, f)

	cfg.FetchMode = config.FetchModeBrowser
	f, err = New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &BrowserFetcher{}, f)
	assert.NoError(t, f.Close())

	cfg.FetchMode = "crawl4ai"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestBrowserFetcherUnreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	f := NewBrowserFetcher(BrowserOptions{ControlURL: "ws://" + addr}, nil)
	defer f.Close()

	_, err = f.Fetch(context.Background(), "https://www.amazon.eg/dp/B08N5WRWNW")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to connect to browser"))
}

func TestBrowserFetcherRemote(t *testing.T) {
	ws := os.Getenv("BROWSER_WS")
	if ws == "" {
		t.Skip("BROWSER_WS not set")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><span id="productTitle">Rendered</span></body></html>`))
	}))
	defer server.Close()

	f := NewBrowserFetcher(BrowserOptions{ControlURL: ws}, PlaceholderSolver{})
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	html, err := f.Fetch(ctx, server.URL)
	if err != nil {
		t.Skipf("browser not reachable: %v", err)
	}
	assert.Contains(t, html, "Rendered")
}
