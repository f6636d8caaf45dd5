package audio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"news-video-pipeline/config"
)

func TestRunWithoutTokenIsNoOp(t *testing.T) {
	t.Setenv("DOUBAO_ACCESS_TOKEN", "")

	outPath := filepath.Join(t.TempDir(), "act1.mp3")
	g := New(config.Default())
	if err := g.Run(context.Background(), "一些文本", outPath); err != nil {
		t.Fatalf("missing token must not be an error, got: %v", err)
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("no file should be written without a token")
	}
}

func TestRunAssemblesStreamChunksInOrder(t *testing.T) {
	t.Setenv("DOUBAO_ACCESS_TOKEN", "test-token")
	t.Setenv("DOUBAO_APP_ID", "test-app")

	chunk1 := []byte("first-audio-fragment-")
	chunk2 := []byte("second-audio-fragment")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Access-Key"); got != "test-token" {
			t.Errorf("access key header wrong: %q", got)
		}
		if got := r.Header.Get("X-Api-Resource-Id"); got != "seed-tts-2.0" {
			t.Errorf("resource id header wrong: %q", got)
		}

		var payload struct {
			ReqParams struct {
				Text string `json:"text"`
			} `json:"req_params"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload.ReqParams.Text != "测试文本" {
			t.Errorf("request text wrong: %q", payload.ReqParams.Text)
		}

		lines := []string{
			fmt.Sprintf(`{"data":{"audio":%q}}`, base64.StdEncoding.EncodeToString(chunk1)),
			`this line is not json at all`,
			`{"data":{"audio":""}}`,
			`{"code":0,"message":"ok"}`,
			fmt.Sprintf(`{"data":{"audio":%q}}`, base64.StdEncoding.EncodeToString(chunk2)),
		}
		fmt.Fprint(w, strings.Join(lines, "\n"))
	}))
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "act1.mp3")
	g := New(config.Default())
	g.endpoint = srv.URL

	if err := g.Run(context.Background(), "测试文本", outPath); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if want := string(chunk1) + string(chunk2); string(data) != want {
		t.Errorf("chunks not assembled in order: got %q, want %q", data, want)
	}
}

func TestRunBareStringDataShape(t *testing.T) {
	t.Setenv("DOUBAO_ACCESS_TOKEN", "test-token")

	// Long enough to pass the bare-string plausibility check.
	chunk := []byte(strings.Repeat("audio-bytes-", 10))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":%q}`+"\n", base64.StdEncoding.EncodeToString(chunk))
	}))
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "act1.mp3")
	g := New(config.Default())
	g.endpoint = srv.URL

	if err := g.Run(context.Background(), "文本", outPath); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(chunk) {
		t.Error("bare-string data shape not decoded")
	}
}

func TestRunHTTPErrorIsReturned(t *testing.T) {
	t.Setenv("DOUBAO_ACCESS_TOKEN", "test-token")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "act1.mp3")
	g := New(config.Default())
	g.endpoint = srv.URL

	if err := g.Run(context.Background(), "文本", outPath); err == nil {
		t.Fatal("an HTTP error from the provider should surface to the caller")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("no file should be left behind after an HTTP error")
	}
}
