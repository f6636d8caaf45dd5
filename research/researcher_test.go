package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"news-video-pipeline/config"
)

func testClient(baseURL string) *openai.Client {
	c := openai.DefaultConfig("test-key")
	c.BaseURL = baseURL + "/v1"
	return openai.NewClientWithConfig(c)
}

func clearProviderKeys(t *testing.T) {
	t.Setenv("SERPER_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")
}

func TestRunNoProviderKeysReturnsEmptyBundle(t *testing.T) {
	clearProviderKeys(t)

	r := New(config.Default(), testClient("http://127.0.0.1:0"))
	bundle := r.Run(context.Background(), "某话题", "")

	if bundle == nil {
		t.Fatal("bundle must never be nil")
	}
	if !bundle.Empty() {
		t.Errorf("bundle should be empty with no provider keys: %+v", bundle)
	}
	if bundle.Sentiment != "neutral" {
		t.Errorf("empty bundle sentiment should be neutral, got %q", bundle.Sentiment)
	}
}

func TestRunSerperHitsWithLLMDownFallsBackToSnippets(t *testing.T) {
	clearProviderKeys(t)
	t.Setenv("SERPER_API_KEY", "test-serper-key")

	serper := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "test-serper-key" {
			t.Errorf("missing Serper API key header, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"organic": []map[string]string{
				{"title": "标题1", "snippet": "摘要1", "link": "http://s1"},
				{"title": "标题2", "snippet": "摘要2", "link": "http://s2"},
			},
		})
	}))
	defer serper.Close()

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer llm.Close()

	r := New(config.Default(), testClient(llm.URL))
	r.serperURL = serper.URL
	bundle := r.Run(context.Background(), "话题", "20260207")

	if len(bundle.KeyFacts) != 2 || bundle.KeyFacts[0] != "摘要1" {
		t.Errorf("fallback bundle should carry raw snippets as facts: %v", bundle.KeyFacts)
	}
	if bundle.Summary != "摘要1" {
		t.Errorf("fallback summary should be the first snippet, got %q", bundle.Summary)
	}
	if len(bundle.Sources) != 2 || bundle.Sources[1] != "http://s2" {
		t.Errorf("fallback sources wrong: %v", bundle.Sources)
	}
	if len(bundle.RawResults) != 2 || bundle.RawResults[0].Source != "serper" {
		t.Errorf("raw results should be preserved: %v", bundle.RawResults)
	}
}

func TestRunTavilyOnlyWhenSerperKeyAbsent(t *testing.T) {
	clearProviderKeys(t)
	t.Setenv("TAVILY_API_KEY", "test-tavily-key")

	var tavilyCalled bool
	tavily := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tavilyCalled = true
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["api_key"] != "test-tavily-key" {
			t.Errorf("Tavily key missing from payload: %v", payload["api_key"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]string{
				{"title": "T", "content": "内容", "url": "http://t1"},
			},
		})
	}))
	defer tavily.Close()

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer llm.Close()

	r := New(config.Default(), testClient(llm.URL))
	r.tavilyURL = tavily.URL
	bundle := r.Run(context.Background(), "话题", "")

	if !tavilyCalled {
		t.Fatal("Tavily should be queried when only its key is set")
	}
	if len(bundle.RawResults) != 1 || bundle.RawResults[0].Source != "tavily" {
		t.Errorf("expected one tavily result, got %v", bundle.RawResults)
	}
}

func TestRunSerperFailureDoesNotFailOverToTavily(t *testing.T) {
	clearProviderKeys(t)
	t.Setenv("SERPER_API_KEY", "k1")
	t.Setenv("TAVILY_API_KEY", "k2")

	serper := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer serper.Close()

	var tavilyCalled bool
	tavily := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tavilyCalled = true
	}))
	defer tavily.Close()

	r := New(config.Default(), testClient("http://127.0.0.1:0"))
	r.serperURL = serper.URL
	r.tavilyURL = tavily.URL
	bundle := r.Run(context.Background(), "话题", "")

	if tavilyCalled {
		t.Error("Tavily must not be used as a failover when a Serper key is configured")
	}
	if !bundle.Empty() {
		t.Errorf("a failed Serper search should yield the empty bundle: %+v", bundle)
	}
}

func TestRunSummarizeSuccess(t *testing.T) {
	clearProviderKeys(t)
	t.Setenv("SERPER_API_KEY", "k1")

	serper := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"organic": []map[string]string{
				{"title": "标题", "snippet": "摘要", "link": "http://s"},
			},
		})
	}))
	defer serper.Close()

	payload := `{"key_facts":["事实1"],"timeline":{"cause":"起因","development":"发展","impact":"影响"},"key_actors":["机构"],"sentiment":"positive","summary":"综述","sources":["http://s"]}`
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "```json\n" + payload + "\n```"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer llm.Close()

	r := New(config.Default(), testClient(llm.URL))
	r.serperURL = serper.URL
	bundle := r.Run(context.Background(), "话题", "")

	if bundle.Summary != "综述" || bundle.Sentiment != "positive" {
		t.Errorf("summarized bundle not parsed: %+v", bundle)
	}
	if len(bundle.KeyFacts) != 1 || bundle.KeyFacts[0] != "事实1" {
		t.Errorf("key facts not parsed: %v", bundle.KeyFacts)
	}
	if len(bundle.RawResults) != 1 {
		t.Errorf("raw results should be attached after summarize: %v", bundle.RawResults)
	}
}
