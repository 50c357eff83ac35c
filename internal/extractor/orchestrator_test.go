package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"jobtrail-utils/internal/capture"
	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/extractor/breaker"
	"jobtrail-utils/internal/extractor/cache"
	"jobtrail-utils/internal/llm"
	"jobtrail-utils/pkg/models"
	"jobtrail-utils/pkg/utils"
)

const testURL = "https://example.com/jobs/123"

type fakeProvider struct {
	id     string
	calls  int
	invoke func(call int) (string, error)
}

func (f *fakeProvider) Invoke(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.invoke(f.calls)
}

func (f *fakeProvider) ProviderID() string { return f.id }

func (f *fakeProvider) IsHealthy(ctx context.Context) error { return nil }

type fakeAcquirer struct {
	content string
	err     error
	calls   int
}

func (f *fakeAcquirer) Acquire(ctx context.Context, url string) (*capture.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &capture.Page{Content: f.content, Engine: "fake", IsHTML: false}, nil
}

func (f *fakeAcquirer) Engine() string { return "fake" }

func (f *fakeAcquirer) Close() error { return nil }

func goodJobJSON(t *testing.T) string {
	t.Helper()
	payload, err := json.Marshal(models.Job{
		Title:       "Backend Engineer",
		CompanyName: "Acme",
		Description: "Build and run backend services.",
		Location:    "Remote",
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(payload)
}

func alwaysSucceed(raw string) func(int) (string, error) {
	return func(int) (string, error) { return raw, nil }
}

func alwaysFail(err error) func(int) (string, error) {
	return func(int) (string, error) { return "", err }
}

func testConfig(providerIDs ...string) *config.Config {
	cfg := &config.Config{}
	cfg.Retry.BaseDelay = time.Millisecond
	cfg.Scraper.MaxContentSize = 1 << 20
	cfg.LLM.Providers = make(map[string]config.ProviderConfig)
	for _, id := range providerIDs {
		cfg.LLM.Providers[id] = config.ProviderConfig{
			Enabled:    true,
			MaxRetries: 3,
			Timeout:    time.Second,
		}
	}
	return cfg
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, acq *fakeAcquirer, providers ...*fakeProvider) (*Orchestrator, *breaker.Registry, cache.Store) {
	t.Helper()

	clients := make(map[string]llm.ProviderClient, len(providers))
	order := make([]string, 0, len(providers))
	for _, p := range providers {
		clients[p.id] = p
		order = append(order, p.id)
	}

	registry := llm.NewStaticRegistry(order[0], order, clients)
	breakers := breaker.NewRegistry()
	for _, id := range order {
		breakers.Register(id, breaker.Settings{})
	}
	store := cache.NewMemoryStore()

	o := New(cfg, store, breakers, registry, map[string]capture.Acquirer{"auto": acq})
	return o, breakers, store
}

func TestExtractCacheHitSkipsPipeline(t *testing.T) {
	provider := &fakeProvider{id: "alpha", invoke: alwaysFail(errors.New("must not be called"))}
	acq := &fakeAcquirer{err: errors.New("must not be called")}
	o, _, store := newTestOrchestrator(t, testConfig("alpha"), acq, provider)

	cached := &models.Job{Title: "Cached", CompanyName: "Acme", Description: "d"}
	if err := store.Put(context.Background(), utils.NormalizeSourceURL(testURL), cached); err != nil {
		t.Fatal(err)
	}

	job, err := o.Extract(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if job.Title != "Cached" {
		t.Errorf("expected cached job, got %q", job.Title)
	}
	if acq.calls != 0 || provider.calls != 0 {
		t.Errorf("cache hit must not touch acquirer (%d calls) or provider (%d calls)", acq.calls, provider.calls)
	}
}

func TestExtractFallbackSuccessIsCached(t *testing.T) {
	failing := &fakeProvider{id: "alpha", invoke: alwaysFail(utils.NewUnavailableError("down"))}
	working := &fakeProvider{id: "beta", invoke: alwaysSucceed(goodJobJSON(t))}
	acq := &fakeAcquirer{content: "Backend Engineer at Acme. Remote. Build services."}
	o, _, store := newTestOrchestrator(t, testConfig("alpha", "beta"), acq, failing, working)

	job, err := o.Extract(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if job.Metadata.Provider != "beta" {
		t.Errorf("expected fallback provider beta, got %q", job.Metadata.Provider)
	}
	if failing.calls != 3 {
		t.Errorf("expected 3 attempts against failing provider, got %d", failing.calls)
	}

	if _, ok := store.Get(context.Background(), utils.NormalizeSourceURL(testURL)); !ok {
		t.Error("successful fallback result was not cached")
	}
}

func TestExtractPermanentErrorShortCircuitsChain(t *testing.T) {
	// Response decodes but has no company name: a permanent failure
	missingFields := &fakeProvider{id: "alpha", invoke: alwaysSucceed(`{"title":"Engineer","description":"d"}`)}
	neverCalled := &fakeProvider{id: "beta", invoke: alwaysFail(errors.New("must not be called"))}
	acq := &fakeAcquirer{content: "some posting text"}
	o, _, store := newTestOrchestrator(t, testConfig("alpha", "beta"), acq, missingFields, neverCalled)

	_, err := o.Extract(context.Background(), testURL, nil)
	ee, ok := utils.AsExtractionError(err)
	if !ok || ee.Kind != utils.KindMissingFields {
		t.Fatalf("expected missing-fields error, got %v", err)
	}

	if missingFields.calls != 1 {
		t.Errorf("permanent error must not be retried, got %d calls", missingFields.calls)
	}
	if neverCalled.calls != 0 {
		t.Errorf("permanent error must not fall back, second provider got %d calls", neverCalled.calls)
	}
	if _, ok := store.Get(context.Background(), utils.NormalizeSourceURL(testURL)); ok {
		t.Error("failed extraction must not be cached")
	}
}

func TestExtractAllProvidersFailed(t *testing.T) {
	a := &fakeProvider{id: "alpha", invoke: alwaysFail(utils.NewUnavailableError("down"))}
	b := &fakeProvider{id: "beta", invoke: alwaysFail(utils.NewTimeoutError("slow"))}
	c := &fakeProvider{id: "gamma", invoke: alwaysFail(utils.NewUpstreamStatusError(503, "overloaded"))}
	acq := &fakeAcquirer{content: "some posting text"}
	o, _, _ := newTestOrchestrator(t, testConfig("alpha", "beta", "gamma"), acq, a, b, c)

	_, err := o.Extract(context.Background(), testURL, nil)
	ee, ok := utils.AsExtractionError(err)
	if !ok || ee.Kind != utils.KindAllProvidersFailed {
		t.Fatalf("expected all-providers-failed error, got %v", err)
	}
	if len(ee.Attempts) != 3 {
		t.Fatalf("expected 3 recorded attempts, got %d", len(ee.Attempts))
	}

	wantKinds := map[string]utils.ErrorKind{
		"alpha": utils.KindUnavailable,
		"beta":  utils.KindTimeout,
		"gamma": utils.KindUpstreamServer,
	}
	for _, attempt := range ee.Attempts {
		if want := wantKinds[attempt.Provider]; attempt.Kind != want {
			t.Errorf("provider %s: expected kind %s, got %s", attempt.Provider, want, attempt.Kind)
		}
	}
}

func TestExtractSkipsOpenCircuit(t *testing.T) {
	broken := &fakeProvider{id: "alpha", invoke: alwaysFail(errors.New("must not be called"))}
	working := &fakeProvider{id: "beta", invoke: alwaysSucceed(goodJobJSON(t))}
	acq := &fakeAcquirer{content: "some posting text"}
	o, breakers, _ := newTestOrchestrator(t, testConfig("alpha", "beta"), acq, broken, working)

	for i := 0; i < 5; i++ {
		breakers.RecordFailure("alpha")
	}
	if breakers.StateOf("alpha") != breaker.StateOpen {
		t.Fatal("test setup: alpha circuit should be open")
	}

	job, err := o.Extract(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if job.Metadata.Provider != "beta" {
		t.Errorf("expected beta to serve the request, got %q", job.Metadata.Provider)
	}
	if broken.calls != 0 {
		t.Errorf("open circuit must not be invoked, got %d calls", broken.calls)
	}
}

func TestExtractRetryableThenSuccessOnSameProvider(t *testing.T) {
	flaky := &fakeProvider{id: "alpha", invoke: func(call int) (string, error) {
		if call < 3 {
			return "", utils.NewTimeoutError("slow")
		}
		return goodJobJSON(t), nil
	}}
	acq := &fakeAcquirer{content: "some posting text"}
	o, _, _ := newTestOrchestrator(t, testConfig("alpha"), acq, flaky)

	job, err := o.Extract(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if job.Metadata.Provider != "alpha" {
		t.Errorf("expected alpha after retries, got %q", job.Metadata.Provider)
	}
	if flaky.calls != 3 {
		t.Errorf("expected success on third attempt, got %d calls", flaky.calls)
	}
}

func TestExtractRejectsInvalidSource(t *testing.T) {
	provider := &fakeProvider{id: "alpha", invoke: alwaysSucceed(goodJobJSON(t))}
	acq := &fakeAcquirer{content: "text"}
	o, _, _ := newTestOrchestrator(t, testConfig("alpha"), acq, provider)

	for _, source := range []string{"", "ftp://example.com/job", "not a url", "https://"} {
		_, err := o.Extract(context.Background(), source, nil)
		ee, ok := utils.AsExtractionError(err)
		if !ok || ee.Kind != utils.KindInvalidSource {
			t.Errorf("source %q: expected invalid-source error, got %v", source, err)
		}
	}
	if acq.calls != 0 {
		t.Errorf("invalid sources must not be fetched, acquirer got %d calls", acq.calls)
	}
}

func TestExtractContentTooLarge(t *testing.T) {
	provider := &fakeProvider{id: "alpha", invoke: alwaysFail(errors.New("must not be called"))}
	acq := &fakeAcquirer{content: string(make([]byte, 2048))}
	cfg := testConfig("alpha")
	cfg.Scraper.MaxContentSize = 1024
	o, _, _ := newTestOrchestrator(t, cfg, acq, provider)

	_, err := o.Extract(context.Background(), testURL, nil)
	ee, ok := utils.AsExtractionError(err)
	if !ok || ee.Kind != utils.KindContentTooLarge {
		t.Fatalf("expected content-too-large error, got %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("oversized content must not reach providers, got %d calls", provider.calls)
	}
}

func TestExtractUnknownExplicitProvider(t *testing.T) {
	provider := &fakeProvider{id: "alpha", invoke: alwaysSucceed(goodJobJSON(t))}
	acq := &fakeAcquirer{content: "text"}
	o, _, _ := newTestOrchestrator(t, testConfig("alpha"), acq, provider)

	_, err := o.Extract(context.Background(), testURL, &models.ExtractOptions{Provider: "nope"})
	ee, ok := utils.AsExtractionError(err)
	if !ok || ee.Kind != utils.KindInvalidInput {
		t.Fatalf("expected invalid-input error for unknown provider, got %v", err)
	}
}

func TestExtractExplicitProviderReplacesPrimary(t *testing.T) {
	primary := &fakeProvider{id: "alpha", invoke: alwaysSucceed(goodJobJSON(t))}
	explicit := &fakeProvider{id: "beta", invoke: alwaysSucceed(goodJobJSON(t))}
	acq := &fakeAcquirer{content: "text"}
	o, _, _ := newTestOrchestrator(t, testConfig("alpha", "beta"), acq, primary, explicit)

	job, err := o.Extract(context.Background(), testURL, &models.ExtractOptions{Provider: "beta"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if job.Metadata.Provider != "beta" {
		t.Errorf("expected explicit provider beta, got %q", job.Metadata.Provider)
	}
	if primary.calls != 0 {
		t.Errorf("explicit provider request must not call the primary, got %d calls", primary.calls)
	}
}

func TestRunChainRecordsVanishedProvider(t *testing.T) {
	failing := &fakeProvider{id: "alpha", invoke: alwaysFail(utils.NewUnavailableError("down"))}
	acq := &fakeAcquirer{content: "text"}
	o, _, _ := newTestOrchestrator(t, testConfig("alpha"), acq, failing)

	// A chain entry with no registered client must still show up in the
	// failure history instead of silently disappearing.
	_, err := o.runChain(context.Background(), []string{"ghost", "alpha"}, "prompt", testURL)
	ee, ok := utils.AsExtractionError(err)
	if !ok || ee.Kind != utils.KindAllProvidersFailed {
		t.Fatalf("expected all-providers-failed error, got %v", err)
	}
	if len(ee.Attempts) != 2 {
		t.Fatalf("expected 2 recorded attempts, got %d", len(ee.Attempts))
	}
	if ee.Attempts[0].Provider != "ghost" || ee.Attempts[0].Kind != utils.KindUnavailable {
		t.Errorf("missing provider not recorded: %+v", ee.Attempts[0])
	}
}

func TestExtractCanceledIsNotATimeout(t *testing.T) {
	provider := &fakeProvider{id: "alpha", invoke: alwaysFail(errors.New("must not be called"))}
	acq := &fakeAcquirer{content: "text"}
	o, _, _ := newTestOrchestrator(t, testConfig("alpha"), acq, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Extract(ctx, testURL, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled to surface, got %v", err)
	}
	if ee, ok := utils.AsExtractionError(err); ok && ee.Kind == utils.KindTimeout {
		t.Errorf("caller cancellation reported as timeout: %v", err)
	}
}

func TestExtractDeadlineReportsTimeout(t *testing.T) {
	provider := &fakeProvider{id: "alpha", invoke: alwaysFail(errors.New("must not be called"))}
	acq := &fakeAcquirer{content: "text"}
	o, _, _ := newTestOrchestrator(t, testConfig("alpha"), acq, provider)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := o.Extract(ctx, testURL, nil)
	ee, ok := utils.AsExtractionError(err)
	if !ok || ee.Kind != utils.KindTimeout {
		t.Fatalf("expected timeout error for expired deadline, got %v", err)
	}
}

func TestInvalidateCache(t *testing.T) {
	provider := &fakeProvider{id: "alpha", invoke: alwaysSucceed(goodJobJSON(t))}
	acq := &fakeAcquirer{content: "text"}
	o, _, store := newTestOrchestrator(t, testConfig("alpha"), acq, provider)

	ctx := context.Background()
	if _, err := o.Extract(ctx, testURL, nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get(ctx, utils.NormalizeSourceURL(testURL)); !ok {
		t.Fatal("result was not cached")
	}

	if err := o.InvalidateCache(ctx, testURL); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get(ctx, utils.NormalizeSourceURL(testURL)); ok {
		t.Error("entry survived invalidation")
	}
}

func TestProviderHealthSnapshot(t *testing.T) {
	a := &fakeProvider{id: "alpha", invoke: alwaysSucceed(goodJobJSON(t))}
	b := &fakeProvider{id: "beta", invoke: alwaysSucceed(goodJobJSON(t))}
	acq := &fakeAcquirer{content: "text"}
	o, breakers, _ := newTestOrchestrator(t, testConfig("alpha", "beta"), acq, a, b)

	for i := 0; i < 5; i++ {
		breakers.RecordFailure("beta")
	}

	health := o.ProviderHealth()
	if len(health.Providers) != 2 {
		t.Fatalf("expected 2 providers in snapshot, got %d", len(health.Providers))
	}

	states := make(map[string]string)
	for _, p := range health.Providers {
		states[p.Provider] = p.State
	}
	if states["alpha"] != "closed" {
		t.Errorf("alpha: expected closed, got %s", states["alpha"])
	}
	if states["beta"] != "open" {
		t.Errorf("beta: expected open, got %s", states["beta"])
	}
}
