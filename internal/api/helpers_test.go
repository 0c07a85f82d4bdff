package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/talkbase/answerd/internal/auth"
	"github.com/talkbase/answerd/internal/config"
	"github.com/talkbase/answerd/internal/store"
)

// fakeProvider counts calls and returns canned results, so tests can
// assert exactly how many provider invocations a flow costs.
type fakeProvider struct {
	embedCalls    int
	completeCalls int

	embedding   []float32
	answer      string
	embedErr    error
	completeErr error

	lastSystem string
	lastUser   string
}

func (p *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.embedCalls++
	if p.embedErr != nil {
		return nil, p.embedErr
	}
	return p.embedding, nil
}

func (p *fakeProvider) Complete(_ context.Context, system, user string) (string, error) {
	p.completeCalls++
	p.lastSystem = system
	p.lastUser = user
	if p.completeErr != nil {
		return "", p.completeErr
	}
	return p.answer, nil
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		embedding: []float32{0.1, 0.2, 0.3},
		answer:    "Faith is trust in things unseen.",
	}
}

// failingStore wraps a Store and fails selected operations, for the
// degraded-cache properties.
type failingStore struct {
	store.Store
	failReads  bool
	failWrites bool
}

type storeFailure struct{ op string }

func (e storeFailure) Error() string { return "induced store failure: " + e.op }

func (s *failingStore) GetByQuestion(ctx context.Context, userID, question string) (*store.Entry, error) {
	if s.failReads {
		return nil, storeFailure{"get_by_question"}
	}
	return s.Store.GetByQuestion(ctx, userID, question)
}

func (s *failingStore) GetByID(ctx context.Context, userID, id string) (*store.Entry, error) {
	if s.failReads {
		return nil, storeFailure{"get_by_id"}
	}
	return s.Store.GetByID(ctx, userID, id)
}

func (s *failingStore) Insert(ctx context.Context, entry *store.Entry) error {
	if s.failWrites {
		return storeFailure{"insert"}
	}
	return s.Store.Insert(ctx, entry)
}

func (s *failingStore) SetAnswer(ctx context.Context, userID, id, answer string, talkIDs []string) error {
	if s.failWrites {
		return storeFailure{"set_answer"}
	}
	return s.Store.SetAnswer(ctx, userID, id, answer, talkIDs)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(st store.Store, p *fakeProvider) *Handler {
	return NewHandler(st, p, testLogger(), config.SemanticReuseConfig{})
}

// doJSON posts body to handler as userID and decodes the response into out.
func doJSON(t *testing.T, handler http.HandlerFunc, userID string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if out != nil && rr.Code == http.StatusOK {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr
}

func float32Equal(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
