package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-records/internal/http/router"
	"github.com/aanand-mishra/students-records/internal/insight"
	"github.com/aanand-mishra/students-records/internal/metrics"
	"github.com/aanand-mishra/students-records/internal/registry"
	"github.com/aanand-mishra/students-records/internal/storage"
	"github.com/aanand-mishra/students-records/internal/storage/jsonfile"
	"github.com/aanand-mishra/students-records/internal/storage/memory"
	"github.com/aanand-mishra/students-records/internal/types"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s stubCompleter) Complete(context.Context, string, string, int) (string, error) {
	return s.reply, s.err
}

type brokenStore struct{}

func (brokenStore) LoadAll(context.Context) ([]types.Student, error) {
	return nil, storage.ErrUnreadable
}
func (brokenStore) SaveAll(context.Context, []types.Student) error { return storage.ErrUnreadable }

func setup(t *testing.T, store storage.Storage, c insight.Completer) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewCollector("test")

	h := router.New(router.Deps{
		Registry: registry.New(store, log, registry.WithObserver(m)),
		Answerer: insight.New(c, insight.Options{Observer: m}, log),
		Metrics:  m,
		Log:      log,
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func scenarioStore() *memory.Store {
	return memory.NewWith(
		types.Student{ID: 1, StudentID: "S-1", FullName: "Juan Dela Cruz", Gender: "Male", Gmail: "juan@gmail.com", Program: "CS"},
		types.Student{ID: 2, StudentID: "S-2", FullName: "Maria Clara", Gender: "Female", Gmail: "maria@gmail.com", Program: "IT"},
	)
}

func do(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func list(t *testing.T, url string) []types.Student {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []types.Student
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestScenario(t *testing.T) {
	ts := setup(t, scenarioStore(), stubCompleter{err: errors.New("unused")})

	females := list(t, ts.URL+"/students?gender=female")
	require.Len(t, females, 1)
	assert.Equal(t, int64(2), females[0].ID)

	resp, body := do(t, http.MethodPost, ts.URL+"/ask-llm", map[string]string{"question": "how many female students?"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "There are 1 female students enrolled.", body["answer"])

	resp, body = do(t, http.MethodDelete, ts.URL+"/students/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Student deleted successfully!", body["message"])

	remaining := list(t, ts.URL+"/students")
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(2), remaining[0].ID)

	resp, body = do(t, http.MethodDelete, ts.URL+"/students/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Student not found!", body["message"])
}

func TestDeleteWholeNumberLiteral(t *testing.T) {
	store := scenarioStore()
	ts := setup(t, store, nil)

	resp, body := do(t, http.MethodDelete, ts.URL+"/students/1e0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Student deleted successfully!", body["message"])

	resp, _ = do(t, http.MethodDelete, ts.URL+"/students/2.5", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].ID)
}

func TestListFilters(t *testing.T) {
	ts := setup(t, scenarioStore(), nil)

	assert.Len(t, list(t, ts.URL+"/students"), 2)
	assert.Len(t, list(t, ts.URL+"/students?name=MARIA"), 1)
	assert.Len(t, list(t, ts.URL+"/students?program=c&gender=male"), 1)

	empty := list(t, ts.URL+"/students?name=nobody")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListEmptyStoreReturnsArray(t *testing.T) {
	ts := setup(t, memory.New(), nil)

	resp, err := http.Get(ts.URL + "/students")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestCreateStudent(t *testing.T) {
	store := scenarioStore()
	ts := setup(t, store, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/students", map[string]string{
		"studentID": "S-3",
		"fullName":  "Jose Rizal",
		"gender":    "Male",
		"gmail":     "jose@gmail.com",
		"program":   "BSCE",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Student added successfully!", body["message"])

	created, ok := body["student"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jose Rizal", created["fullName"])
	assert.Greater(t, created["id"].(float64), float64(2))

	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreateStudentAcceptsNonStringOptionalFields(t *testing.T) {
	store := memory.New()
	ts := setup(t, store, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/students", map[string]any{
		"studentID":  "S-3",
		"fullName":   "Jose Rizal",
		"gender":     "Male",
		"gmail":      "jose@gmail.com",
		"yearLevel":  2,
		"university": nil,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	created, ok := body["student"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2", created["yearLevel"])
	assert.Equal(t, "", created["university"])
}

func TestCreateStudentDropsUnknownFields(t *testing.T) {
	store := memory.New()
	ts := setup(t, store, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/students", map[string]any{
		"id":        5,
		"studentID": "S-3",
		"fullName":  "Jose Rizal",
		"gender":    "Male",
		"gmail":     "jose@gmail.com",
		"nickname":  "Pepe",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	created, ok := body["student"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, created, "nickname")
	assert.NotEqual(t, float64(5), created["id"])

	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created["id"], float64(all[0].ID))
}

func TestStoreWithNonStringFieldsStaysUsable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"id": 1, "studentID": "S-1", "fullName": "Ana", "gender": "Female", "gmail": "a@gmail.com", "program": "IT", "yearLevel": 2}
]`), 0o644))
	store, err := jsonfile.New(path)
	require.NoError(t, err)
	ts := setup(t, store, nil)

	got := list(t, ts.URL+"/students?program=it")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].YearLevel)

	resp, _ := do(t, http.MethodPost, ts.URL+"/students", map[string]any{
		"studentID": "S-2", "fullName": "Ben", "gender": "Male", "gmail": "b@gmail.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, ts.URL+"/students/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got = list(t, ts.URL+"/students")
	require.Len(t, got, 1)
	assert.Equal(t, "Ben", got[0].FullName)
}

func TestCreateStudentRejectsMissingFields(t *testing.T) {
	store := scenarioStore()
	ts := setup(t, store, nil)

	resp, body := do(t, http.MethodPost, ts.URL+"/students", map[string]string{
		"studentID": "S-3",
		"gender":    "Male",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields!", body["message"])
	assert.Equal(t, "field fullName is required, field gmail is required", body["error"])
	assert.Equal(t, 0, store.Saves())
}

func TestCreateStudentRejectsBadBody(t *testing.T) {
	ts := setup(t, memory.New(), nil)

	for _, raw := range []string{"", "{not json"} {
		resp, body := do(t, http.MethodPost, ts.URL+"/students", raw)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request body", body["message"])
	}
}

func TestDeleteNonNumericID(t *testing.T) {
	ts := setup(t, scenarioStore(), nil)

	resp, body := do(t, http.MethodDelete, ts.URL+"/students/abc", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Student not found!", body["message"])
}

func TestStorageFailureIs500(t *testing.T) {
	ts := setup(t, brokenStore{}, nil)

	resp, body := do(t, http.MethodGet, ts.URL+"/students", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to access student records", body["message"])

	resp, _ = do(t, http.MethodDelete, ts.URL+"/students/1", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAskAlwaysAnswers200(t *testing.T) {
	t.Run("delegated", func(t *testing.T) {
		ts := setup(t, scenarioStore(), stubCompleter{reply: "Two students study tech."})
		resp, body := do(t, http.MethodPost, ts.URL+"/ask-llm", map[string]string{"question": "summarise the class"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Two students study tech.", body["answer"])
	})

	t.Run("completer failure", func(t *testing.T) {
		ts := setup(t, scenarioStore(), stubCompleter{err: errors.New("quota")})
		resp, body := do(t, http.MethodPost, ts.URL+"/ask-llm", map[string]string{"question": "summarise the class"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, insight.FallbackAnswer, body["answer"])
	})

	t.Run("storage failure", func(t *testing.T) {
		ts := setup(t, brokenStore{}, nil)
		resp, body := do(t, http.MethodPost, ts.URL+"/ask-llm", map[string]string{"question": "total?"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, insight.FallbackAnswer, body["answer"])
	})

	t.Run("bad body", func(t *testing.T) {
		ts := setup(t, scenarioStore(), nil)
		resp, body := do(t, http.MethodPost, ts.URL+"/ask-llm", "{oops")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Please provide a question.", body["answer"])
	})

	t.Run("priority female over male", func(t *testing.T) {
		ts := setup(t, scenarioStore(), nil)
		_, body := do(t, http.MethodPost, ts.URL+"/ask-llm", map[string]string{"question": "female and male totals"})
		assert.Equal(t, "There are 1 female students enrolled.", body["answer"])
	})
}

func TestCORSAndHealthAndMetrics(t *testing.T) {
	ts := setup(t, scenarioStore(), nil)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5500")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	list(t, ts.URL+"/students")

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `test_http_requests_total{method="GET",route="GET /students",status="200"} 1`)
}
