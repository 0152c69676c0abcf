package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dalfonso89/currency-converter/internal/converter"
	"github.com/dalfonso89/currency-converter/internal/models"
	"github.com/dalfonso89/currency-converter/internal/ratelimit"
	"github.com/dalfonso89/currency-converter/internal/testutils"
)

// IntegrationTestSuite runs the full router behind an httptest server
type IntegrationTestSuite struct {
	server *httptest.Server
	client *http.Client
}

func NewIntegrationTestSuite(t *testing.T, handlers *Handlers) *IntegrationTestSuite {
	t.Helper()
	server := httptest.NewServer(handlers.SetupRoutes())
	t.Cleanup(server.Close)

	return &IntegrationTestSuite{
		server: server,
		client: server.Client(),
	}
}

func (suite *IntegrationTestSuite) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request, err := http.NewRequest(method, suite.server.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := suite.client.Do(request)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	t.Cleanup(func() { response.Body.Close() })
	return response
}

func decode(t *testing.T, response *http.Response, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestIntegration_SessionFlow(t *testing.T) {
	suite := NewIntegrationTestSuite(t, newTestHandlers(t))

	response := suite.do(t, "POST", "/api/v1/sessions", nil)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", response.StatusCode)
	}
	var created models.SessionResponse
	decode(t, response, &created)
	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("session id %q is not a UUID", created.ID)
	}
	base := "/api/v1/sessions/" + created.ID

	text := func(s string) models.EditInputRequest { return models.EditInputRequest{Text: &s} }

	var edited models.SessionResponse
	decode(t, suite.do(t, "PUT", base+"/input", text("12.3")), &edited)
	if edited.Accepted == nil || !*edited.Accepted || edited.Input != "12.3" {
		t.Fatalf("edit 12.3 = %+v", edited)
	}

	var rejected models.SessionResponse
	decode(t, suite.do(t, "PUT", base+"/input", text("12.3.4")), &rejected)
	if rejected.Accepted == nil || *rejected.Accepted {
		t.Errorf("edit 12.3.4 accepted: %+v", rejected)
	}
	if rejected.Input != "12.3" {
		t.Errorf("input after rejected edit = %q, want 12.3", rejected.Input)
	}

	decode(t, suite.do(t, "PUT", base+"/input", text("10")), &edited)

	var converted models.SessionResponse
	decode(t, suite.do(t, "POST", base+"/convert", nil), &converted)
	if converted.Result != "$10 = Rp 168,030.00" {
		t.Errorf("result = %q", converted.Result)
	}

	var fetched models.SessionResponse
	decode(t, suite.do(t, "GET", base, nil), &fetched)
	if fetched.Input != "10" || fetched.Result != converted.Result {
		t.Errorf("fetched = %+v", fetched)
	}

	if response := suite.do(t, "DELETE", base, nil); response.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", response.StatusCode)
	}
	if response := suite.do(t, "GET", base, nil); response.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", response.StatusCode)
	}
	if response := suite.do(t, "DELETE", base, nil); response.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", response.StatusCode)
	}
}

func TestIntegration_SessionConvertEmptyInput(t *testing.T) {
	suite := NewIntegrationTestSuite(t, newTestHandlers(t))

	var created models.SessionResponse
	decode(t, suite.do(t, "POST", "/api/v1/sessions", nil), &created)

	var converted models.SessionResponse
	decode(t, suite.do(t, "POST", "/api/v1/sessions/"+created.ID+"/convert", nil), &converted)
	if converted.Result != converter.InvalidInputMessage {
		t.Errorf("result = %q, want %q", converted.Result, converter.InvalidInputMessage)
	}
}

func TestIntegration_EditMissingText(t *testing.T) {
	suite := NewIntegrationTestSuite(t, newTestHandlers(t))

	var created models.SessionResponse
	decode(t, suite.do(t, "POST", "/api/v1/sessions", nil), &created)

	response := suite.do(t, "PUT", "/api/v1/sessions/"+created.ID+"/input", map[string]string{})
	if response.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", response.StatusCode)
	}
}

func TestIntegration_UnknownSession(t *testing.T) {
	suite := NewIntegrationTestSuite(t, newTestHandlers(t))

	response := suite.do(t, "POST", "/api/v1/sessions/"+uuid.NewString()+"/convert", nil)
	if response.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", response.StatusCode)
	}
}

func TestIntegration_ConvertPost(t *testing.T) {
	suite := NewIntegrationTestSuite(t, newTestHandlers(t))

	response := suite.do(t, "POST", "/api/v1/convert", models.ConvertRequest{Input: "10"})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", response.StatusCode)
	}
	var converted models.ConvertResponse
	decode(t, response, &converted)
	if converted.Result != "$10 = Rp 168,030.00" {
		t.Errorf("result = %q", converted.Result)
	}
	if response.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestIntegration_RateLimited(t *testing.T) {
	cfg := testutils.MockConfig()
	cfg.RateLimitBurst = 2
	cfg.RateLimitRequests = 1
	limiter := ratelimit.NewLimiter(cfg, testutils.MockLogger())
	t.Cleanup(limiter.Stop)

	handlers := newTestHandlers(t)
	handlers.rateLimiter = limiter
	suite := NewIntegrationTestSuite(t, handlers)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		statuses = append(statuses, suite.do(t, "GET", "/health", nil).StatusCode)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK || statuses[2] != http.StatusTooManyRequests {
		t.Errorf("statuses = %v, want [200 200 429]", statuses)
	}
}

func TestIntegration_ConcurrentSessionEdits(t *testing.T) {
	suite := NewIntegrationTestSuite(t, newTestHandlers(t))

	var created models.SessionResponse
	decode(t, suite.do(t, "POST", "/api/v1/sessions", nil), &created)
	base := "/api/v1/sessions/" + created.ID

	var waitGroup sync.WaitGroup
	errors := make(chan error, 40)
	for i := 0; i < 20; i++ {
		waitGroup.Add(1)
		go func(i int) {
			defer waitGroup.Done()
			payload, _ := json.Marshal(map[string]string{"text": fmt.Sprintf("%d", i)})
			request, _ := http.NewRequest("PUT", suite.server.URL+base+"/input", bytes.NewReader(payload))
			request.Header.Set("Content-Type", "application/json")
			response, err := suite.client.Do(request)
			if err != nil {
				errors <- err
				return
			}
			response.Body.Close()

			response, err = suite.client.Post(suite.server.URL+base+"/convert", "application/json", nil)
			if err != nil {
				errors <- err
				return
			}
			response.Body.Close()
		}(i)
	}
	waitGroup.Wait()
	close(errors)

	for err := range errors {
		t.Errorf("concurrent request failed: %v", err)
	}

	var final models.SessionResponse
	decode(t, suite.do(t, "GET", base, nil), &final)
	if final.Result == "" || final.Result == converter.InvalidInputMessage {
		t.Errorf("final result = %q", final.Result)
	}
}
