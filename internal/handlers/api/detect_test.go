package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"crisiswatch/internal/bulk"
	"crisiswatch/internal/config"
	"crisiswatch/internal/detector"
	"crisiswatch/internal/models"
	"crisiswatch/internal/notify"
	"crisiswatch/internal/server"
	"crisiswatch/internal/testutil"
)

type envelope struct {
	Status string                 `json:"status"`
	Data   models.DetectionResult `json:"data"`
	Error  string                 `json:"error"`
}

func TestDetectEndpoints(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	cat := testutil.CreateTestCategory(t, database, "crisis")
	critical := testutil.CreateTestKeyword(t, database, "kill myself", models.SeverityCritical, nil)
	testutil.CreateTestKeyword(t, database, "overdose", models.SeverityHigh, &cat.ID)

	sets, err := bulk.NewSetLibrary("")
	if err != nil {
		t.Fatalf("NewSetLibrary() error = %v", err)
	}

	cfg := &config.Config{MaxTextLength: 5000}
	srv := server.New(cfg)
	srv.RegisterRoutes(database, detector.New(database), notify.LogDispatcher{}, sets)

	post := func(t *testing.T, path, body string) (envelope, int) {
		t.Helper()
		req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := srv.App.Test(req)
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		defer resp.Body.Close()

		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		return env, resp.StatusCode
	}

	// Side-effect-free detection does not touch trigger stats.
	env, _ := post(t, "/api/detect/test", `{"text":"I want to kill myself"}`)
	if env.Status != "ok" || !env.Data.IsCrisis || env.Data.CrisisScore != 1000 {
		t.Errorf("test detection = %+v, want crisis with score 1000", env.Data)
	}

	kw, err := database.GetKeywordByID(context.Background(), critical.ID)
	if err != nil {
		t.Fatalf("GetKeywordByID() error = %v", err)
	}
	if kw.TriggerCount != 0 {
		t.Errorf("test detection recorded a trigger: count = %d", kw.TriggerCount)
	}

	// Production detection records triggers.
	env, _ = post(t, "/api/detect", `{"text":"I want to kill myself","ticket_ref":"TICKET-1"}`)
	if env.Status != "ok" || !env.Data.IsCrisis {
		t.Errorf("production detection = %+v, want crisis", env.Data)
	}

	kw, err = database.GetKeywordByID(context.Background(), critical.ID)
	if err != nil {
		t.Fatalf("GetKeywordByID() error = %v", err)
	}
	if kw.TriggerCount != 1 {
		t.Errorf("trigger_count = %d, want 1", kw.TriggerCount)
	}

	// Category scope pulls in category-bound keywords.
	env, _ = post(t, "/api/detect/test", fmt.Sprintf(`{"text":"an overdose","category_id":%q}`, cat.ID))
	if !env.Data.IsCrisis || len(env.Data.DetectedKeywords) != 1 {
		t.Errorf("scoped detection = %+v, want one high match", env.Data)
	}

	// Without the category the scoped keyword is out of reach.
	env, _ = post(t, "/api/detect/test", `{"text":"an overdose"}`)
	if env.Data.IsCrisis || len(env.Data.DetectedKeywords) != 0 {
		t.Errorf("global detection = %+v, want no matches", env.Data)
	}

	// Unknown category is a validation error.
	env, code := post(t, "/api/detect/test", `{"text":"hello","category_id":"00000000-0000-0000-0000-000000000001"}`)
	if code != 400 || env.Status != "error" || env.Error == "" {
		t.Errorf("unknown category = %d %q/%q, want 400 error envelope", code, env.Status, env.Error)
	}

	// Empty text is valid and simply matches nothing.
	env, _ = post(t, "/api/detect", `{"text":""}`)
	if env.Status != "ok" || env.Data.IsCrisis || len(env.Data.DetectedKeywords) != 0 {
		t.Errorf("empty text = %+v, want clean result", env.Data)
	}
}

func TestDetectValidationErrorEnvelope(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	critical := testutil.CreateTestKeyword(t, database, "kill myself", models.SeverityCritical, nil)

	cfg := &config.Config{MaxTextLength: 20}
	srv := server.New(cfg)

	sets, err := bulk.NewSetLibrary("")
	if err != nil {
		t.Fatalf("NewSetLibrary() error = %v", err)
	}
	srv.RegisterRoutes(database, detector.New(database), notify.LogDispatcher{}, sets)

	for _, path := range []string{"/api/detect", "/api/detect/test"} {
		t.Run(path, func(t *testing.T) {
			body := `{"text":"this text is far longer than the configured maximum length"}`
			req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := srv.App.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != 400 {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}

			var env envelope
			if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			// The error envelope must not be overwritten by a success body.
			if env.Status != "error" || env.Error == "" {
				t.Errorf("envelope = %q/%q, want error with message", env.Status, env.Error)
			}
		})
	}

	// A rejected request leaves no trace in trigger stats or counters.
	kw, err := database.GetKeywordByID(context.Background(), critical.ID)
	if err != nil {
		t.Fatalf("GetKeywordByID() error = %v", err)
	}
	if kw.TriggerCount != 0 {
		t.Errorf("trigger_count = %d, want 0 after rejected requests", kw.TriggerCount)
	}
}
