package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/mission-control/internal/adapters/http/api"
	"github.com/okian/mission-control/internal/adapters/repository"
	"github.com/okian/mission-control/internal/adapters/repository/memstore"
	"github.com/okian/mission-control/internal/adapters/workspace"
	service "github.com/okian/mission-control/internal/app"
	"github.com/okian/mission-control/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)

func newMux(store *memstore.Store, opts ...service.Option) *http.ServeMux {
	opts = append([]service.Option{service.WithClock(func() time.Time { return now })}, opts...)
	svc := service.New(store, opts...)
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return mux
}

func do(h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestPartnerRoutes(t *testing.T) {
	Convey("Given a dashboard API over an in-memory store", t, func() {
		store := memstore.New()
		recent := now.Add(-3 * 24 * time.Hour)
		store.Seed(repository.TablePartners, []model.Partner{
			{ID: "p1", Name: "Acme", PipelineStatus: model.StageWarm, LastContactAt: &recent, HealthScore: 10},
			{ID: "p2", Name: "Blue", PipelineStatus: model.StageProspect},
		})
		mux := newMux(store)

		Convey("GET /api/partners returns partners with fresh health", func() {
			w, body := do(mux, http.MethodGet, "/api/partners", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			ps := body["partners"].([]any)
			So(len(ps), ShouldEqual, 2)
			So(ps[0].(map[string]any)["health_score"], ShouldEqual, 100.0)
			So(ps[1].(map[string]any)["health_score"], ShouldEqual, 10.0)
		})

		Convey("GET /api/partners filters by status", func() {
			_, body := do(mux, http.MethodGet, "/api/partners?status=prospect", "")
			So(len(body["partners"].([]any)), ShouldEqual, 1)
		})

		Convey("an unsafe search is a 400 before any store call", func() {
			w, body := do(mux, http.MethodGet, "/api/partners?search="+"%27%3B%20DROP%20TABLE%20partners--", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(body["partners"], ShouldResemble, []any{})
			So(store.Calls(), ShouldBeEmpty)
		})

		Convey("a store failure is a 500 with an empty collection", func() {
			store.Fail(repository.TablePartners, "select", errors.New("connection refused"))
			w, body := do(mux, http.MethodGet, "/api/partners", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(body["error"], ShouldContainSubstring, "connection refused")
			So(body["partners"], ShouldResemble, []any{})
		})

		Convey("POST /api/partners applies defaults", func() {
			w, body := do(mux, http.MethodPost, "/api/partners", `{"name":"Corner"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(body["pipeline_status"], ShouldEqual, "prospect")
			So(body["partner_type"], ShouldEqual, "reseller")
			So(body["health_score"], ShouldEqual, 10.0)
		})

		Convey("POST /api/partners rejects bad input", func() {
			w, _ := do(mux, http.MethodPost, "/api/partners", `{"name":""}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			w, _ = do(mux, http.MethodPost, "/api/partners", `{bad json`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /api/partners/{id} returns the detail", func() {
			w, body := do(mux, http.MethodGet, "/api/partners/p1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["partner"].(map[string]any)["name"], ShouldEqual, "Acme")
			So(body["contacts"], ShouldResemble, []any{})
			So(body["interactions"], ShouldResemble, []any{})
			So(body["action_items"], ShouldResemble, []any{})
			So(body, ShouldNotContainKey, "errors")
		})

		Convey("GET /api/partners/{id} for a missing partner is 404", func() {
			w, body := do(mux, http.MethodGet, "/api/partners/zzz", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(body["error"], ShouldNotBeEmpty)
		})

		Convey("PATCH /api/partners/{id} updates and recomputes", func() {
			w, body := do(mux, http.MethodPatch, "/api/partners/p2", `{"pipeline_status":"warm","last_contact_at":"2026-05-10T09:00:00Z"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["pipeline_status"], ShouldEqual, "warm")
			So(body["health_score"], ShouldEqual, 70.0)
		})

		Convey("PATCH with only unknown fields is 400", func() {
			w, _ := do(mux, http.MethodPatch, "/api/partners/p2", `{"created_at":"x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("DELETE /api/partners/{id} succeeds", func() {
			w, body := do(mux, http.MethodDelete, "/api/partners/p2", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["success"], ShouldEqual, true)
			So(len(store.Rows(repository.TablePartners)), ShouldEqual, 1)
		})
	})
}

func TestRecordRoutes(t *testing.T) {
	Convey("Given a partner never contacted", t, func() {
		store := memstore.New()
		store.Seed(repository.TablePartners, []model.Partner{{ID: "p1", Name: "Acme", PipelineStatus: model.StageWarm}})
		mux := newMux(store)

		Convey("POST /api/interactions touches the partner", func() {
			w, body := do(mux, http.MethodPost, "/api/interactions", `{"partner_id":"p1","summary":"call"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(body["type"], ShouldEqual, "note")

			_, detail := do(mux, http.MethodGet, "/api/partners/p1", "")
			So(detail["partner"].(map[string]any)["health_score"], ShouldEqual, 100.0)
			So(len(detail["interactions"].([]any)), ShouldEqual, 1)
		})

		Convey("POST /api/interactions still succeeds when the touch fails", func() {
			store.Fail(repository.TablePartners, "update", errors.New("boom"))
			w, _ := do(mux, http.MethodPost, "/api/interactions", `{"partner_id":"p1","summary":"call"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
		})

		Convey("contacts support create, patch and both delete forms", func() {
			w, c := do(mux, http.MethodPost, "/api/contacts", `{"partner_id":"p1","name":"Ann"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			id := c["id"].(string)

			w, c = do(mux, http.MethodPatch, "/api/contacts/"+id, `{"role":"owner"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(c["role"], ShouldEqual, "owner")

			w, _ = do(mux, http.MethodDelete, "/api/contacts?id="+id, "")
			So(w.Code, ShouldEqual, http.StatusOK)

			_, c = do(mux, http.MethodPost, "/api/contacts", `{"partner_id":"p1","name":"Bob"}`)
			w, _ = do(mux, http.MethodDelete, "/api/contacts/"+c["id"].(string), "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(store.Rows(repository.TableContacts), ShouldBeEmpty)
		})

		Convey("DELETE /api/contacts without an id is 400", func() {
			w, _ := do(mux, http.MethodDelete, "/api/contacts", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("action items move to done with a completion time", func() {
			w, a := do(mux, http.MethodPost, "/api/action-items", `{"partner_id":"p1","title":"Quote"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(a["status"], ShouldEqual, "open")
			So(a["priority"], ShouldEqual, "medium")

			w, a = do(mux, http.MethodPatch, "/api/action-items/"+a["id"].(string), `{"status":"done"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(a["completed_at"], ShouldNotBeEmpty)

			_, list := do(mux, http.MethodGet, "/api/action-items?status=done", "")
			So(len(list["action_items"].([]any)), ShouldEqual, 1)
		})

		Convey("list errors carry the collection key", func() {
			store.Fail(repository.TableInteractions, "select", errors.New("down"))
			w, body := do(mux, http.MethodGet, "/api/interactions", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(body["interactions"], ShouldResemble, []any{})
		})
	})
}

func TestPipelineRoute(t *testing.T) {
	Convey("Given partners in open and closed stages", t, func() {
		store := memstore.New()
		store.Seed(repository.TablePartners, []model.Partner{
			{ID: "a", Name: "A", PipelineStatus: model.StageActive, UnitsOrdered: 20},
			{ID: "b", Name: "B", PipelineStatus: model.StageWarm},
			{ID: "c", Name: "C", PipelineStatus: model.StageLost},
		})
		mux := newMux(store)

		Convey("every stage key is present", func() {
			w, body := do(mux, http.MethodGet, "/api/pipeline", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			stages := body["stages"].(map[string]any)
			So(len(stages), ShouldEqual, 8)
			So(stages["demo_done"], ShouldResemble, []any{})
			stats := body["stats"].(map[string]any)
			So(stats["total"], ShouldEqual, 3.0)
			So(stats["pipelineValue"], ShouldEqual, 1000.0)
			So(len(body["order"].([]any)), ShouldEqual, 8)
		})

		Convey("hide_inactive drops closed partners", func() {
			_, body := do(mux, http.MethodGet, "/api/pipeline?hide_inactive=true", "")
			So(body["stats"].(map[string]any)["total"], ShouldEqual, 2.0)
		})

		Convey("a malformed flag is 400", func() {
			w, _ := do(mux, http.MethodGet, "/api/pipeline?hide_inactive=maybe", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("a store failure keeps the stage shape", func() {
			store.Fail(repository.TablePartners, "select", errors.New("down"))
			w, body := do(mux, http.MethodGet, "/api/pipeline", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(body["error"], ShouldNotBeEmpty)
			So(len(body["stages"].(map[string]any)), ShouldEqual, 8)
		})
	})
}

func TestOptionalRoutes(t *testing.T) {
	Convey("Given optional features left unconfigured", t, func() {
		mux := newMux(memstore.New())

		Convey("GET /api/revenue is 503 with an empty history", func() {
			w, body := do(mux, http.MethodGet, "/api/revenue", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(body["revenue_by_month"], ShouldResemble, []any{})
		})

		Convey("POST /api/knowledge/search falls back to substring search", func() {
			w, body := do(mux, http.MethodPost, "/api/knowledge/search", `{"query":"restock"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["mode"], ShouldEqual, "fallback")
		})

		Convey("an empty knowledge query is 400", func() {
			w, _ := do(mux, http.MethodPost, "/api/knowledge/search", `{"query":" "}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /api/workspace is 503", func() {
			w, body := do(mux, http.MethodGet, "/api/workspace", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(body["files"], ShouldResemble, []any{})
		})
	})

	Convey("Given a workspace directory", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "notes.md"), []byte("hello\n"), 0o644), ShouldBeNil)
		mux := newMux(memstore.New(), service.WithWorkspace(workspace.New(dir, []string{"notes.md", "leads.csv"})))

		Convey("files can be listed, read and appended", func() {
			_, body := do(mux, http.MethodGet, "/api/workspace", "")
			So(len(body["files"].([]any)), ShouldEqual, 2)

			w, _ := do(mux, http.MethodPost, "/api/workspace/notes.md", `{"text":"world"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			w, body = do(mux, http.MethodGet, "/api/workspace/notes.md", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["content"], ShouldEqual, "hello\nworld\n")
		})

		Convey("names outside the allowlist are 404", func() {
			w, _ := do(mux, http.MethodGet, "/api/workspace/passwords.md", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestBasicAuth(t *testing.T) {
	Convey("Given the API behind Basic-Auth", t, func() {
		h := api.BasicAuth(newMux(memstore.New()), "ops", "s3cret", "/healthz")

		Convey("requests without credentials are challenged", func() {
			w, body := do(h, http.MethodGet, "/api/partners", "")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Header().Get("WWW-Authenticate"), ShouldEqual, `Basic realm="Mission Control"`)
			So(body["error"], ShouldNotBeEmpty)
		})

		Convey("wrong passwords are rejected", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/partners", nil)
			req.SetBasicAuth("ops", "guess")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("valid credentials pass", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/partners", nil)
			req.SetBasicAuth("ops", "s3cret")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("/healthz is exempt and serves metrics", func() {
			w, _ := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "mission_control_dashboard_")
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Errors wrapped with an operation keep their kind", t, func() {
		err := api.WrapKind("api.test", api.ErrBadRequest, errors.New("broken"))
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.test: bad request: broken")

		err = api.Wrap("api.test", repository.ErrNotFound)
		So(errors.Is(err, api.ErrNotFound), ShouldBeTrue)
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

		So(api.Wrap("api.test", nil), ShouldBeNil)
		So(api.NewKind("api.test", api.ErrUnauthorized).Error(), ShouldEqual, "api.test: unauthorized")
	})
}
