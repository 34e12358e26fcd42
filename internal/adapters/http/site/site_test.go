package site_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/okian/mission-control/internal/adapters/http/site"
	"github.com/okian/mission-control/internal/adapters/repository"
	service "github.com/okian/mission-control/internal/app"
	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/internal/domain/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeDeps struct {
	partners     []model.Partner
	pipeErr      error
	listErr      error
	detail       service.PartnerDetail
	detailErr    error
	hideInactive bool
}

func (f *fakeDeps) Pipeline(_ context.Context, hide bool) (pipeline.Result, error) {
	f.hideInactive = hide
	if f.pipeErr != nil {
		return pipeline.Aggregate(nil, pipeline.Options{HideInactive: hide}), f.pipeErr
	}
	return pipeline.Aggregate(f.partners, pipeline.Options{HideInactive: hide}), nil
}

func (f *fakeDeps) ListPartners(context.Context, url.Values) ([]model.Partner, error) {
	return f.partners, f.listErr
}

func (f *fakeDeps) PartnerDetail(context.Context, string) (service.PartnerDetail, error) {
	return f.detail, f.detailErr
}

func serve(deps site.Dependencies, path string) *httptest.ResponseRecorder {
	h, err := site.New(deps, nil)
	So(err, ShouldBeNil)
	mux := http.NewServeMux()
	h.Register(context.Background(), mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPages(t *testing.T) {
	last := time.Date(2026, 10, 10, 12, 0, 0, 0, time.UTC)
	deps := &fakeDeps{partners: []model.Partner{
		{ID: "p1", Name: "Acme Clinics", PipelineStatus: model.StageWarm, HealthScore: 100, LastContactAt: &last},
		{ID: "p2", Name: "Dormant Dental", PipelineStatus: model.StageInactive, HealthScore: 10},
	}}

	Convey("Given the dashboard pages", t, func() {
		Convey("The root path renders the pipeline board", func() {
			rec := serve(deps, "/")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(rec.Body.String(), ShouldContainSubstring, "Acme Clinics")
			So(rec.Body.String(), ShouldContainSubstring, "Oct 10, 2026 12:00")
			So(rec.Body.String(), ShouldContainSubstring, `class="badge healthy"`)
		})

		Convey("hide_inactive drops inactive partners from the board", func() {
			rec := serve(deps, "/pipeline?hide_inactive=true")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.hideInactive, ShouldBeTrue)
			So(rec.Body.String(), ShouldNotContainSubstring, "Dormant Dental")
		})

		Convey("The partner list renders every row", func() {
			rec := serve(deps, "/partners?search=ac")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "Dormant Dental")
			So(rec.Body.String(), ShouldContainSubstring, `value="ac"`)
			So(rec.Body.String(), ShouldContainSubstring, "never")
		})

		Convey("A failed read still renders with an error banner", func() {
			rec := serve(&fakeDeps{pipeErr: errors.New("store down")}, "/pipeline")
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			So(rec.Body.String(), ShouldContainSubstring, `role="alert"`)
			So(rec.Body.String(), ShouldContainSubstring, "store down")
		})

		Convey("The partner page shows related records and section errors", func() {
			d := &fakeDeps{detail: service.PartnerDetail{
				Partner:      model.Partner{ID: "p1", Name: "Acme Clinics", PipelineStatus: model.StageWarm, HealthScore: 40},
				Contacts:     []model.Contact{{Name: "Dana", Role: "owner", IsPrimary: true}},
				Interactions: []model.Interaction{},
				ActionItems:  []model.ActionItem{{Title: "Send contract", Status: "open", Priority: "high"}},
				Errors:       map[string]string{"interactions": "timeout"},
			}}
			rec := serve(d, "/partners/p1")
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := rec.Body.String()
			So(body, ShouldContainSubstring, "<title>Acme Clinics")
			So(body, ShouldContainSubstring, "Dana")
			So(body, ShouldContainSubstring, "Send contract")
			So(body, ShouldContainSubstring, "interactions: timeout")
			So(body, ShouldContainSubstring, "No interactions.")
		})

		Convey("An unknown partner is a 404 page", func() {
			rec := serve(&fakeDeps{detailErr: repository.ErrNotFound}, "/partners/missing")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(rec.Body.String(), ShouldContainSubstring, "<title>Partner")
		})

		Convey("The stylesheet is served from the embedded assets", func() {
			rec := serve(deps, "/static/style.css")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, ".badge")
		})
	})
}
