package model_test

import (
	"testing"

	model "github.com/okian/mission-control/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestStages(t *testing.T) {
	convey.Convey("Given the pipeline stages", t, func() {
		stages := model.Stages()

		convey.Convey("Then there are eight of them in funnel order", func() {
			convey.So(len(stages), convey.ShouldEqual, 8)
			convey.So(stages[0], convey.ShouldEqual, model.StageProspect)
			convey.So(stages[7], convey.ShouldEqual, model.StageLost)
		})

		convey.Convey("Then every stage is valid and unknown labels are not", func() {
			for _, s := range stages {
				convey.So(s.Valid(), convey.ShouldBeTrue)
			}
			convey.So(model.Stage("churned").Valid(), convey.ShouldBeFalse)
			convey.So(model.Stage("").Valid(), convey.ShouldBeFalse)
		})

		convey.Convey("Then the active sales motion covers the four middle stages", func() {
			var active []model.Stage
			for _, s := range stages {
				if s.InActiveSales() {
					active = append(active, s)
				}
			}
			convey.So(active, convey.ShouldResemble, []model.Stage{
				model.StageWarm, model.StageDemoScheduled, model.StageDemoDone, model.StageNegotiating,
			})
		})

		convey.Convey("Then only inactive and lost are closed", func() {
			convey.So(model.StageInactive.Closed(), convey.ShouldBeTrue)
			convey.So(model.StageLost.Closed(), convey.ShouldBeTrue)
			convey.So(model.StageActive.Closed(), convey.ShouldBeFalse)
		})

		convey.Convey("Then the returned slice is a copy", func() {
			stages[0] = "mutated"
			convey.So(model.Stages()[0], convey.ShouldEqual, model.StageProspect)
		})

		convey.Convey("Then labels are human readable", func() {
			convey.So(model.StageDemoScheduled.Label(), convey.ShouldEqual, "Demo Scheduled")
			convey.So(model.Stage("custom").Label(), convey.ShouldEqual, "custom")
		})
	})
}
