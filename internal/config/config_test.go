package config_test

import (
	"testing"

	"github.com/okian/mission-control/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":3000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.DefaultListLimit, convey.ShouldEqual, 100)
			convey.So(cfg.MaxListLimit, convey.ShouldEqual, 500)
			convey.So(cfg.RevenueMonths, convey.ShouldEqual, 12)
			convey.So(cfg.WorkspaceFiles, convey.ShouldContain, "notes.md")
			convey.So(cfg.AIEnabled(), convey.ShouldBeFalse)
		})

		convey.Convey("Then validation should demand a store and credentials", func() {
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "store_url")

			cfg.StoreURL = "http://store"
			err = cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "auth_user")

			cfg.AuthDisabled = true
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then AIEnabled should follow either key", func() {
			cfg.AnthropicKey = "sk-ant"
			convey.So(cfg.AIEnabled(), convey.ShouldBeTrue)
		})
	})
}
