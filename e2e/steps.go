package e2e

import (
	"github.com/cucumber/godog"

	"statusreg/e2e/steps/common"
	"statusreg/e2e/steps/statuslist"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	statuslist.RegisterSteps(ctx, tc)
}
