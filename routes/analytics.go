package routes

import (
	"strconv"
	"time"

	"github.com/Shielded-Bit/QABA-sub000/services"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
)

// AgentAnalytics returns the caller's listing activity bucketed by month for
// one year (default), or by year over a range with mode=yearly. Restricted
// to the agent role by route middleware.
func AgentAnalytics(ctx iris.Context) {
	agentID := utils.ContextUserID(ctx)

	mode := ctx.URLParamDefault("mode", "monthly")
	switch mode {
	case "monthly":
		rawYear := ctx.URLParamDefault("year", strconv.Itoa(time.Now().Year()))
		year, err := strconv.Atoi(rawYear)
		if err != nil {
			utils.CreateFieldError(ctx, "year", "year must be an integer")
			return
		}

		buckets, err := services.AgentMonthlyAnalytics(storage.DB, agentID, year)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		utils.Respond(ctx, iris.StatusOK, "Analytics", iris.Map{"year": year, "buckets": buckets})

	case "yearly":
		currentYear := time.Now().Year()
		fromYear, err := strconv.Atoi(ctx.URLParamDefault("from", strconv.Itoa(currentYear-4)))
		if err != nil {
			utils.CreateFieldError(ctx, "from", "from must be an integer")
			return
		}
		toYear, err := strconv.Atoi(ctx.URLParamDefault("to", strconv.Itoa(currentYear)))
		if err != nil {
			utils.CreateFieldError(ctx, "to", "to must be an integer")
			return
		}
		if fromYear > toYear {
			utils.CreateFieldError(ctx, "from", "from must not be after to")
			return
		}

		buckets, err := services.AgentYearlyAnalytics(storage.DB, agentID, fromYear, toYear)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		utils.Respond(ctx, iris.StatusOK, "Analytics", iris.Map{"from": fromYear, "to": toYear, "buckets": buckets})

	default:
		utils.CreateFieldError(ctx, "mode", "mode must be monthly or yearly")
	}
}
