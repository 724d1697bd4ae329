package rest

import (
	"context"

	"github.com/gofiber/fiber/v2"
	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
)

type ActivityLister interface {
	List(ctx context.Context, limit int) ([]*auditDomain.ActivityLog, error)
}

type Activity struct {
	Service ActivityLister
}

func InitRestActivity(app fiber.Router, service ActivityLister) Activity {
	rest := Activity{Service: service}
	app.Get("/activity", rest.List)

	return rest
}

// List returns the newest audit entries. limit defaults to 10 and is capped
// at 200.
func (h *Activity) List(c *fiber.Ctx) error {
	logs, err := h.Service.List(c.UserContext(), c.QueryInt("limit"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get activity",
		Results: logs,
	})
}
