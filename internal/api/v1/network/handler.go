package network

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/models"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/services"
	"github.com/ekodaeng/CTGOLDMobile-sub000/internal/utils"
)

var engine *services.ReferralService

// Upline godoc
// @Summary Get upline chain
// @Description List the signed-in member's ancestors, level 1 upward. A broken link truncates the list.
// @Tags network
// @Produce json
// @Security Bearer
// @Param depth query int false "Maximum depth" default(10)
// @Success 200 {object} utils.Response{data=[]services.UplineEntry}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /network/upline [get]
func Upline(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	u := userVal.(models.User)

	depth, ok := parseDepth(c)
	if !ok {
		return
	}

	entries, err := engine.GetUplineTree(c.Request.Context(), u.ID, depth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load upline"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Upline retrieved successfully", entries))
}

// Downline godoc
// @Summary Get downline tree
// @Description Build the signed-in member's full referral tree, depth-bounded.
// @Tags network
// @Produce json
// @Security Bearer
// @Param depth query int false "Maximum depth" default(10)
// @Success 200 {object} utils.Response{data=services.DownlineNode}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /network/downline [get]
func Downline(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	u := userVal.(models.User)

	depth, ok := parseDepth(c)
	if !ok {
		return
	}

	tree, err := engine.GetDownlineTree(c.Request.Context(), u.ID, depth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load downline"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Downline retrieved successfully", tree))
}

func parseDepth(c *gin.Context) (int, bool) {
	depthStr := c.DefaultQuery("depth", strconv.Itoa(engine.MaxDepth()))
	depth, err := strconv.Atoi(depthStr)
	if err != nil || depth < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid depth"))
		return 0, false
	}
	return depth, true
}
