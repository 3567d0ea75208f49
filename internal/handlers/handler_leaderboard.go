package handlers

import (
	"net/http"

	"github.com/echopind/echopind_backend/internal/dto"
	"github.com/echopind/echopind_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// LeaderboardEntry is one row of the preview board.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	School string `json:"school"`
	Points int    `json:"points"`
}

// LeaderboardPreviewResponse is the body of GET /leaderboard/preview.
// Viewer is set only when the request carried a valid access token.
type LeaderboardPreviewResponse struct {
	Entries []LeaderboardEntry    `json:"entries"`
	Viewer  *dto.IdentityResponse `json:"viewer"`
}

var leaderboardPreview = []LeaderboardEntry{
	{Rank: 1, Name: "Aarav S.", School: "Green Valley High", Points: 1840},
	{Rank: 2, Name: "Mia K.", School: "Riverside Academy", Points: 1725},
	{Rank: 3, Name: "Noah P.", School: "Green Valley High", Points: 1610},
}

// leaderboardPreviewHandler godoc
// @Summary Leaderboard preview
// @Description Public preview of the leaderboard. Authenticated callers also get their own identity back.
// @Tags leaderboard
// @Produce json
// @Success 200 {object} LeaderboardPreviewResponse
// @Router /leaderboard/preview [get]
func leaderboardPreviewHandler(c *gin.Context) {
	resp := LeaderboardPreviewResponse{Entries: leaderboardPreview}
	if id, ok := middleware.GetIdentityFromContext(c); ok {
		viewer := dto.ToIdentityResponse(id)
		resp.Viewer = &viewer
	}
	c.JSON(http.StatusOK, resp)
}
