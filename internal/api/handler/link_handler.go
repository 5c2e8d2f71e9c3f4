package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/pkg/response"
)

type submitLinkRequest struct {
	URL string `json:"url" binding:"required"`
}

type submitLinkResponse struct {
	ID     string           `json:"id"`
	URL    string           `json:"url"`
	Status model.LinkStatus `json:"status"`
}

// ListLinks 排行榜
// @Summary 已通过审核的链接排行
// @Description score 降序，同分时新提交的在前
// @Tags 链接
// @Produce json
// @Success 200 {object} response.Response{data=[]model.FeedItem}
// @Failure 503 {object} response.Response
// @Router /api/v1/links [get]
func (h *Handler) ListLinks(c *gin.Context) {
	items, err := h.feed.ListApproved(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// SubmitLink 提交链接
// @Summary 提交链接（进入待审核）
// @Tags 链接
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body submitLinkRequest true "链接"
// @Success 201 {object} response.Response{data=submitLinkResponse}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/links [post]
func (h *Handler) SubmitLink(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req submitLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	link, err := h.submissions.SubmitLink(c.Request.Context(), p.UserID, req.URL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submitLinkResponse{ID: link.ID, URL: link.URL, Status: link.Status})
}

// GetLink 查询单个链接
// @Summary 查询链接
// @Tags 链接
// @Produce json
// @Param id path string true "链接ID"
// @Success 200 {object} response.Response{data=model.Link}
// @Failure 404 {object} response.Response
// @Router /api/v1/links/{id} [get]
func (h *Handler) GetLink(c *gin.Context) {
	link, err := h.feed.GetLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, link)
}

// Vote 投票
// @Summary 为链接投票（每人每链接一次）
// @Tags 链接
// @Produce json
// @Security BearerAuth
// @Param id path string true "链接ID"
// @Success 200 {object} response.Response{data=service.VoteResult}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/links/{id}/vote [post]
func (h *Handler) Vote(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	res, err := h.votes.CastVote(c.Request.Context(), c.Param("id"), p.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MyUpvotes 当前用户投过票的链接
// @Summary 我的投票
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]string}
// @Router /api/v1/users/me/upvotes [get]
func (h *Handler) MyUpvotes(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	ids, err := h.votes.ListUpvoted(c.Request.Context(), p.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"link_ids": ids})
}
