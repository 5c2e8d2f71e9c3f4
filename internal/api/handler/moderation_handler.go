package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/linkrank/pkg/response"
)

// Approve 审核通过
// @Summary 审核通过
// @Tags 审核
// @Produce json
// @Security BearerAuth
// @Param id path string true "链接ID"
// @Success 200 {object} response.Response{data=service.ModerationResult}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/links/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	res, err := h.moderation.Approve(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Reject 审核拒绝
// @Summary 审核拒绝
// @Tags 审核
// @Produce json
// @Security BearerAuth
// @Param id path string true "链接ID"
// @Success 200 {object} response.Response{data=service.ModerationResult}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/links/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	res, err := h.moderation.Reject(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListPending 待审核队列
// @Summary 待审核链接
// @Tags 审核
// @Produce json
// @Security BearerAuth
// @Param limit query int false "数量" default(50)
// @Success 200 {object} response.Response{data=[]model.Link}
// @Failure 403 {object} response.Response
// @Router /api/v1/moderation/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		response.BadRequest(c, "limit must be an integer")
		return
	}
	links, err := h.moderation.ListPending(c.Request.Context(), p, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, links)
}
