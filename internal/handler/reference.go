package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxbuddy-backend/internal/taxdata"
)

// ReferenceHandler 只读参考数据接口
type ReferenceHandler struct{}

func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

// Scenarios 演示场景列表
func (h *ReferenceHandler) Scenarios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scenarios": taxdata.Scenarios})
}

// FAQ 常见问题列表
func (h *ReferenceHandler) FAQ(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": taxdata.CommonQuestions})
}

// Deductions 常见抵扣项列表
func (h *ReferenceHandler) Deductions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"deductions": taxdata.CommonDeductions})
}

// Deadlines 报税截止日期列表
func (h *ReferenceHandler) Deadlines(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"deadlines": taxdata.Deadlines})
}
