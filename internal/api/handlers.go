package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/infrax/infra-engine/internal/advisor"
	"github.com/infrax/infra-engine/internal/cost"
	"github.com/infrax/infra-engine/internal/repository"
	"github.com/infrax/infra-engine/internal/types"
)

// runWorkflowHandler handles POST /api/v1/workflows/intelligent. A step
// failure is still a 200: the partial result carries success=false plus
// the failed step. Only request-shape problems are rejected up front.
func (s *Server) runWorkflowHandler(c *gin.Context) {
	var req types.WorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result, err := s.orchestrator.Run(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listWorkflowsHandler(c *gin.Context) {
	summaries, err := s.store.ListWorkflows(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if summaries == nil {
		summaries = []types.WorkflowSummary{}
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) getWorkflowHandler(c *gin.Context) {
	result, err := s.store.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getCodeHandler returns the workflow's generated code with the text of
// its latest stored version, so advisor edits are reflected
func (s *Server) getCodeHandler(c *gin.Context) {
	workflowID := c.Param("id")
	result, err := s.store.GetWorkflow(c.Request.Context(), workflowID)
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Code == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow has no generated code"})
		return
	}

	code := *result.Code
	if latest, err := s.store.LatestCode(c.Request.Context(), workflowID); err == nil {
		code.Code = latest.Code
	}
	c.JSON(http.StatusOK, code)
}

type appendCodeRequest struct {
	TerraformCode     string           `json:"terraform_code" binding:"required"`
	ChangeDescription string           `json:"change_description"`
	ModifiedBy        types.ModifiedBy `json:"modified_by"`
}

func (s *Server) appendCodeVersionHandler(c *gin.Context) {
	var req appendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	modifiedBy := req.ModifiedBy
	switch modifiedBy {
	case "":
		modifiedBy = types.ModifiedByUser
	case types.ModifiedByUser, types.ModifiedByAdvisor:
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "modified_by must be user or ai-advisor"})
		return
	}

	version, err := s.store.AppendCodeVersion(c.Request.Context(), c.Param("id"), req.TerraformCode, modifiedBy, req.ChangeDescription)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, version)
}

func (s *Server) listCodeVersionsHandler(c *gin.Context) {
	versions, err := s.store.ListCodeVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if versions == nil {
		versions = []types.CodeVersion{}
	}
	c.JSON(http.StatusOK, versions)
}

func (s *Server) getCodeVersionHandler(c *gin.Context) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "version must be an integer"})
		return
	}

	entry, err := s.store.GetCodeVersion(c.Request.Context(), c.Param("id"), version)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type forecastRequest struct {
	Months     int                `json:"months"`
	GrowthRate float64            `json:"growth_rate"`
	Pattern    types.UsagePattern `json:"pattern"`
}

// forecastHandler projects the stored workflow's base monthly cost
func (s *Server) forecastHandler(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result, err := s.store.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Cost == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow has no cost estimate"})
		return
	}

	projections, err := cost.Project(result.Cost.BaseMonthlyCost, req.Months, req.GrowthRate, req.Pattern)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workflow_id":       result.WorkflowID,
		"base_monthly_cost": result.Cost.BaseMonthlyCost,
		"pattern":           req.Pattern,
		"projections":       projections,
	})
}

type explainCostRequest struct {
	Question string `json:"question" binding:"required"`
}

// explainCostHandler answers a natural-language question about the
// stored workflow's cost estimate
func (s *Server) explainCostHandler(c *gin.Context) {
	var req explainCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result, err := s.store.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Cost == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow has no cost estimate"})
		return
	}

	answer, err := s.advisor.ExplainCost(c.Request.Context(), result.Cost, req.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow_id": result.WorkflowID, "answer": answer})
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// advisorChatHandler grounds a chat turn on the workflow's current code
func (s *Server) advisorChatHandler(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	workflowID := c.Param("id")
	latest, err := s.store.LatestCode(c.Request.Context(), workflowID)
	if errors.Is(err, repository.ErrVersionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow has no code to discuss"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	reply, err := s.advisor.Chat(c.Request.Context(), latest.Code, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow_id": workflowID, "reply": reply})
}

type codeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (s *Server) advisorValidateHandler(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	findings := advisor.ValidateHCL(req.Code)
	if findings == nil {
		findings = []types.Finding{}
	}
	c.JSON(http.StatusOK, gin.H{"valid": len(findings) == 0, "findings": findings})
}

func (s *Server) advisorScanHandler(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	findings, score := advisor.Analyze(req.Code)
	if findings == nil {
		findings = []types.Finding{}
	}
	c.JSON(http.StatusOK, gin.H{"score": score, "findings": findings})
}

type queryRequest struct {
	Code     string `json:"code" binding:"required"`
	Question string `json:"question" binding:"required"`
}

func (s *Server) advisorQueryHandler(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	answer, err := s.advisor.Query(c.Request.Context(), req.Code, req.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
