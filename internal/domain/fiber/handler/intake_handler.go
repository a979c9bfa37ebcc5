package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/recruitdesk/candidate-intake/internal/dto"
	"github.com/recruitdesk/candidate-intake/internal/middleware"
	"github.com/recruitdesk/candidate-intake/internal/model"
	"github.com/recruitdesk/candidate-intake/internal/response"
	"github.com/recruitdesk/candidate-intake/internal/usecase"
	"github.com/recruitdesk/candidate-intake/internal/util"
)

const maxUploadBytes = 5 * 1024 * 1024

type IntakeHandler struct {
	uc *usecase.IntakeUsecase
}

func NewIntakeHandler(uc *usecase.IntakeUsecase) *IntakeHandler {
	return &IntakeHandler{uc: uc}
}

func (h *IntakeHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/tenants/:tenantId/batches", middleware.RateLimiter(5, time.Minute), h.ProcessBatch)
	app.Post("/tenants/:tenantId/candidates", h.SubmitCandidate)
	app.Post("/tenants/:tenantId/candidates/upload", middleware.RateLimiter(10, time.Minute), h.UploadResume)
	app.Get("/tenants/:tenantId/candidates", h.ListCandidates)
	app.Get("/tenants/:tenantId/candidates/:id", h.GetCandidate)
	app.Put("/tenants/:tenantId/weights", h.SetWeights)
	app.Get("/tenants/:tenantId/weights", h.GetWeights)
	app.Post("/tenants/:tenantId/jobs", h.CreateJob)
}

// ProcessBatch accepts either a JSON body with submissions or a multipart
// CSV upload, and streams BatchEvents back as NDJSON so callers can watch
// progress without waiting for the whole batch.
func (h *IntakeHandler) ProcessBatch(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	req, err := h.parseBatchRequest(c)
	if err != nil {
		return err
	}
	if len(req.Submissions) == 0 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "batch contains no submissions",
		})
	}

	opts := usecase.BatchOptions{
		ForceReenrich:               req.ForceReenrich,
		RequireEnrichmentForScoring: req.RequireEnrichmentForScoring,
		JobID:                       req.JobID,
	}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := h.uc.ProcessBatch(ctx, tenantID, req.Submissions, req.Weights, opts)
	if err != nil {
		cancel()
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to start batch",
		}, err)
	}

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		enc := json.NewEncoder(w)
		for event := range events {
			if err := enc.Encode(event); err != nil {
				break
			}
			if err := w.Flush(); err != nil {
				// Client went away. Cancel and drain so the orchestrator
				// finishes its in-flight item and stops.
				break
			}
		}
		cancel()
		for range events {
		}
	}))
	return nil
}

func (h *IntakeHandler) parseBatchRequest(c *fiber.Ctx) (*dto.BatchRequest, error) {
	file, err := c.FormFile("file")
	if err == nil {
		if file.Size > maxUploadBytes {
			return nil, util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "batch file is too large (max 5MB)",
			})
		}
		f, err := file.Open()
		if err != nil {
			return nil, util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "cannot open batch file",
			}, err)
		}
		defer f.Close()

		submissions, err := util.ParseSubmissions(f)
		if err != nil {
			return nil, util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "cannot parse batch file",
			}, err)
		}

		req := &dto.BatchRequest{
			Submissions:                 submissions,
			ForceReenrich:               c.QueryBool("force_reenrich"),
			RequireEnrichmentForScoring: c.QueryBool("require_enrichment_for_scoring"),
		}
		if raw := c.Query("job_id"); raw != "" {
			jobID, err := uuid.Parse(raw)
			if err != nil {
				return nil, util.ErrorResponse(c, util.ErrorResponseFormat{
					Code:    fiber.StatusBadRequest,
					Message: "invalid job_id",
				}, err)
			}
			req.JobID = &jobID
		}
		return req, nil
	}

	var req dto.BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid batch request body",
		}, err)
	}
	return &req, nil
}

func (h *IntakeHandler) SubmitCandidate(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	var req dto.SubmitCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid submission body",
		}, err)
	}

	result, err := h.uc.SubmitOne(c.Context(), tenantID, req.Submission, req.Weights, usecase.BatchOptions{
		ForceReenrich:               req.ForceReenrich,
		RequireEnrichmentForScoring: req.RequireEnrichmentForScoring,
		JobID:                       req.JobID,
	})
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to process submission",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Submission processed",
		Data:    result,
	})
}

// UploadResume accepts a single PDF resume, extracts its text, and runs the
// extracted content through the per-item pipeline.
func (h *IntakeHandler) UploadResume(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "resume file is required",
		}, err)
	}
	if file.Size > maxUploadBytes {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "resume file is too large (max 5MB)",
		})
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "unsupported resume file type",
		})
	}

	savePath := filepath.Join("./uploads/resumes/", fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(file.Filename)))
	if err := c.SaveFile(file, savePath); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot save resume file",
		}, err)
	}

	content, err := util.ExtractPDFOCR(savePath)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: "failed to extract resume text",
		}, err)
	}

	submission := model.CandidateSubmission{
		Name:          c.FormValue("name"),
		Email:         c.FormValue("email"),
		Company:       c.FormValue("company"),
		Title:         c.FormValue("title"),
		Location:      c.FormValue("location"),
		ProfileHandle: c.FormValue("profile_handle"),
		Summary:       content,
	}

	result, err := h.uc.SubmitOne(c.Context(), tenantID, submission, nil, usecase.BatchOptions{})
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to process resume",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Resume processed",
		Data:    result,
	})
}

func (h *IntakeHandler) GetCandidate(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid candidate id",
		}, err)
	}

	candidate, err := h.uc.GetCandidate(tenantID, id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "candidate not found",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get candidate",
		Data:    candidate,
	})
}

func (h *IntakeHandler) ListCandidates(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	candidates, total, page, pageSize, err := h.uc.ListCandidates(tenantID, c.QueryInt("page", 1), c.QueryInt("page_size", 50))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list candidates",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list candidates",
		Data:       candidates,
		Pagination: response.NewPagination(page, pageSize, total),
	})
}

func (h *IntakeHandler) SetWeights(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	var req dto.WeightsRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid weights body",
		}, err)
	}

	if err := h.uc.SetWeights(tenantID, req.Weights); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to store weights",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Weights updated",
		Data:    dto.WeightsDTO{Weights: req.Weights, Explicit: true},
	})
}

func (h *IntakeHandler) GetWeights(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	weights, explicit, err := h.uc.GetWeights(tenantID)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to load weights",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get weights",
		Data:    dto.WeightsDTO{Weights: weights, Explicit: explicit},
	})
}

func (h *IntakeHandler) CreateJob(c *fiber.Ctx) error {
	tenantID, err := parseTenantID(c)
	if err != nil {
		return err
	}

	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid job body",
		}, err)
	}

	job, err := h.uc.CreateJob(c.Context(), tenantID, req.Title, req.Content)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create job",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Job created",
		Data:    job,
	})
}

func parseTenantID(c *fiber.Ctx) (uuid.UUID, error) {
	tenantID, err := uuid.Parse(c.Params("tenantId"))
	if err != nil {
		return uuid.Nil, util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid tenant id",
		}, err)
	}
	return tenantID, nil
}
