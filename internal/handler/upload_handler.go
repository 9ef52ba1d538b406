package handler

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"registry-web/internal/config"
	"registry-web/internal/importer"
	"registry-web/internal/models"
	"registry-web/internal/repository"
	"registry-web/internal/service"
	"registry-web/internal/utils"
	"registry-web/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

var allowedUploadExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".xlsx": true,
	".xls":  true,
}

type UploadHandler struct {
	uploadRepo  *repository.UploadRepository
	importSvc   *service.ImportService
	progress    *service.ProgressStore
	asynqClient *asynq.Client
	cfg         *config.Config
}

func NewUploadHandler(
	uploadRepo *repository.UploadRepository,
	importSvc *service.ImportService,
	progress *service.ProgressStore,
	asynqClient *asynq.Client,
	cfg *config.Config,
) *UploadHandler {
	return &UploadHandler{
		uploadRepo:  uploadRepo,
		importSvc:   importSvc,
		progress:    progress,
		asynqClient: asynqClient,
		cfg:         cfg,
	}
}

// UploadFile receives a batch file, stores it, and answers with the proposed
// column mapping and a small sample so the caller can confirm before import.
func (h *UploadHandler) UploadFile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	entityType := c.FormValue("entity_type")
	if _, ok := importer.Descriptors[entityType]; !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity type", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExtensions[ext] {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only .csv, .txt, .xlsx and .xls files are allowed", nil)
	}

	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	sessionCode := fmt.Sprintf("UPLOAD-%s", uuid.New().String()[:8])

	filePath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s%s", sessionCode, ext))
	if err := c.SaveFile(file, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}

	session := &models.UploadSession{
		SessionCode: sessionCode,
		UserID:      userID,
		EntityType:  entityType,
		Filename:    file.Filename,
		FilePath:    filePath,
		Status:      "uploaded",
	}

	inspection, err := h.importSvc.InspectUpload(session)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse uploaded file", err)
	}
	session.TotalRows = inspection.RowCount

	if err := h.uploadRepo.CreateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create upload session", err)
	}

	return utils.SuccessResponse(c, "File uploaded successfully", fiber.Map{
		"session":    session,
		"inspection": inspection,
	})
}

func (h *UploadHandler) GetSessions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)
	role := c.Locals("role").(string)

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	// Admin sees everything, users see their own uploads
	filterUserID := userID
	if role == "admin" {
		filterUserID = 0
	}

	sessions, total, err := h.uploadRepo.GetSessions(params.Limit, offset, filterUserID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve sessions", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	return utils.PaginatedResponseBuilder(c, "Sessions retrieved successfully", fiber.Map{
		"sessions":   sessions,
		"pagination": pagination,
	}, pagination)
}

func (h *UploadHandler) GetSessionDetail(c *fiber.Ctx) error {
	session, err := h.sessionFromParam(c)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, "Session retrieved successfully", session)
}

// PreviewDuplicates reports which rows of the uploaded file collide with
// existing records, before anything is written.
func (h *UploadHandler) PreviewDuplicates(c *fiber.Ctx) error {
	session, err := h.sessionFromParam(c)
	if err != nil {
		return err
	}

	mapping, err := mappingFromBody(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid column mapping", err)
	}

	preview, err := h.importSvc.PreviewDuplicates(session, mapping)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to build duplicate preview", err)
	}

	return utils.SuccessResponse(c, "Duplicate preview built", fiber.Map{
		"session_code": session.SessionCode,
		"rows":         preview,
	})
}

// StartImport queues the session for background processing and returns the
// job id to poll.
func (h *UploadHandler) StartImport(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	session, err := h.sessionFromParam(c)
	if err != nil {
		return err
	}

	if session.Status == models.ProgressProcessing || session.Status == "queued" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Session is already being processed", nil)
	}
	if session.Status == models.ProgressCompleted {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Session is already completed", nil)
	}

	mapping, err := mappingFromBody(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid column mapping", err)
	}

	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background job processing is not available", nil)
	}

	jobID := uuid.New().String()
	payload, err := json.Marshal(worker.ImportTaskPayload{
		SessionID: session.ID,
		UserID:    userID,
		JobID:     jobID,
		Mapping:   mapping,
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build task payload", err)
	}

	if err := h.uploadRepo.UpdateSessionStatus(session.ID, "queued"); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update session status", err)
	}

	h.progress.Set(c.Context(), &models.ImportProgress{
		JobID:  jobID,
		Status: models.ProgressQueued,
		Total:  session.TotalRows,
	})

	task := asynq.NewTask(worker.TaskTypeImport, payload)
	if _, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(h.cfg.ImportMaxRetries)); err != nil {
		h.uploadRepo.UpdateSessionStatus(session.ID, "uploaded")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue import task", err)
	}

	return utils.SuccessResponse(c, "Import queued", fiber.Map{
		"job_id":  jobID,
		"session": session,
	})
}

func (h *UploadHandler) GetProgress(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Job ID is required", nil)
	}

	progress, err := h.progress.Get(c.Context(), jobID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read progress", err)
	}

	return utils.SuccessResponse(c, "Progress retrieved", progress)
}

// DownloadErrorReport serves the workbook of row errors a finished import
// produced, when it produced one.
func (h *UploadHandler) DownloadErrorReport(c *fiber.Ctx) error {
	jobID := c.Params("jobId")

	progress, err := h.progress.Get(c.Context(), jobID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read progress", err)
	}
	if progress.OutputRef == "" {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No error report for this job", nil)
	}

	return c.Download(progress.OutputRef, filepath.Base(progress.OutputRef))
}

func (h *UploadHandler) DeleteSession(c *fiber.Ctx) error {
	session, err := h.sessionFromParam(c)
	if err != nil {
		return err
	}

	if session.Status == models.ProgressProcessing {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot delete a session that is being processed", nil)
	}

	if err := h.uploadRepo.DeleteSession(session.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete session", err)
	}

	return utils.SuccessResponse(c, "Session deleted", nil)
}

func (h *UploadHandler) sessionFromParam(c *fiber.Ctx) (*models.UploadSession, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid session ID", err)
	}

	session, err := h.uploadRepo.GetSessionByID(id)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Session not found", err)
	}
	return session, nil
}

// mappingFromBody reads an optional caller-confirmed column mapping. An empty
// body means the auto-detected mapping is used.
func mappingFromBody(c *fiber.Ctx) (models.ColumnMapping, error) {
	var body struct {
		Mapping models.ColumnMapping `json:"mapping"`
	}
	if len(c.Body()) == 0 {
		return models.ColumnMapping{}, nil
	}
	if err := c.BodyParser(&body); err != nil {
		return models.ColumnMapping{}, err
	}
	return body.Mapping, nil
}
