package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"registry-web/internal/config"
	"registry-web/internal/models"
	"registry-web/internal/repository"
	"registry-web/internal/service"
	"registry-web/internal/utils"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TaskTypeImport is the asynq task type for queued imports.
const TaskTypeImport = "import:process"

// ImportTaskPayload is the queued description of one import run.
type ImportTaskPayload struct {
	SessionID int                  `json:"session_id"`
	UserID    int                  `json:"user_id"`
	JobID     string               `json:"job_id"`
	Mapping   models.ColumnMapping `json:"mapping"`
}

type ImportTaskHandler struct {
	cfg              *config.Config
	uploadRepo       *repository.UploadRepository
	notificationRepo *repository.NotificationRepository
	importSvc        *service.ImportService
	reportSvc        *service.ReportService
	progress         *service.ProgressStore
	logger           *logrus.Logger
}

func NewImportTaskHandler(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *ImportTaskHandler {
	recordRepo := repository.NewRecordRepository(db)
	userRepo := repository.NewUserRepository(db)

	return &ImportTaskHandler{
		cfg:              cfg,
		uploadRepo:       repository.NewUploadRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		importSvc:        service.NewImportService(service.SQLRecordStore{Repo: recordRepo}, userRepo),
		reportSvc:        service.NewReportService(cfg.UploadPath),
		progress:         service.NewProgressStore(rdb, cfg.ProgressTTL),
		logger:           utils.GetLogger(),
	}
}

// Handle runs one queued import. Row-level failures are reported through the
// result; a returned error means the whole batch rolled back and asynq may
// retry the task.
// sessionSettled reports whether a session already ran to completion, making
// a redelivered task a no-op.
func sessionSettled(session *models.UploadSession) bool {
	return session.Status == models.ProgressCompleted
}

func (h *ImportTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ImportTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal import payload: %w", err)
	}

	log := h.logger.WithFields(logrus.Fields{
		"job":     payload.JobID,
		"session": payload.SessionID,
	})

	session, err := h.uploadRepo.GetSessionByID(payload.SessionID)
	if err != nil {
		return fmt.Errorf("load session %d: %w", payload.SessionID, err)
	}

	// A session that already ran to completion is not run again; retried
	// deliveries of the same task become no-ops.
	if sessionSettled(session) {
		log.WithField("status", session.Status).Info("skipping import, session already settled")
		return nil
	}

	if err := h.uploadRepo.UpdateSessionStatus(session.ID, models.ProgressProcessing); err != nil {
		log.WithError(err).Warn("could not mark session processing")
	}
	if err := h.progress.Set(ctx, &models.ImportProgress{
		JobID:  payload.JobID,
		Status: models.ProgressProcessing,
		Total:  session.TotalRows,
	}); err != nil {
		log.WithError(err).Warn("could not publish progress")
	}

	result, err := h.importSvc.Run(session, payload.Mapping, func(processed, total int) {
		h.progress.Set(ctx, &models.ImportProgress{
			JobID:     payload.JobID,
			Status:    models.ProgressProcessing,
			Total:     total,
			Processed: processed,
		})
	})
	if err != nil {
		log.WithError(err).Error("import failed")
		session.Status = models.ProgressFailed
		session.ErrorMessage = err.Error()
		h.uploadRepo.UpdateSession(session)
		h.progress.Set(ctx, &models.ImportProgress{
			JobID:  payload.JobID,
			Status: models.ProgressFailed,
			Error:  err.Error(),
		})
		return err
	}

	outputRef := ""
	if len(result.Errors) > 0 {
		if path, reportErr := h.reportSvc.WriteErrorReport(session.SessionCode, result); reportErr != nil {
			log.WithError(reportErr).Warn("could not write error report")
		} else {
			outputRef = path
		}
	}

	session.Status = models.ProgressCompleted
	session.TotalRows = result.Total
	session.ErrorMessage = ""
	h.uploadRepo.UpdateSession(session)

	h.progress.Set(ctx, &models.ImportProgress{
		JobID:     payload.JobID,
		Status:    models.ProgressCompleted,
		Total:     result.Total,
		Processed: result.Total - result.NotAttempted,
		Created:   result.Created,
		Updated:   result.Updated,
		Skipped:   result.Skipped,
		OutputRef: outputRef,
	})

	h.notify(payload, session, result)

	// The uploaded file has served its purpose.
	if err := os.Remove(session.FilePath); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not remove uploaded file")
	}

	log.WithFields(logrus.Fields{
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
	}).Info("import finished")

	return nil
}

func (h *ImportTaskHandler) notify(payload ImportTaskPayload, session *models.UploadSession, result *models.ImportResult) {
	body, err := json.Marshal(result)
	if err != nil {
		return
	}
	notification := &models.Notification{
		UserID: payload.UserID,
		JobID:  payload.JobID,
		Title:  fmt.Sprintf("Import of %s finished", session.Filename),
		Body:   string(body),
	}
	if err := h.notificationRepo.Create(notification); err != nil {
		h.logger.WithError(err).Warn("could not create import notification")
	}
}
