package handler

import (
	"strconv"

	"registry-web/internal/importer"
	"registry-web/internal/repository"
	"registry-web/internal/service"
	"registry-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type RecordHandler struct {
	recordRepo *repository.RecordRepository
	importSvc  *service.ImportService
}

func NewRecordHandler(recordRepo *repository.RecordRepository, importSvc *service.ImportService) *RecordHandler {
	return &RecordHandler{
		recordRepo: recordRepo,
		importSvc:  importSvc,
	}
}

func (h *RecordHandler) List(c *fiber.Ctx) error {
	entityType := c.Params("entityType")
	if _, ok := importer.Descriptors[entityType]; !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity type", nil)
	}

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	records, total, err := h.recordRepo.List(entityType, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve records", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	return utils.PaginatedResponseBuilder(c, "Records retrieved successfully", fiber.Map{
		"records":    records,
		"pagination": pagination,
	}, pagination)
}

func (h *RecordHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid record ID", err)
	}

	record, err := h.recordRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Record not found", err)
	}

	return utils.SuccessResponse(c, "Record retrieved successfully", record)
}

// SuggestOwners ranks active users against a free-text person reference, for
// resolving owner columns interactively.
func (h *RecordHandler) SuggestOwners(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Query parameter q is required", nil)
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	suggestions, err := h.importSvc.SuggestUsers(query, limit)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve user", err)
	}

	return utils.SuccessResponse(c, "Suggestions retrieved successfully", fiber.Map{
		"query":       query,
		"suggestions": suggestions,
	})
}
