package admission

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/services/filestore"
	"github.com/Codewithswappy/UMSystem-sub001/utils/pdfvalidation"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var documentKinds = map[string]bool{
	"transcript": true,
	"marksheet":  true,
	"id_proof":   true,
}

// UploadDocument attaches a supporting PDF to a pending application
// POST /admissions/applications/:id/documents
func (h *AdmissionHandler) UploadDocument(c *fiber.Ctx) error {
	if h.files == nil {
		return response.ServiceUnavailable(c, "Document storage is not configured")
	}

	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var app model.AdmissionApplication
	if err := h.db.First(&app, appID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to load application")
	}

	// Documents are only accepted while the application is under review.
	if app.Reviewed() {
		return response.Conflict(c, "Application has already been reviewed")
	}

	kind := c.FormValue("kind")
	if !documentKinds[kind] {
		return response.BadRequest(c, "kind must be one of transcript, marksheet, id_proof")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A file upload is required")
	}

	result, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.LimitsForKind(kind))
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to open uploaded file")
	}
	defer src.Close()

	key := filestore.GenerateKey(app.ID, kind, file.Filename)
	url, err := h.files.Upload(c.Context(), key, src, filestore.ContentType(file.Filename))
	if err != nil {
		return response.InternalServerError(c, "Failed to store document")
	}

	doc := model.ApplicationDocument{
		ApplicationID: app.ID,
		Kind:          kind,
		FileName:      file.Filename,
		StorageKey:    key,
		URL:           url,
		ContentType:   filestore.ContentType(file.Filename),
		SizeBytes:     file.Size,
		PageCount:     result.PageCount,
	}
	if err := h.db.Create(&doc).Error; err != nil {
		// Best-effort rollback of the stored object.
		_ = h.files.Delete(c.Context(), key)
		return response.InternalServerError(c, "Failed to record document")
	}

	return response.Created(c, doc)
}

// ListDocuments lists documents attached to an application (admin)
// GET /admissions/applications/:id/documents
func (h *AdmissionHandler) ListDocuments(c *fiber.Ctx) error {
	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var docs []model.ApplicationDocument
	if err := h.db.Where("application_id = ?", appID).Find(&docs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch documents")
	}

	return response.Success(c, docs)
}

// GetDocumentURL returns a short-lived presigned download link (admin)
// GET /admissions/applications/:id/documents/:docID/url
func (h *AdmissionHandler) GetDocumentURL(c *fiber.Ctx) error {
	if h.files == nil {
		return response.ServiceUnavailable(c, "Document storage is not configured")
	}

	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}
	docID, err := strconv.ParseUint(c.Params("docID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	var doc model.ApplicationDocument
	if err := h.db.Where("id = ? AND application_id = ?", docID, appID).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Document not found")
		}
		return response.InternalServerError(c, "Failed to load document")
	}

	url, err := h.files.PresignedURL(doc.StorageKey, 15*time.Minute)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate download link")
	}

	return response.Success(c, fiber.Map{
		"url":        url,
		"expires_in": int((15 * time.Minute).Seconds()),
	})
}

// DownloadDocument streams a stored document through the API, for reviewer
// setups where the object store endpoint is not directly reachable (admin)
// GET /admissions/applications/:id/documents/:docID/download
func (h *AdmissionHandler) DownloadDocument(c *fiber.Ctx) error {
	if h.files == nil {
		return response.ServiceUnavailable(c, "Document storage is not configured")
	}

	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}
	docID, err := strconv.ParseUint(c.Params("docID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	var doc model.ApplicationDocument
	if err := h.db.Where("id = ? AND application_id = ?", docID, appID).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Document not found")
		}
		return response.InternalServerError(c, "Failed to load document")
	}

	data, err := h.files.Download(c.Context(), doc.StorageKey)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch document")
	}

	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	return c.Send(data)
}
