// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legaldocs/legaldocs/internal/apperrors"
	"github.com/legaldocs/legaldocs/internal/services/storage"
)

// UploadDocument accepts a multipart file under the "docs" field, stores it
// and records the document with its extracted deadline and departments.
func (h *Handlers) UploadDocument(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("docs")
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "No file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Could not read uploaded file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Could not read uploaded file", err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.docs.Upload(c.Request().Context(), user,
		fileHeader.Filename, contentType, storage.ObjectKey(fileHeader.Filename), data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Document uploaded",
		"document": doc,
	})
}

// ListDocuments returns the caller's own documents, newest first.
func (h *Handlers) ListDocuments(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	docs, err := h.docs.ListOwn(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"documents": docs})
}

// ListDepartmentDocuments returns the documents routed to the caller's
// department.
func (h *Handlers) ListDepartmentDocuments(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	docs, err := h.docs.ListForDepartment(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"documents": docs})
}

// PreviewDocument returns a time-limited download URL for the document.
func (h *Handlers) PreviewDocument(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	id, err := docID(c, "id")
	if err != nil {
		return err
	}
	url, err := h.docs.PreviewURL(c.Request().Context(), user.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// DeleteDocument removes the caller's document.
func (h *Handlers) DeleteDocument(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	id, err := docID(c, "id")
	if err != nil {
		return err
	}
	if err := h.docs.Delete(c.Request().Context(), user.ID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Document deleted"})
}
