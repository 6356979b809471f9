// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legaldocs/legaldocs/internal/apperrors"
)

// StartConversation ingests the document for Q&A and returns the
// conversation id. Repeated calls return the persisted one.
func (h *Handlers) StartConversation(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	id, err := docID(c, "id")
	if err != nil {
		return err
	}

	conversationID, err := h.docs.StartConversation(c.Request().Context(), user.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"conversation_id": conversationID})
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat answers a question against the document's conversation.
func (h *Handlers) Chat(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	id, err := docID(c, "docId")
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.KindValidation, "Message is required")
	}

	answer, err := h.docs.Ask(c.Request().Context(), user.ID, id, c.Param("convId"), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"answer": answer})
}
