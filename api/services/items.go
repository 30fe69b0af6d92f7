package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lista-de-compras/shopping-list-services/api/metrics"
	"github.com/lista-de-compras/shopping-list-services/db"
	"github.com/lista-de-compras/shopping-list-services/models"
	"github.com/rs/zerolog"
)

// CreateItemPayload carries the fields a user supplies for a new item.
type CreateItemPayload struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Quantity *float64 `json:"quantity" validate:"omitempty,gt=0"`
	Notes    *string  `json:"notes"`
}

// ItemFields is the full-update variant: only supplied fields change, and
// supplied values are validated like a create.
type ItemFields struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Quantity  *float64 `json:"quantity" validate:"omitempty,gt=0"`
	Notes     *string  `json:"notes"`
	Completed *bool    `json:"completed"`
}

// UpdateItemPayload holds the two mutually exclusive update modes: a full
// field update under "item", or a completed-only toggle where "1" marks the
// item purchased and anything else clears it.
type UpdateItemPayload struct {
	Item      *ItemFields `json:"item"`
	Completed *string     `json:"completed"`
}

// ListItemsService returns every item owned by the authenticated user in
// storage-insertion order.
func ListItemsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := svc.DB.GetItems(userID)
	if err != nil {
		WriteStorageError(w, logger, err)
		return
	}

	// Ensure items is not nil, return an empty slice if the list is empty
	if items == nil {
		items = []models.Item{}
	}

	logger.Info().Int("item_count", len(items)).Msg("Successfully retrieved items")
	WriteResponse(w, http.StatusOK, models.Response{
		Success: 1,
		Data:    models.ItemsResponse{Items: items},
	})
}

// CreateItemService validates the payload and persists a new item owned by
// the authenticated user.
func CreateItemService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var payload CreateItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		WriteResponse(w, http.StatusBadRequest, models.Response{
			Success:   0,
			ErrorCode: "invalid_payload",
		})
		return
	}

	if fieldErrors := validateStruct(payload); fieldErrors != nil {
		logger.Info().Interface("errors", fieldErrors).Msg("Item validation failed")
		writeValidationErrors(w, fieldErrors)
		return
	}

	item, err := svc.DB.CreateItem(&models.Item{
		Name:      payload.Name,
		Quantity:  payload.Quantity,
		Notes:     payload.Notes,
		Completed: false,
		UserID:    userID,
	})
	if err != nil {
		WriteStorageError(w, logger, err)
		return
	}

	metrics.ItemsCreatedTotal.Inc()
	logger.Info().Str("item_id", item.ID.String()).Msg("Item created successfully")

	var location = fmt.Sprintf("%s/%s", r.URL.Path, item.ID)
	WriteResponse(w, http.StatusCreated, models.Response{
		Success: 1,
		Message: "Item added successfully.",
		Data:    models.ItemResponse{Item: *item},
	}, location)
}

// GetItemService retrieves a single item within the authenticated user's own
// collection, for editing.
func GetItemService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(mux.Vars(r)["item-id"])
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid item ID")
		WriteResponse(w, http.StatusBadRequest, models.Response{
			Success:   0,
			ErrorCode: "invalid_id",
		})
		return
	}

	item, err := svc.DB.GetItem(itemID, userID)
	if err != nil {
		if errors.Is(err, db.ErrItemNotFound) {
			logger.Warn().Str("item_id", itemID.String()).Msg("Item not found")
			writeItemNotFound(w)
			return
		}
		WriteStorageError(w, logger, err)
		return
	}

	WriteResponse(w, http.StatusOK, models.Response{
		Success: 1,
		Data:    models.ItemResponse{Item: *item},
	})
}

// UpdateItemService applies one of the two update modes to an item in the
// authenticated user's own collection.
func UpdateItemService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(mux.Vars(r)["item-id"])
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid item ID")
		WriteResponse(w, http.StatusBadRequest, models.Response{
			Success:   0,
			ErrorCode: "invalid_id",
		})
		return
	}

	var payload UpdateItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid update request payload")
		WriteResponse(w, http.StatusBadRequest, models.Response{
			Success:   0,
			ErrorCode: "invalid_payload",
		})
		return
	}

	// The lookup is resolved before the payload so an unknown or foreign id
	// is reported as not found regardless of what the body contains.
	item, err := svc.DB.GetItem(itemID, userID)
	if err != nil {
		if errors.Is(err, db.ErrItemNotFound) {
			logger.Warn().Str("item_id", itemID.String()).Msg("Item not found")
			writeItemNotFound(w)
			return
		}
		WriteStorageError(w, logger, err)
		return
	}

	switch {
	case payload.Item != nil:
		if fieldErrors := validateStruct(payload.Item); fieldErrors != nil {
			logger.Info().Interface("errors", fieldErrors).Msg("Item validation failed")
			writeValidationErrors(w, fieldErrors)
			return
		}
		if payload.Item.Name != nil {
			item.Name = *payload.Item.Name
		}
		if payload.Item.Quantity != nil {
			item.Quantity = payload.Item.Quantity
		}
		if payload.Item.Notes != nil {
			item.Notes = payload.Item.Notes
		}
		if payload.Item.Completed != nil {
			item.Completed = *payload.Item.Completed
		}
	case payload.Completed != nil:
		item.Completed = *payload.Completed == "1"
	default:
		logger.Info().Str("item_id", itemID.String()).Msg("Update rejected: no input supplied")
		writeValidationErrors(w, map[string]string{
			"item": "no item fields or completed flag supplied",
		})
		return
	}

	updated, err := svc.DB.UpdateItem(item)
	if err != nil {
		if errors.Is(err, db.ErrItemNotFound) {
			writeItemNotFound(w)
			return
		}
		WriteStorageError(w, logger, err)
		return
	}

	logger.Info().Str("item_id", updated.ID.String()).Msg("Item updated successfully")
	WriteResponse(w, http.StatusOK, models.Response{
		Success: 1,
		Message: "Item updated successfully.",
		Data:    models.ItemResponse{Item: *updated},
	})
}

// DeleteItemService removes a single item within the authenticated user's
// own collection.
func DeleteItemService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(mux.Vars(r)["item-id"])
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid item ID")
		WriteResponse(w, http.StatusBadRequest, models.Response{
			Success:   0,
			ErrorCode: "invalid_id",
		})
		return
	}

	if err := svc.DB.DeleteItem(itemID, userID); err != nil {
		if errors.Is(err, db.ErrItemNotFound) {
			logger.Warn().Str("item_id", itemID.String()).Msg("Item not found")
			writeItemNotFound(w)
			return
		}
		WriteStorageError(w, logger, err)
		return
	}

	logger.Info().Str("item_id", itemID.String()).Msg("Item deleted successfully")
	WriteResponse(w, http.StatusOK, models.Response{
		Success: 1,
		Message: "Item removed successfully.",
	})
}

// PurgeCompletedService bulk-deletes the authenticated user's completed
// items. Succeeds with a zero count when there is nothing to remove.
func PurgeCompletedService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	deleted, err := svc.DB.PurgeCompletedItems(userID)
	if err != nil {
		WriteStorageError(w, logger, err)
		return
	}

	metrics.ItemsPurgedTotal.Add(float64(deleted))
	logger.Info().Int64("deleted", deleted).Msg("Purged completed items")

	WriteResponse(w, http.StatusOK, models.Response{
		Success: 1,
		Message: "All purchased items deleted successfully.",
		Data:    models.PurgeResponse{Deleted: deleted},
	})
}
