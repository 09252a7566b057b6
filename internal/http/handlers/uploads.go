package handlers

import (
	"io"
	"net/http"

	"suq-dashboard-service/internal/storage"
	"suq-dashboard-service/internal/utils"
	"suq-dashboard-service/pkg/response"
)

const (
	itemImageMaxSide = 1280
	itemImageQuality = 82
	itemThumbSide    = 320
	itemThumbQuality = 75
)

// ItemImageUpload replaces an item's image: the upload is re-encoded to a
// bounded JPEG plus a square thumbnail, pushed to the object store, and the
// previous image is removed from the bucket.
func (h *Handler) ItemImageUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Store == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Object storage is not configured")
		return
	}

	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	var oldImage *string
	if err := h.DB.QueryRow(ctx, `select image_url from items where id = $1`, id).Scan(&oldImage); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
		return
	}

	if err := r.ParseMultipartForm(h.Config.MaxFileSizeBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "An image file is required")
		return
	}
	defer file.Close()

	if header.Size > h.Config.MaxFileSizeBytes {
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Image exceeds the upload limit")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.Config.MaxFileSizeBytes+1))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to read upload")
		return
	}
	if int64(len(data)) > h.Config.MaxFileSizeBytes {
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Image exceeds the upload limit")
		return
	}
	if !utils.ValidateImageContentType(utils.DetectContentType(data)) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Only JPEG, PNG or GIF images are accepted")
		return
	}

	encoded, err := utils.EncodeItemImage(data, itemImageMaxSide, itemImageQuality)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Image could not be decoded")
		return
	}

	key := storage.ItemImageKey(id, "jpg")
	imageURL, err := h.Store.PutObject(ctx, key, encoded, "image/jpeg")
	if err != nil {
		h.Logger.Error("item image upload failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store image")
		return
	}

	if thumb, err := utils.EncodeItemThumbnail(data, itemThumbSide, itemThumbQuality); err == nil {
		if _, err := h.Store.PutObject(ctx, thumbKey(key), thumb, "image/jpeg"); err != nil {
			h.Logger.Warn("item thumbnail upload failed", zapError(err))
		}
	}

	if _, err := h.DB.Exec(ctx, `
		update items set image_url = $1, updated_at = now() where id = $2
	`, imageURL, id); err != nil {
		h.Logger.Error("item image update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store image")
		return
	}

	if oldImage != nil && *oldImage != "" {
		if err := h.Store.DeleteURL(ctx, *oldImage); err != nil {
			h.Logger.Warn("stale item image delete failed", zapError(err))
		}
		if key, ok := h.Store.ResolveKeyFromURL(*oldImage); ok {
			if err := h.Store.DeleteKey(ctx, thumbKey(key)); err != nil {
				h.Logger.Warn("stale item thumbnail delete failed", zapError(err))
			}
		}
	}

	response.Success(w, map[string]any{"imageUrl": imageURL})
}

func thumbKey(key string) string {
	return key + ".thumb.jpg"
}
