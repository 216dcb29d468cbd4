package handlers

import (
	"io"
	"net/http"
	"path"
	"strings"
)

const (
	assetPrefix        = "assets/"
	maxAssetUploadSize = 32 << 20
)

// AssetsUpload stores a source asset (image or video) in the object store and
// makes it available for generation requests.
func (a *App) AssetsUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAssetUploadSize); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file field is required")
		return
	}
	defer file.Close()

	name := path.Base(strings.TrimSpace(header.Filename))
	if name == "" || name == "." || name == "/" {
		a.error(w, http.StatusBadRequest, "bad_request", "filename is required")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxAssetUploadSize+1))
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to read upload")
		return
	}
	if len(data) > maxAssetUploadSize {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds size limit")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	object, err := a.Store.Put(r.Context(), assetPrefix+name, data, contentType)
	if err != nil {
		a.Logger.Error().Err(err).Str("name", name).Msg("handlers: asset upload failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store asset")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"status":     "success",
		"filename":   name,
		"store_uri":  object.StoreURI,
		"public_url": object.PublicURL,
	})
}

// AssetsList returns the uploaded source assets.
func (a *App) AssetsList(w http.ResponseWriter, r *http.Request) {
	objects, err := a.Store.List(r.Context(), assetPrefix)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: list assets failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list assets")
		return
	}
	items := make([]map[string]any, 0, len(objects))
	for _, object := range objects {
		items = append(items, map[string]any{
			"id":        object.Key,
			"name":      object.Name,
			"url":       object.PublicURL,
			"store_uri": object.StoreURI,
			"size":      object.Size,
			"type":      strings.TrimPrefix(path.Ext(object.Name), "."),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
